package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/feast-dev/feast-entity/go/internal/feast/model"
)

// RedisRegistryStore keeps each project's entities in one redis hash,
// mapping entity name to the encoded entity.
type RedisRegistryStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisRegistryStore connects to the redis server named by config.Path,
// either a redis:// URL or a host:port address.
func NewRedisRegistryStore(ctx context.Context, config *RegistryConfig) (*RedisRegistryStore, error) {
	var options *redis.Options
	if strings.HasPrefix(config.Path, "redis://") || strings.HasPrefix(config.Path, "rediss://") {
		parsed, err := redis.ParseURL(config.Path)
		if err != nil {
			return nil, errors.Wrap(err, "registry: invalid redis url")
		}
		options = parsed
	} else {
		options = &redis.Options{Addr: config.Path}
	}
	if config.ClientId != "" && config.ClientId != defaultClientId {
		options.ClientName = config.ClientId
	}

	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "registry: failed to connect to redis at %s", options.Addr)
	}
	return &RedisRegistryStore{client: client, now: time.Now}, nil
}

func entitiesKey(project string) string {
	return fmt.Sprintf("feast:registry:%s:entities", project)
}

func (r *RedisRegistryStore) ApplyEntity(ctx context.Context, project string, e *model.Entity) (err error) {
	span, ctx := startSpan(ctx, "apply_entity", project, e.Name)
	defer func() { finishSpan(span, err) }()

	if err := e.IsValid(); err != nil {
		return err
	}

	key := entitiesKey(project)
	var stamped *model.Entity
	// Optimistic lock on the project hash so concurrent applies do not
	// lose the creation time.
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		existing, err := r.decodeField(tx.HGet(ctx, key, e.Name), project, e.Name)
		if err != nil && !errors.Is(err, ErrEntityNotFound) {
			return err
		}
		stamped = stampEntity(e, existing, r.now())

		data, err := model.MarshalEntity(stamped)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, e.Name, data)
			return nil
		})
		return errors.Wrapf(err, "registry: failed to write entity %s", e.Name)
	}, key)
	if err != nil {
		return err
	}
	commitTimestamps(e, stamped)
	return nil
}

func (r *RedisRegistryStore) GetEntity(ctx context.Context, project, name string) (_ *model.Entity, err error) {
	span, ctx := startSpan(ctx, "get_entity", project, name)
	defer func() { finishSpan(span, err) }()
	return r.decodeField(r.client.HGet(ctx, entitiesKey(project), name), project, name)
}

func (r *RedisRegistryStore) decodeField(cmd *redis.StringCmd, project, name string) (*model.Entity, error) {
	data, err := cmd.Bytes()
	if err == redis.Nil {
		return nil, entityNotFound(project, name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "registry: failed to read entity %s", name)
	}
	return model.UnmarshalEntity(data)
}

func (r *RedisRegistryStore) ListEntities(ctx context.Context, project string) (_ []*model.Entity, err error) {
	span, ctx := startSpan(ctx, "list_entities", project, "")
	defer func() { finishSpan(span, err) }()

	fields, err := r.client.HGetAll(ctx, entitiesKey(project)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "registry: failed to list entities")
	}
	entities := make([]*model.Entity, 0, len(fields))
	for name, data := range fields {
		entity, err := model.UnmarshalEntity([]byte(data))
		if err != nil {
			return nil, errors.Wrapf(err, "registry: entity %s", name)
		}
		entities = append(entities, entity)
	}
	model.SortByName(entities)
	return entities, nil
}

func (r *RedisRegistryStore) DeleteEntity(ctx context.Context, project, name string) (err error) {
	span, ctx := startSpan(ctx, "delete_entity", project, name)
	defer func() { finishSpan(span, err) }()

	deleted, err := r.client.HDel(ctx, entitiesKey(project), name).Result()
	if err != nil {
		return errors.Wrapf(err, "registry: failed to delete entity %s", name)
	}
	if deleted == 0 {
		return entityNotFound(project, name)
	}
	return nil
}

func (r *RedisRegistryStore) Close() error {
	return r.client.Close()
}
