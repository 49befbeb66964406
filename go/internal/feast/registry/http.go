package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/feast-dev/feast-entity/go/internal/feast/model"
	"github.com/feast-dev/feast-entity/go/protos/feast/core"
)

// HttpRegistryStore reads entities from a feast registry server. It cannot
// write: entities are applied through the server's own tooling.
// A zero cache TTL asks the server to bypass its registry cache.
type HttpRegistryStore struct {
	endpoint   string
	clientId   string
	allowCache bool
	client     http.Client
}

func NewHttpRegistryStore(config *RegistryConfig) (*HttpRegistryStore, error) {
	hrs := &HttpRegistryStore{
		endpoint:   strings.TrimRight(config.Path, "/"),
		clientId:   config.ClientId,
		allowCache: config.CacheTtlSeconds > 0,
		client: http.Client{
			Timeout: 5 * time.Second,
		},
	}
	if err := hrs.TestConnectivity(context.Background()); err != nil {
		return nil, err
	}
	return hrs, nil
}

func (r *HttpRegistryStore) TestConnectivity(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "registry: invalid endpoint")
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "registry: failed to reach %s", r.endpoint)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("registry: connectivity check to %s returned %s", r.endpoint, resp.Status)
	}
	return nil
}

func (r *HttpRegistryStore) ApplyEntity(ctx context.Context, project string, e *model.Entity) error {
	return errors.Wrapf(ErrReadOnly, "cannot apply entity %s", e.Name)
}

func (r *HttpRegistryStore) DeleteEntity(ctx context.Context, project, name string) error {
	return errors.Wrapf(ErrReadOnly, "cannot delete entity %s", name)
}

func (r *HttpRegistryStore) GetEntity(ctx context.Context, project, name string) (_ *model.Entity, err error) {
	span, ctx := startSpan(ctx, "get_entity", project, name)
	defer func() { finishSpan(span, err) }()

	path := fmt.Sprintf("%s/projects/%s/entities/%s?allow_cache=%t",
		r.endpoint, url.PathEscape(project), url.PathEscape(name), r.allowCache)
	var entity *model.Entity
	err = r.loadProtobufMessages(ctx, path, func(data []byte) error {
		var err error
		entity, err = model.UnmarshalEntity(data)
		return err
	})
	if errors.Is(err, errNotFound) {
		return nil, entityNotFound(project, name)
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *HttpRegistryStore) ListEntities(ctx context.Context, project string) (_ []*model.Entity, err error) {
	span, ctx := startSpan(ctx, "list_entities", project, "")
	defer func() { finishSpan(span, err) }()

	path := fmt.Sprintf("%s/projects/%s/entities?allow_cache=%t", r.endpoint, url.PathEscape(project), r.allowCache)
	entities := make([]*model.Entity, 0)
	err = r.loadProtobufMessages(ctx, path, func(data []byte) error {
		entityList := &core.EntityList{}
		if err := entityList.Unmarshal(data); err != nil {
			return err
		}
		for _, proto := range entityList.GetEntities() {
			entity, err := model.NewEntityFromProto(proto)
			if err != nil {
				return err
			}
			entities = append(entities, entity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	model.SortByName(entities)
	return entities, nil
}

func (r *HttpRegistryStore) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

var errNotFound = errors.New("not found")

func (r *HttpRegistryStore) loadProtobufMessages(ctx context.Context, url string, messageProcessor func([]byte) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "registry: failed to build request")
	}
	req.Header.Add("Accept", "application/x-protobuf")
	req.Header.Add("Client-Id", r.clientId)

	resp, err := r.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "registry: request to %s failed", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("registry: request to %s returned %s", url, resp.Status)
	}

	buffer, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "registry: failed to read response")
	}
	if err := messageProcessor(buffer); err != nil {
		return errors.Wrapf(err, "registry: failed to decode response from %s", url)
	}
	return nil
}
