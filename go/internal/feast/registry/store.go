package registry

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/feast-dev/feast-entity/go/internal/feast/model"
)

var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrReadOnly       = errors.New("registry store is read-only")

	ErrUnsupportedRegistry = errors.New("unsupported registry store type")
)

// EntityStore persists entities in their wire form, per project.
type EntityStore interface {
	// ApplyEntity validates and stores e, stamping its timestamps.
	ApplyEntity(ctx context.Context, project string, e *model.Entity) error
	GetEntity(ctx context.Context, project, name string) (*model.Entity, error)
	// ListEntities returns the project's entities sorted by name.
	ListEntities(ctx context.Context, project string) ([]*model.Entity, error)
	DeleteEntity(ctx context.Context, project, name string) error
	Close() error
}

// NewEntityStore opens the store described by the registry section of config.
func NewEntityStore(ctx context.Context, config *RepoConfig) (EntityStore, error) {
	registryConfig, err := config.GetRegistryConfig()
	if err != nil {
		return nil, err
	}
	switch registryConfig.RegistryStoreType {
	case "sql", "sqlite":
		return NewSqliteRegistryStore(registryConfig)
	case "file":
		// A feast file registry is one serialized Registry message, not a database.
		return nil, errors.Wrapf(ErrUnsupportedRegistry, "file registry %s", registryConfig.Path)
	case "redis":
		return NewRedisRegistryStore(ctx, registryConfig)
	case "http", "remote":
		return NewHttpRegistryStore(registryConfig)
	default:
		return nil, errors.Wrapf(ErrUnsupportedRegistry, "%q", registryConfig.RegistryStoreType)
	}
}

// stampEntity returns a copy of e carrying the registry-owned timestamps it
// is written with. The creation time of an already stored entity is kept.
// e itself is left alone until the write succeeds, see commitTimestamps.
func stampEntity(e, existing *model.Entity, now time.Time) *model.Entity {
	now = now.UTC()
	created := now
	if existing != nil && existing.CreatedTimestamp != nil {
		created = *existing.CreatedTimestamp
	}
	stamped := *e
	stamped.CreatedTimestamp = &created
	stamped.LastUpdatedTimestamp = &now
	return &stamped
}

func commitTimestamps(e, stamped *model.Entity) {
	e.CreatedTimestamp = stamped.CreatedTimestamp
	e.LastUpdatedTimestamp = stamped.LastUpdatedTimestamp
}

func startSpan(ctx context.Context, operation, project, name string) (ddtrace.Span, context.Context) {
	resource := project
	if name != "" {
		resource = project + "/" + name
	}
	return tracer.StartSpanFromContext(ctx, "registry."+operation,
		tracer.ResourceName(resource),
		tracer.Tag("feast.project", project),
	)
}

func entityNotFound(project, name string) error {
	return errors.Wrapf(ErrEntityNotFound, "entity %s does not exist in project %s", name, project)
}

func finishSpan(span ddtrace.Span, err error) {
	span.Finish(tracer.WithError(err))
}
