package registry

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/feast-dev/feast-entity/go/internal/feast/model"
)

const createEntitiesTable = `
CREATE TABLE IF NOT EXISTS entities (
	entity_name            TEXT    NOT NULL,
	project_id             TEXT    NOT NULL,
	last_updated_timestamp INTEGER NOT NULL,
	entity_proto           BLOB    NOT NULL,
	PRIMARY KEY (entity_name, project_id)
)`

// SqliteRegistryStore keeps entities in the entities table of a SQLite
// registry database. An empty path opens a private in-memory database.
type SqliteRegistryStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSqliteRegistryStore(config *RegistryConfig) (*SqliteRegistryStore, error) {
	path := config.Path
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "registry: failed to open database")
	}
	// A single connection keeps in-memory databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createEntitiesTable); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "registry: failed to initialize schema")
	}
	return &SqliteRegistryStore{db: db, now: time.Now}, nil
}

func (s *SqliteRegistryStore) ApplyEntity(ctx context.Context, project string, e *model.Entity) (err error) {
	span, ctx := startSpan(ctx, "apply_entity", project, e.Name)
	defer func() { finishSpan(span, err) }()

	if err := e.IsValid(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "registry: failed to begin transaction")
	}
	defer tx.Rollback()

	existing, err := s.getEntity(ctx, tx, project, e.Name)
	if err != nil && !errors.Is(err, ErrEntityNotFound) {
		return err
	}
	stamped := stampEntity(e, existing, s.now())

	data, err := model.MarshalEntity(stamped)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO entities (entity_name, project_id, last_updated_timestamp, entity_proto)
		VALUES (?, ?, ?, ?)`,
		e.Name, project, stamped.LastUpdatedTimestamp.Unix(), data)
	if err != nil {
		return errors.Wrapf(err, "registry: failed to write entity %s", e.Name)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "registry: failed to commit")
	}
	commitTimestamps(e, stamped)
	return nil
}

func (s *SqliteRegistryStore) GetEntity(ctx context.Context, project, name string) (_ *model.Entity, err error) {
	span, ctx := startSpan(ctx, "get_entity", project, name)
	defer func() { finishSpan(span, err) }()
	return s.getEntity(ctx, s.db, project, name)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *SqliteRegistryStore) getEntity(ctx context.Context, q queryer, project, name string) (*model.Entity, error) {
	var data []byte
	err := q.QueryRowContext(ctx,
		`SELECT entity_proto FROM entities WHERE entity_name = ? AND project_id = ?`,
		name, project).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, entityNotFound(project, name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "registry: failed to read entity %s", name)
	}
	return model.UnmarshalEntity(data)
}

func (s *SqliteRegistryStore) ListEntities(ctx context.Context, project string) (_ []*model.Entity, err error) {
	span, ctx := startSpan(ctx, "list_entities", project, "")
	defer func() { finishSpan(span, err) }()

	rows, err := s.db.QueryContext(ctx,
		`SELECT entity_proto FROM entities WHERE project_id = ? ORDER BY entity_name`, project)
	if err != nil {
		return nil, errors.Wrap(err, "registry: failed to list entities")
	}
	defer rows.Close()

	entities := make([]*model.Entity, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(err, "registry: failed to scan entity")
		}
		entity, err := model.UnmarshalEntity(data)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "registry: failed to list entities")
	}
	model.SortByName(entities)
	return entities, nil
}

func (s *SqliteRegistryStore) DeleteEntity(ctx context.Context, project, name string) (err error) {
	span, ctx := startSpan(ctx, "delete_entity", project, name)
	defer func() { finishSpan(span, err) }()

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM entities WHERE entity_name = ? AND project_id = ?`, name, project)
	if err != nil {
		return errors.Wrapf(err, "registry: failed to delete entity %s", name)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "registry: failed to delete entity")
	}
	if affected == 0 {
		return entityNotFound(project, name)
	}
	return nil
}

func (s *SqliteRegistryStore) Close() error {
	return s.db.Close()
}
