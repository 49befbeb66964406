package model

import (
	"github.com/apache/arrow/go/v8/arrow"
	"github.com/pkg/errors"

	"github.com/feast-dev/feast-entity/go/types"
)

// JoinKeySchema describes the entity key columns of a serving request, one
// field per join key in join key order.
func (e *Entity) JoinKeySchema() (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, len(e.joinKeys))
	for _, key := range e.joinKeys {
		dataType, err := types.ValueTypeToArrowType(key.ValueType)
		if err != nil {
			return nil, errors.Wrapf(err, "entity %s join key %s", e.Name, key.Name)
		}
		fields = append(fields, arrow.Field{Name: key.Name, Type: dataType})
	}
	return arrow.NewSchema(fields, nil), nil
}
