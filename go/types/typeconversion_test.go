package types

import (
	"testing"

	"github.com/apache/arrow/go/v8/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feast-dev/feast-entity/go/protos/feast/types"
)

func TestValueTypeToArrowType(t *testing.T) {
	cases := map[types.ValueType_Enum]arrow.Type{
		types.ValueType_BYTES:          arrow.BINARY,
		types.ValueType_STRING:         arrow.STRING,
		types.ValueType_INT32:          arrow.INT32,
		types.ValueType_INT64:          arrow.INT64,
		types.ValueType_FLOAT:          arrow.FLOAT32,
		types.ValueType_DOUBLE:         arrow.FLOAT64,
		types.ValueType_BOOL:           arrow.BOOL,
		types.ValueType_UNIX_TIMESTAMP: arrow.TIMESTAMP,
		types.ValueType_NULL:           arrow.NULL,
		types.ValueType_INT64_LIST:     arrow.LIST,
	}
	for valueType, expected := range cases {
		dataType, err := ValueTypeToArrowType(valueType)
		require.NoError(t, err, valueType.String())
		assert.Equal(t, expected, dataType.ID(), valueType.String())
	}

	dataType, err := ValueTypeToArrowType(types.ValueType_STRING_LIST)
	require.NoError(t, err)
	assert.True(t, arrow.TypeEqual(arrow.ListOf(arrow.BinaryTypes.String), dataType))
}

func TestValueTypeToArrowTypeRejectsUnknown(t *testing.T) {
	_, err := ValueTypeToArrowType(types.ValueType_UNKNOWN)
	assert.Error(t, err)

	_, err = ValueTypeToArrowType(types.ValueType_Enum(42))
	assert.Error(t, err)
}
