package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownSharesInvalidCode(t *testing.T) {
	assert.Equal(t, ValueType_INVALID, ValueType_UNKNOWN)
	assert.Equal(t, int32(0), int32(ValueType_UNKNOWN))
}

func TestParseValueType(t *testing.T) {
	vt, err := ParseValueType("int64")
	require.NoError(t, err)
	assert.Equal(t, ValueType_INT64, vt)

	vt, err = ParseValueType(" STRING_LIST ")
	require.NoError(t, err)
	assert.Equal(t, ValueType_STRING_LIST, vt)

	vt, err = ParseValueType("unknown")
	require.NoError(t, err)
	assert.Equal(t, ValueType_UNKNOWN, vt)

	_, err = ParseValueType("DECIMAL")
	assert.Error(t, err)
}

func TestIsDefined(t *testing.T) {
	assert.True(t, ValueType_STRING.IsDefined())
	assert.True(t, ValueType_NULL.IsDefined())
	assert.False(t, ValueType_Enum(9).IsDefined())
	assert.False(t, ValueType_Enum(42).IsDefined())
	assert.Equal(t, "ValueType_Enum(42)", ValueType_Enum(42).String())
}

func TestValueTypeJSON(t *testing.T) {
	data, err := json.Marshal(map[string]ValueType_Enum{"driver_id": ValueType_INT64})
	require.NoError(t, err)
	assert.JSONEq(t, `{"driver_id":"INT64"}`, string(data))

	var decoded map[string]ValueType_Enum
	require.NoError(t, json.Unmarshal([]byte(`{"a":"string","b":4}`), &decoded))
	assert.Equal(t, ValueType_STRING, decoded["a"])
	assert.Equal(t, ValueType_INT64, decoded["b"])

	assert.Error(t, json.Unmarshal([]byte(`{"a":"complex"}`), &decoded))
}
