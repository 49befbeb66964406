package types

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ValueType_Enum is the closed set of scalar and list kinds a feature or
// join key can hold. Codes are the wire values of feast.types.ValueType.Enum.
type ValueType_Enum int32

const (
	ValueType_INVALID             ValueType_Enum = 0
	ValueType_BYTES               ValueType_Enum = 1
	ValueType_STRING              ValueType_Enum = 2
	ValueType_INT32               ValueType_Enum = 3
	ValueType_INT64               ValueType_Enum = 4
	ValueType_DOUBLE              ValueType_Enum = 5
	ValueType_FLOAT               ValueType_Enum = 6
	ValueType_BOOL                ValueType_Enum = 7
	ValueType_UNIX_TIMESTAMP      ValueType_Enum = 8
	ValueType_BYTES_LIST          ValueType_Enum = 11
	ValueType_STRING_LIST         ValueType_Enum = 12
	ValueType_INT32_LIST          ValueType_Enum = 13
	ValueType_INT64_LIST          ValueType_Enum = 14
	ValueType_DOUBLE_LIST         ValueType_Enum = 15
	ValueType_FLOAT_LIST          ValueType_Enum = 16
	ValueType_BOOL_LIST           ValueType_Enum = 17
	ValueType_UNIX_TIMESTAMP_LIST ValueType_Enum = 18
	ValueType_NULL                ValueType_Enum = 19
)

// ValueType_UNKNOWN marks a type that has not been specified yet. It shares
// the zero code with INVALID.
const ValueType_UNKNOWN = ValueType_INVALID

var (
	ValueType_Enum_name = map[int32]string{
		0:  "INVALID",
		1:  "BYTES",
		2:  "STRING",
		3:  "INT32",
		4:  "INT64",
		5:  "DOUBLE",
		6:  "FLOAT",
		7:  "BOOL",
		8:  "UNIX_TIMESTAMP",
		11: "BYTES_LIST",
		12: "STRING_LIST",
		13: "INT32_LIST",
		14: "INT64_LIST",
		15: "DOUBLE_LIST",
		16: "FLOAT_LIST",
		17: "BOOL_LIST",
		18: "UNIX_TIMESTAMP_LIST",
		19: "NULL",
	}
	ValueType_Enum_value = map[string]int32{
		"INVALID":             0,
		"BYTES":               1,
		"STRING":              2,
		"INT32":               3,
		"INT64":               4,
		"DOUBLE":              5,
		"FLOAT":               6,
		"BOOL":                7,
		"UNIX_TIMESTAMP":      8,
		"BYTES_LIST":          11,
		"STRING_LIST":         12,
		"INT32_LIST":          13,
		"INT64_LIST":          14,
		"DOUBLE_LIST":         15,
		"FLOAT_LIST":          16,
		"BOOL_LIST":           17,
		"UNIX_TIMESTAMP_LIST": 18,
		"NULL":                19,
	}
)

func (x ValueType_Enum) Enum() *ValueType_Enum {
	p := new(ValueType_Enum)
	*p = x
	return p
}

func (x ValueType_Enum) String() string {
	if name, ok := ValueType_Enum_name[int32(x)]; ok {
		return name
	}
	return "ValueType_Enum(" + strconv.Itoa(int(x)) + ")"
}

// IsDefined reports whether x is a member of the enumeration.
func (x ValueType_Enum) IsDefined() bool {
	_, ok := ValueType_Enum_name[int32(x)]
	return ok
}

// ParseValueType resolves a type name such as "int64" or "STRING_LIST".
// "UNKNOWN" is accepted as an alias of INVALID.
func ParseValueType(name string) (ValueType_Enum, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "UNKNOWN" {
		return ValueType_UNKNOWN, nil
	}
	if code, ok := ValueType_Enum_value[upper]; ok {
		return ValueType_Enum(code), nil
	}
	return ValueType_UNKNOWN, errors.Errorf("unknown value type %q", name)
}

func (x ValueType_Enum) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(x.String())), nil
}

// UnmarshalJSON accepts either a type name or its numeric code.
func (x *ValueType_Enum) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		name, err := strconv.Unquote(string(data))
		if err != nil {
			return errors.Wrap(err, "invalid value type")
		}
		parsed, err := ParseValueType(name)
		if err != nil {
			return err
		}
		*x = parsed
		return nil
	}
	code, err := strconv.ParseInt(string(data), 10, 32)
	if err != nil {
		return errors.Wrapf(err, "invalid value type %s", data)
	}
	*x = ValueType_Enum(code)
	return nil
}
