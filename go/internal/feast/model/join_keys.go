package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/feast-dev/feast-entity/go/protos/feast/types"
)

// JoinKey is one typed field used to join feature rows to an entity.
type JoinKey struct {
	Name      string
	ValueType types.ValueType_Enum
}

// JoinKeysInput is the join key argument accepted by NewEntity: either
// JoinKeyNames or TypedJoinKeys.
type JoinKeysInput interface {
	isJoinKeysInput()
}

// JoinKeyNames is the legacy form: untyped join key names. At most one name
// is accepted; its type comes from WithValueType.
type JoinKeyNames []string

// TypedJoinKeys maps join key names to value types, in order. A repeated
// name overrides the type of its first occurrence.
type TypedJoinKeys []JoinKey

func (JoinKeyNames) isJoinKeysInput()  {}
func (TypedJoinKeys) isJoinKeysInput() {}

// TypedJoinKeysFromMap orders m by join key name.
func TypedJoinKeysFromMap(m map[string]types.ValueType_Enum) TypedJoinKeys {
	keys := make(TypedJoinKeys, 0, len(m))
	for name, valueType := range m {
		keys = append(keys, JoinKey{Name: name, ValueType: valueType})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	return keys
}

// NormalizeJoinKeys resolves the join key argument of an entity into its
// canonical ordered form. Missing inputs fall back to a single join key
// named after the entity, typed with valueType or UNKNOWN.
func NormalizeJoinKeys(name string, input JoinKeysInput, valueType *types.ValueType_Enum) ([]JoinKey, error) {
	fallbackType := types.ValueType_UNKNOWN
	if valueType != nil {
		fallbackType = *valueType
	}
	fallback := []JoinKey{{Name: name, ValueType: fallbackType}}

	switch keys := input.(type) {
	case nil:
		return fallback, nil
	case JoinKeyNames:
		switch len(keys) {
		case 0:
			return fallback, nil
		case 1:
			return []JoinKey{{Name: keys[0], ValueType: fallbackType}}, nil
		default:
			return nil, errors.Wrapf(ErrInvalidArgument,
				"multiple join keys %q are not supported in list format, use TypedJoinKeys instead: %s",
				[]string(keys), typedSuggestion(keys))
		}
	case TypedJoinKeys:
		if len(keys) == 0 {
			return fallback, nil
		}
		return dedupJoinKeys(keys), nil
	default:
		return nil, errors.Wrapf(ErrInvalidArgument,
			"join keys must be either JoinKeyNames (legacy) or TypedJoinKeys, got %T", input)
	}
}

func dedupJoinKeys(keys []JoinKey) []JoinKey {
	out := make([]JoinKey, 0, len(keys))
	position := make(map[string]int, len(keys))
	for _, key := range keys {
		if i, ok := position[key.Name]; ok {
			out[i].ValueType = key.ValueType
			continue
		}
		position[key.Name] = len(out)
		out = append(out, key)
	}
	return out
}

func typedSuggestion(names []string) string {
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("{Name: %q, ValueType: types.ValueType_STRING}", name)
	}
	return "TypedJoinKeys{" + strings.Join(parts, ", ") + "}"
}
