package core

import (
	"sort"

	"github.com/feast-dev/feast-entity/go/protos/feast/types"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Marshal encodes messages in the proto3 binary format. Output is
// deterministic: map entries are written in key order.
func Marshal(m interface{ appendTo([]byte) ([]byte, error) }) ([]byte, error) {
	return m.appendTo(nil)
}

// Unmarshal decodes the proto3 binary format into m. Unknown fields are
// skipped.
func Unmarshal(b []byte, m interface{ consume([]byte) error }) error {
	return m.consume(b)
}

func (x *Entity) Marshal() ([]byte, error)     { return Marshal(x) }
func (x *Entity) Unmarshal(b []byte) error     { return Unmarshal(b, x) }
func (x *EntityList) Marshal() ([]byte, error) { return Marshal(x) }
func (x *EntityList) Unmarshal(b []byte) error { return Unmarshal(b, x) }

var timestampMarshaler = proto.MarshalOptions{Deterministic: true}

func (x *Entity) appendTo(b []byte) ([]byte, error) {
	if x == nil {
		return b, nil
	}
	var err error
	if x.Spec != nil {
		if b, err = appendMessage(b, entityFieldSpec, x.Spec); err != nil {
			return nil, errors.Wrap(err, "spec")
		}
	}
	if x.Meta != nil {
		if b, err = appendMessage(b, entityFieldMeta, x.Meta); err != nil {
			return nil, errors.Wrap(err, "meta")
		}
	}
	return b, nil
}

func (x *EntitySpecV2) appendTo(b []byte) ([]byte, error) {
	b = appendString(b, specFieldName, x.Name)
	b = appendEnum(b, specFieldValueType, x.ValueType)
	b = appendString(b, specFieldDescription, x.Description)
	b = appendString(b, specFieldJoinKey, x.JoinKey)
	for _, k := range sortedKeys(x.Tags) {
		entry := appendMapKey(nil, k)
		entry = protowire.AppendTag(entry, 2, protowire.BytesType)
		entry = protowire.AppendString(entry, x.Tags[k])
		b = protowire.AppendTag(b, specFieldTags, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	b = appendString(b, specFieldProject, x.Project)
	b = appendString(b, specFieldOwner, x.Owner)

	names := make([]string, 0, len(x.JoinKeys))
	for k := range x.JoinKeys {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		value := x.JoinKeys[k]
		if value == nil {
			value = &JoinKeySpec{}
		}
		entry, err := appendMessage(appendMapKey(nil, k), 2, value)
		if err != nil {
			return nil, errors.Wrapf(err, "join_keys[%s]", k)
		}
		b = protowire.AppendTag(b, specFieldJoinKeys, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b, nil
}

func (x *JoinKeySpec) appendTo(b []byte) ([]byte, error) {
	b = appendString(b, joinKeyFieldName, x.Name)
	b = appendEnum(b, joinKeyFieldValueType, x.ValueType)
	b = appendString(b, joinKeyFieldDescription, x.Description)
	return b, nil
}

func (x *EntityMeta) appendTo(b []byte) ([]byte, error) {
	var err error
	if x.CreatedTimestamp != nil {
		if b, err = appendTimestamp(b, metaFieldCreatedTimestamp, x.CreatedTimestamp); err != nil {
			return nil, errors.Wrap(err, "created_timestamp")
		}
	}
	if x.LastUpdatedTimestamp != nil {
		if b, err = appendTimestamp(b, metaFieldLastUpdatedTimestamp, x.LastUpdatedTimestamp); err != nil {
			return nil, errors.Wrap(err, "last_updated_timestamp")
		}
	}
	return b, nil
}

func (x *EntityList) appendTo(b []byte) ([]byte, error) {
	if x == nil {
		return b, nil
	}
	var err error
	for i, e := range x.Entities {
		if e == nil {
			e = &Entity{}
		}
		if b, err = appendMessage(b, entityListFieldEntities, e); err != nil {
			return nil, errors.Wrapf(err, "entities[%d]", i)
		}
	}
	return b, nil
}

func (x *Entity) consume(b []byte) error {
	*x = Entity{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch {
		case num == entityFieldSpec && typ == protowire.BytesType:
			if x.Spec == nil {
				x.Spec = &EntitySpecV2{}
			}
			return errors.Wrap(x.Spec.merge(v), "spec")
		case num == entityFieldMeta && typ == protowire.BytesType:
			if x.Meta == nil {
				x.Meta = &EntityMeta{}
			}
			return errors.Wrap(x.Meta.merge(v), "meta")
		}
		return nil
	})
}

func (x *EntitySpecV2) merge(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if typ == protowire.VarintType {
			if num != specFieldValueType {
				return nil
			}
			code, n := protowire.ConsumeVarint(v)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "value_type")
			}
			x.ValueType = types.ValueType_Enum(int32(code))
			return nil
		}
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case specFieldName:
			x.Name = string(v)
		case specFieldDescription:
			x.Description = string(v)
		case specFieldJoinKey:
			x.JoinKey = string(v)
		case specFieldProject:
			x.Project = string(v)
		case specFieldOwner:
			x.Owner = string(v)
		case specFieldTags:
			key, value, err := consumeMapEntry(v)
			if err != nil {
				return errors.Wrap(err, "tags")
			}
			if x.Tags == nil {
				x.Tags = make(map[string]string)
			}
			x.Tags[key] = string(value)
		case specFieldJoinKeys:
			key, value, err := consumeMapEntry(v)
			if err != nil {
				return errors.Wrap(err, "join_keys")
			}
			spec := &JoinKeySpec{}
			if err := spec.merge(value); err != nil {
				return errors.Wrapf(err, "join_keys[%s]", key)
			}
			if x.JoinKeys == nil {
				x.JoinKeys = make(map[string]*JoinKeySpec)
			}
			x.JoinKeys[key] = spec
		}
		return nil
	})
}

func (x *JoinKeySpec) merge(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch {
		case num == joinKeyFieldName && typ == protowire.BytesType:
			x.Name = string(v)
		case num == joinKeyFieldDescription && typ == protowire.BytesType:
			x.Description = string(v)
		case num == joinKeyFieldValueType && typ == protowire.VarintType:
			code, n := protowire.ConsumeVarint(v)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "value_type")
			}
			x.ValueType = types.ValueType_Enum(int32(code))
		}
		return nil
	})
}

func (x *EntityMeta) merge(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case metaFieldCreatedTimestamp:
			if x.CreatedTimestamp == nil {
				x.CreatedTimestamp = &timestamppb.Timestamp{}
			}
			return errors.Wrap(mergeTimestamp(v, x.CreatedTimestamp), "created_timestamp")
		case metaFieldLastUpdatedTimestamp:
			if x.LastUpdatedTimestamp == nil {
				x.LastUpdatedTimestamp = &timestamppb.Timestamp{}
			}
			return errors.Wrap(mergeTimestamp(v, x.LastUpdatedTimestamp), "last_updated_timestamp")
		}
		return nil
	})
}

func (x *EntityList) consume(b []byte) error {
	*x = EntityList{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != entityListFieldEntities || typ != protowire.BytesType {
			return nil
		}
		e := &Entity{}
		if err := e.consume(v); err != nil {
			return errors.Wrapf(err, "entities[%d]", len(x.Entities))
		}
		x.Entities = append(x.Entities, e)
		return nil
	})
}

// consumeFields walks the fields of an encoded message. For varint fields
// v holds the raw varint, for length-delimited fields it holds the payload.
// Unknown fields reach the handler too and are ignored there.
func consumeFields(b []byte, handle func(protowire.Number, protowire.Type, []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "malformed tag")
		}
		b = b[n:]

		var v []byte
		switch typ {
		case protowire.BytesType:
			payload, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return errors.Wrapf(protowire.ParseError(m), "field %d", num)
			}
			v, n = payload, m
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return errors.Wrapf(protowire.ParseError(m), "field %d", num)
			}
			v, n = b[:m], m
		}
		if err := handle(num, typ, v); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func consumeMapEntry(b []byte) (string, []byte, error) {
	var key string
	var value []byte
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case 1:
			key = string(v)
		case 2:
			value = v
		}
		return nil
	})
	return key, value, err
}

func appendMessage(b []byte, num protowire.Number, m interface{ appendTo([]byte) ([]byte, error) }) ([]byte, error) {
	payload, err := m.appendTo(nil)
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload), nil
}

func appendTimestamp(b []byte, num protowire.Number, ts *timestamppb.Timestamp) ([]byte, error) {
	if err := ts.CheckValid(); err != nil {
		return nil, err
	}
	payload, err := timestampMarshaler.Marshal(ts)
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload), nil
}

func mergeTimestamp(b []byte, ts *timestamppb.Timestamp) error {
	return proto.UnmarshalOptions{Merge: true}.Unmarshal(b, ts)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendEnum(b []byte, num protowire.Number, e types.ValueType_Enum) []byte {
	if e == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(e)))
}

func appendMapKey(b []byte, key string) []byte {
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	return protowire.AppendString(b, key)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
