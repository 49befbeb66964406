package model

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spaolacci/murmur3"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/feast-dev/feast-entity/go/protos/feast/core"
	"github.com/feast-dev/feast-entity/go/protos/feast/types"
)

// Entity is a named set of join keys that feature views are keyed on.
//
// The join keys are fixed at construction. JoinKey and ValueType expose the
// first of them for readers that only know single-key entities. The
// remaining fields may be set directly; the timestamps are owned by the
// registry that stores the entity.
type Entity struct {
	Name                 string
	Description          string
	Tags                 map[string]string
	Owner                string
	CreatedTimestamp     *time.Time
	LastUpdatedTimestamp *time.Time

	joinKeys []JoinKey
}

type entityOptions struct {
	joinKeys    JoinKeysInput
	valueType   *types.ValueType_Enum
	description string
	tags        map[string]string
	owner       string
	diagnostics Diagnostics
}

type EntityOption func(*entityOptions)

func WithJoinKeys(joinKeys JoinKeysInput) EntityOption {
	return func(o *entityOptions) { o.joinKeys = joinKeys }
}

// WithValueType types the join key of a single-key entity declared with
// JoinKeyNames or without join keys.
func WithValueType(valueType types.ValueType_Enum) EntityOption {
	return func(o *entityOptions) { o.valueType = valueType.Enum() }
}

func WithDescription(description string) EntityOption {
	return func(o *entityOptions) { o.description = description }
}

func WithTags(tags map[string]string) EntityOption {
	return func(o *entityOptions) { o.tags = tags }
}

func WithOwner(owner string) EntityOption {
	return func(o *entityOptions) { o.owner = owner }
}

func WithDiagnostics(diagnostics Diagnostics) EntityOption {
	return func(o *entityOptions) { o.diagnostics = diagnostics }
}

// NewEntity builds an entity and normalizes its join keys. It does not
// validate the result; call IsValid before registering the entity.
func NewEntity(name string, opts ...EntityOption) (*Entity, error) {
	o := entityOptions{diagnostics: DefaultDiagnostics}
	for _, opt := range opts {
		opt(&o)
	}

	joinKeys, err := NormalizeJoinKeys(name, o.joinKeys, o.valueType)
	if err != nil {
		return nil, errors.Wrapf(err, "entity %s", name)
	}

	if o.valueType == nil && len(joinKeys) == 1 && o.diagnostics != nil {
		o.diagnostics.Deprecated(missingValueTypeNotice(name, joinKeys[0].Name))
	}

	return newEntity(name, joinKeys, o.description, o.tags, o.owner), nil
}

func newEntity(name string, joinKeys []JoinKey, description string, tags map[string]string, owner string) *Entity {
	return &Entity{
		Name:        name,
		Description: description,
		Tags:        copyTags(tags),
		Owner:       owner,
		joinKeys:    joinKeys,
	}
}

// JoinKey returns the name of the first join key.
func (e *Entity) JoinKey() string {
	if len(e.joinKeys) == 0 {
		return ""
	}
	return e.joinKeys[0].Name
}

// ValueType returns the type of the first join key.
func (e *Entity) ValueType() types.ValueType_Enum {
	if len(e.joinKeys) == 0 {
		return types.ValueType_UNKNOWN
	}
	return e.joinKeys[0].ValueType
}

func (e *Entity) JoinKeys() []JoinKey {
	out := make([]JoinKey, len(e.joinKeys))
	copy(out, e.joinKeys)
	return out
}

func (e *Entity) JoinKeyMap() map[string]types.ValueType_Enum {
	out := make(map[string]types.ValueType_Enum, len(e.joinKeys))
	for _, key := range e.joinKeys {
		out[key.Name] = key.ValueType
	}
	return out
}

func (e *Entity) GetValueTypes() []types.ValueType_Enum {
	out := make([]types.ValueType_Enum, len(e.joinKeys))
	for i, key := range e.joinKeys {
		out[i] = key.ValueType
	}
	return out
}

func (e *Entity) GetJoinKeyNames() []string {
	out := make([]string, len(e.joinKeys))
	for i, key := range e.joinKeys {
		out[i] = key.Name
	}
	return out
}

func (e *Entity) GetJoinKeyValueType(joinKey string) (types.ValueType_Enum, error) {
	for _, key := range e.joinKeys {
		if key.Name == joinKey {
			return key.ValueType, nil
		}
	}
	return types.ValueType_UNKNOWN, errors.Wrapf(ErrJoinKeyNotFound, "entity %s has no join key %q", e.Name, joinKey)
}

// IsValid reports the first problem found with the entity, checking the
// name, then the presence of join keys, then each join key in order.
func (e *Entity) IsValid() error {
	if e.Name == "" {
		return errors.Wrap(ErrInvalidState, "the entity does not have a name")
	}
	if len(e.joinKeys) == 0 {
		return errors.Wrapf(ErrInvalidState, "the entity %s does not have any join keys", e.Name)
	}
	for _, key := range e.joinKeys {
		if key.Name == "" {
			return errors.Wrapf(ErrInvalidState, "the entity %s has an empty join key name", e.Name)
		}
		if !key.ValueType.IsDefined() || key.ValueType == types.ValueType_UNKNOWN {
			return errors.Wrapf(ErrInvalidState, "the entity %s join key '%s' has an invalid type", e.Name, key.Name)
		}
	}
	return nil
}

// Equals compares name, join keys (in any order), description, tags and
// owner. Timestamps are ignored.
func (e *Entity) Equals(other *Entity) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.Name != other.Name || e.Description != other.Description || e.Owner != other.Owner {
		return false
	}
	if len(e.joinKeys) != len(other.joinKeys) || len(e.Tags) != len(other.Tags) {
		return false
	}
	otherKeys := other.JoinKeyMap()
	for _, key := range e.joinKeys {
		if valueType, ok := otherKeys[key.Name]; !ok || valueType != key.ValueType {
			return false
		}
	}
	for k, v := range e.Tags {
		if ov, ok := other.Tags[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// EqualsValue is Equals for values of unknown type. Comparing with anything
// other than an Entity returns ErrNotAnEntity.
func (e *Entity) EqualsValue(other interface{}) (bool, error) {
	switch o := other.(type) {
	case *Entity:
		return e.Equals(o), nil
	case Entity:
		return e.Equals(&o), nil
	default:
		return false, errors.Wrapf(ErrNotAnEntity, "comparisons should only involve Entity objects, got %T", other)
	}
}

// Hash is consistent with Equals: it covers the name and the join keys
// sorted by name.
func (e *Entity) Hash() uint64 {
	keys := e.JoinKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })

	h := murmur3.New64()
	var buf [binary.MaxVarintLen64]byte
	writeString := func(s string) {
		n := binary.PutUvarint(buf[:], uint64(len(s)))
		h.Write(buf[:n])
		h.Write([]byte(s))
	}
	writeString(e.Name)
	for _, key := range keys {
		writeString(key.Name)
		n := binary.PutVarint(buf[:], int64(key.ValueType))
		h.Write(buf[:n])
	}
	return h.Sum64()
}

// Less orders entities by name.
func (e *Entity) Less(other *Entity) bool {
	return e.Name < other.Name
}

func SortByName(entities []*Entity) {
	sort.SliceStable(entities, func(i, j int) bool { return entities[i].Less(entities[j]) })
}

func (e *Entity) ToProto() *core.Entity {
	meta := &core.EntityMeta{}
	if e.CreatedTimestamp != nil {
		meta.CreatedTimestamp = timestamppb.New(*e.CreatedTimestamp)
	}
	if e.LastUpdatedTimestamp != nil {
		meta.LastUpdatedTimestamp = timestamppb.New(*e.LastUpdatedTimestamp)
	}

	joinKeys := make(map[string]*core.JoinKeySpec, len(e.joinKeys))
	for _, key := range e.joinKeys {
		joinKeys[key.Name] = &core.JoinKeySpec{
			Name:        key.Name,
			ValueType:   key.ValueType,
			Description: "",
		}
	}

	spec := &core.EntitySpecV2{
		Name:        e.Name,
		ValueType:   e.ValueType(),
		JoinKey:     e.JoinKey(),
		JoinKeys:    joinKeys,
		Description: e.Description,
		Tags:        copyTags(e.Tags),
		Owner:       e.Owner,
	}
	return &core.Entity{Spec: spec, Meta: meta}
}

// NewEntityFromProto rebuilds an entity from its wire form. The typed join
// keys are used when present; otherwise the entity has the single legacy
// join key. Since the wire map is unordered, the legacy join key is placed
// first and the others follow by name.
func NewEntityFromProto(proto *core.Entity) (*Entity, error) {
	spec := proto.GetSpec()
	if spec == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "entity proto has no spec")
	}

	var joinKeys []JoinKey
	if len(spec.GetJoinKeys()) > 0 {
		joinKeys = joinKeysFromSpecs(spec.GetJoinKey(), spec.GetJoinKeys())
	} else {
		var err error
		joinKeys, err = NormalizeJoinKeys(spec.GetName(), JoinKeyNames{spec.GetJoinKey()}, spec.GetValueType().Enum())
		if err != nil {
			return nil, errors.Wrapf(err, "entity %s", spec.GetName())
		}
	}

	entity := newEntity(spec.GetName(), joinKeys, spec.GetDescription(), spec.GetTags(), spec.GetOwner())
	if ts := proto.GetMeta().GetCreatedTimestamp(); ts != nil {
		created := ts.AsTime()
		entity.CreatedTimestamp = &created
	}
	if ts := proto.GetMeta().GetLastUpdatedTimestamp(); ts != nil {
		updated := ts.AsTime()
		entity.LastUpdatedTimestamp = &updated
	}
	return entity, nil
}

func joinKeysFromSpecs(legacyJoinKey string, specs map[string]*core.JoinKeySpec) []JoinKey {
	joinKeys := make([]JoinKey, 0, len(specs))
	for name, spec := range specs {
		joinKeys = append(joinKeys, JoinKey{Name: name, ValueType: spec.GetValueType()})
	}
	sort.Slice(joinKeys, func(i, j int) bool {
		if (joinKeys[i].Name == legacyJoinKey) != (joinKeys[j].Name == legacyJoinKey) {
			return joinKeys[i].Name == legacyJoinKey
		}
		return joinKeys[i].Name < joinKeys[j].Name
	})
	return joinKeys
}

// MarshalEntity encodes the wire form of e.
func MarshalEntity(e *Entity) ([]byte, error) {
	data, err := e.ToProto().Marshal()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal entity %s", e.Name)
	}
	return data, nil
}

func UnmarshalEntity(data []byte) (*Entity, error) {
	proto := &core.Entity{}
	if err := proto.Unmarshal(data); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal entity")
	}
	return NewEntityFromProto(proto)
}

// String renders the wire form of the entity as a YAML document.
func (e *Entity) String() string {
	return e.ToProto().String()
}

func (e *Entity) GoString() string {
	var b strings.Builder
	b.WriteString("Entity(\n")
	fmt.Fprintf(&b, "    name=%q,\n", e.Name)
	fmt.Fprintf(&b, "    value_type=%s,\n", e.ValueType())
	fmt.Fprintf(&b, "    join_key=%q,\n", e.JoinKey())
	b.WriteString("    join_keys={")
	for i, key := range e.joinKeys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: %s", key.Name, key.ValueType)
	}
	b.WriteString("},\n")
	fmt.Fprintf(&b, "    description=%q,\n", e.Description)
	fmt.Fprintf(&b, "    tags=%v,\n", e.Tags)
	fmt.Fprintf(&b, "    owner=%q,\n", e.Owner)
	fmt.Fprintf(&b, "    created_timestamp=%s,\n", formatTime(e.CreatedTimestamp))
	fmt.Fprintf(&b, "    last_updated_timestamp=%s\n", formatTime(e.LastUpdatedTimestamp))
	b.WriteString(")")
	return b.String()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "None"
	}
	return t.Format(time.RFC3339Nano)
}

func copyTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}
