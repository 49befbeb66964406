// Package core holds the feast.core wire messages used to persist and
// transport registry objects.
package core

import (
	"github.com/feast-dev/feast-entity/go/protos/feast/types"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Field numbers of Entity.proto in this directory.
const (
	entityFieldSpec = 1
	entityFieldMeta = 2

	specFieldName        = 1
	specFieldValueType   = 2
	specFieldDescription = 3
	specFieldJoinKey     = 4
	specFieldTags        = 8
	specFieldProject     = 9
	specFieldOwner       = 10
	specFieldJoinKeys    = 11

	metaFieldCreatedTimestamp     = 1
	metaFieldLastUpdatedTimestamp = 2

	joinKeyFieldName        = 1
	joinKeyFieldValueType   = 2
	joinKeyFieldDescription = 3

	entityListFieldEntities = 1
)

type Entity struct {
	// User-specified specifications of this entity.
	Spec *EntitySpecV2 `json:"spec,omitempty"`
	// System-populated metadata for this entity.
	Meta *EntityMeta `json:"meta,omitempty"`
}

type EntitySpecV2 struct {
	// Name of the entity.
	Name string `json:"name,omitempty"`
	// Name of Feast project that this entity belongs to.
	Project string `json:"project,omitempty"`
	// Type of the entity. Kept for readers that only know a single join key.
	ValueType types.ValueType_Enum `json:"valueType,omitempty"`
	// Description of the entity.
	Description string `json:"description,omitempty"`
	// Join key for the entity. Kept for readers that only know a single join key.
	JoinKey string `json:"joinKey,omitempty"`
	// User defined metadata.
	Tags map[string]string `json:"tags,omitempty"`
	// Owner of the entity.
	Owner string `json:"owner,omitempty"`
	// Typed join keys, keyed by join key name.
	JoinKeys map[string]*JoinKeySpec `json:"joinKeys,omitempty"`
}

type JoinKeySpec struct {
	Name        string               `json:"name,omitempty"`
	ValueType   types.ValueType_Enum `json:"valueType,omitempty"`
	Description string               `json:"description,omitempty"`
}

type EntityMeta struct {
	CreatedTimestamp     *timestamppb.Timestamp `json:"createdTimestamp,omitempty"`
	LastUpdatedTimestamp *timestamppb.Timestamp `json:"lastUpdatedTimestamp,omitempty"`
}

type EntityList struct {
	Entities []*Entity `json:"entities,omitempty"`
}

func (x *Entity) GetSpec() *EntitySpecV2 {
	if x != nil {
		return x.Spec
	}
	return nil
}

func (x *Entity) GetMeta() *EntityMeta {
	if x != nil {
		return x.Meta
	}
	return nil
}

func (x *EntitySpecV2) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

func (x *EntitySpecV2) GetProject() string {
	if x != nil {
		return x.Project
	}
	return ""
}

func (x *EntitySpecV2) GetValueType() types.ValueType_Enum {
	if x != nil {
		return x.ValueType
	}
	return types.ValueType_INVALID
}

func (x *EntitySpecV2) GetDescription() string {
	if x != nil {
		return x.Description
	}
	return ""
}

func (x *EntitySpecV2) GetJoinKey() string {
	if x != nil {
		return x.JoinKey
	}
	return ""
}

func (x *EntitySpecV2) GetTags() map[string]string {
	if x != nil {
		return x.Tags
	}
	return nil
}

func (x *EntitySpecV2) GetOwner() string {
	if x != nil {
		return x.Owner
	}
	return ""
}

func (x *EntitySpecV2) GetJoinKeys() map[string]*JoinKeySpec {
	if x != nil {
		return x.JoinKeys
	}
	return nil
}

func (x *JoinKeySpec) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

func (x *JoinKeySpec) GetValueType() types.ValueType_Enum {
	if x != nil {
		return x.ValueType
	}
	return types.ValueType_INVALID
}

func (x *JoinKeySpec) GetDescription() string {
	if x != nil {
		return x.Description
	}
	return ""
}

func (x *EntityMeta) GetCreatedTimestamp() *timestamppb.Timestamp {
	if x != nil {
		return x.CreatedTimestamp
	}
	return nil
}

func (x *EntityMeta) GetLastUpdatedTimestamp() *timestamppb.Timestamp {
	if x != nil {
		return x.LastUpdatedTimestamp
	}
	return nil
}

func (x *EntityList) GetEntities() []*Entity {
	if x != nil {
		return x.Entities
	}
	return nil
}
