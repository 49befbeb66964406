package main

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"

	"github.com/feast-dev/feast-entity/go/internal/feast/model"
	"github.com/feast-dev/feast-entity/go/protos/feast/types"
)

type entityDefinition struct {
	Name        string                `json:"name"`
	JoinKeys    json.RawMessage       `json:"join_keys,omitempty"`
	ValueType   *types.ValueType_Enum `json:"value_type,omitempty"`
	Description string                `json:"description,omitempty"`
	Tags        map[string]string     `json:"tags,omitempty"`
	Owner       string                `json:"owner,omitempty"`
}

type definitionFile struct {
	Entities []entityDefinition `json:"entities"`
}

func loadDefinitions(path string) ([]entityDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return parseDefinitions(data)
}

func parseDefinitions(data []byte) ([]entityDefinition, error) {
	file := definitionFile{}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "failed to parse entity definitions")
	}
	return file.Entities, nil
}

// joinKeysInput reads join_keys as either a list of names or a map from
// name to value type. Maps lose their order in YAML, so keys are taken in
// name order.
func (d entityDefinition) joinKeysInput() (model.JoinKeysInput, error) {
	raw := bytes.TrimSpace(d.JoinKeys)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch raw[0] {
	case '[':
		var names []string
		if err := json.Unmarshal(raw, &names); err != nil {
			return nil, errors.Wrapf(model.ErrInvalidArgument, "entity %s join_keys: %v", d.Name, err)
		}
		return model.JoinKeyNames(names), nil
	case '{':
		var typed map[string]types.ValueType_Enum
		if err := json.Unmarshal(raw, &typed); err != nil {
			return nil, errors.Wrapf(model.ErrInvalidArgument, "entity %s join_keys: %v", d.Name, err)
		}
		return model.TypedJoinKeysFromMap(typed), nil
	default:
		return nil, errors.Wrapf(model.ErrInvalidArgument,
			"entity %s join_keys must be a list of names or a map of name to value type", d.Name)
	}
}

func (d entityDefinition) build(diagnostics model.Diagnostics) (*model.Entity, error) {
	joinKeys, err := d.joinKeysInput()
	if err != nil {
		return nil, err
	}
	opts := []model.EntityOption{
		model.WithJoinKeys(joinKeys),
		model.WithDescription(d.Description),
		model.WithTags(d.Tags),
		model.WithOwner(d.Owner),
		model.WithDiagnostics(diagnostics),
	}
	if d.ValueType != nil {
		opts = append(opts, model.WithValueType(*d.ValueType))
	}
	return model.NewEntity(d.Name, opts...)
}
