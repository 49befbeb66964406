package core

import (
	"time"

	"github.com/ghodss/yaml"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type entityMetaView struct {
	CreatedTimestamp     string `json:"createdTimestamp,omitempty"`
	LastUpdatedTimestamp string `json:"lastUpdatedTimestamp,omitempty"`
}

type entityView struct {
	Spec *EntitySpecV2   `json:"spec,omitempty"`
	Meta *entityMetaView `json:"meta,omitempty"`
}

// Text renders the message as a YAML document. Timestamps are written in
// RFC 3339 form and absent fields are left out.
func (x *Entity) Text() (string, error) {
	view := entityView{Spec: x.GetSpec()}
	if meta := x.GetMeta(); meta != nil {
		view.Meta = &entityMetaView{
			CreatedTimestamp:     formatTimestamp(meta.CreatedTimestamp),
			LastUpdatedTimestamp: formatTimestamp(meta.LastUpdatedTimestamp),
		}
		if *view.Meta == (entityMetaView{}) {
			view.Meta = nil
		}
	}
	out, err := yaml.Marshal(view)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (x *Entity) String() string {
	text, err := x.Text()
	if err != nil {
		return "<invalid Entity: " + err.Error() + ">"
	}
	return text
}

func formatTimestamp(ts *timestamppb.Timestamp) string {
	if ts == nil {
		return ""
	}
	return ts.AsTime().Format(time.RFC3339Nano)
}
