package model

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DeprecationNotice describes use of a construction path that will stop
// being accepted in a future release.
type DeprecationNotice struct {
	Entity  string
	JoinKey string
	Message string
}

// Diagnostics receives non-fatal notices raised while building entities.
type Diagnostics interface {
	Deprecated(notice DeprecationNotice)
}

// LogDiagnostics writes notices as zerolog warn events. A nil Logger uses
// the global logger.
type LogDiagnostics struct {
	Logger *zerolog.Logger
}

func (d LogDiagnostics) Deprecated(notice DeprecationNotice) {
	logger := d.Logger
	if logger == nil {
		logger = &log.Logger
	}
	logger.Warn().
		Str("entity", notice.Entity).
		Str("join_key", notice.JoinKey).
		Msg(notice.Message)
}

// DefaultDiagnostics is used by NewEntity when no Diagnostics option is given.
var DefaultDiagnostics Diagnostics = LogDiagnostics{}

func missingValueTypeNotice(entity, joinKey string) DeprecationNotice {
	return DeprecationNotice{
		Entity:  entity,
		JoinKey: joinKey,
		Message: fmt.Sprintf(
			"Entity value_type will be mandatory in the next release. Please specify a value_type for entity '%s'.",
			entity),
	}
}
