package query

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError marks a malformed query definition, parameter spec or
// filter template. It is fatal for the affected definition and is
// raised before any benchmark iteration runs.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Msg
}

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// UnknownParameterError reports a filter placeholder that names a
// parameter with no matching spec. It is a config-class failure and
// aborts the definition the same way a ConfigError does.
type UnknownParameterError struct {
	Name string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("config: filter references unknown parameter %q", e.Name)
}

// MissingFieldError reports that a sampled record lacks the requested
// field, e.g. when a business entity is drawn for an individual-only
// attribute. It is recoverable: the caller omits the field from the
// filter and the query runs with fewer effective conditions.
type MissingFieldError struct {
	Collection string
	Field      string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("sampled %s record has no field %q", e.Collection, e.Field)
}

// NotConfiguredError reports a sample_from_store parameter used without
// a loaded value pool or data-access collaborator.
type NotConfiguredError struct {
	Collection string
	Field      string
}

func (e *NotConfiguredError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("no record pool loaded for collection %s", e.Collection)
	}
	return fmt.Sprintf("no value pool loaded for %s.%s", e.Collection, e.Field)
}

// DataAccessError wraps a failed collaborator call. At the iteration
// boundary it is counted as a failed iteration, never fatal to the run.
type DataAccessError struct {
	Op         string
	Collection string
	Err        error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("%s on %s: %v", e.Op, e.Collection, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

func wrapDataAccess(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	return &DataAccessError{Op: op, Collection: collection, Err: err}
}

// IsConfig reports whether err is fatal for a definition (ConfigError
// or UnknownParameterError anywhere in the chain).
func IsConfig(err error) bool {
	var ce *ConfigError
	var ue *UnknownParameterError
	return errors.As(err, &ce) || errors.As(err, &ue)
}

// IsMissingField reports whether err is a recoverable missing-field
// sampling outcome.
func IsMissingField(err error) bool {
	var mf *MissingFieldError
	return errors.As(err, &mf)
}
