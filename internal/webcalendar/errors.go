package webcalendar

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrConfiguration is matched by every *ConfigurationError.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInputContract is matched by every *InputContractError.
	ErrInputContract = errors.New("calendar data violates input contract")

	// ErrLayoutInvariant is matched by every *LayoutInvariantError.
	ErrLayoutInvariant = errors.New("table layout invariant violated")
)

// ConfigurationError reports an invalid option value. It is returned at
// configuration time, never deferred to a build.
type ConfigurationError struct {
	Option string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configure %s=%v: %s", e.Option, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// InputContractError reports a malformed calendar payload.
type InputContractError struct {
	Field  string
	Reason string
}

func (e *InputContractError) Error() string {
	if e.Field == "" {
		return "calendar data: " + e.Reason
	}
	return fmt.Sprintf("calendar data: %s: %s", e.Field, e.Reason)
}

func (e *InputContractError) Unwrap() error { return ErrInputContract }

// LayoutInvariantError is returned when a build cannot proceed without
// guessing, e.g. a season decision needs a reference date that the dataset
// does not carry.
type LayoutInvariantError struct {
	EventKey string
	Reason   string
}

func (e *LayoutInvariantError) Error() string {
	if e.EventKey == "" {
		return "layout: " + e.Reason
	}
	return fmt.Sprintf("layout: event %s: %s", e.EventKey, e.Reason)
}

func (e *LayoutInvariantError) Unwrap() error { return ErrLayoutInvariant }

// IsConfigurationError checks if an error is a configuration error.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsInputContractError checks if an error is an input contract error.
func IsInputContractError(err error) bool {
	return errors.Is(err, ErrInputContract)
}
