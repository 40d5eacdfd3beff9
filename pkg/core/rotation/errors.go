package rotation

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every ConfigurationError
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidParameter is matched by every InvalidParameterError
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ConfigurationError reports a malformed or empty rotation structure
type ConfigurationError struct {
	Track  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Track == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error in track %q: %s", e.Track, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// InvalidParameterError reports a scheduling parameter outside its domain
type InvalidParameterError struct {
	Parameter string
	Value     int
	Reason    string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%d: %s", e.Parameter, e.Value, e.Reason)
}

func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}
