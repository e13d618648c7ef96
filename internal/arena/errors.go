package arena

import "fmt"

// ConfigurationError indicates a required credential, URL, or identifier is
// absent. It is always raised locally, before any network I/O happens.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Field)
}

// MissingIdentifierError indicates an operation needs a game identifier and
// none was supplied or stored.
type MissingIdentifierError struct {
	Op string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("game ID is required to %s", e.Op)
}

// NormalizedError is the uniform failure shape produced by the upstream
// client. Every remote or transport failure is converted into one of these;
// raw transport errors never cross the package boundary.
type NormalizedError struct {
	Message string
	Status  int
	Details any
}

func (e *NormalizedError) Error() string {
	return e.Message
}
