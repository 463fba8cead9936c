package eden

import "fmt"

// ConfigError reports required configuration that is absent.
type ConfigError struct {
	Var string
}

func (e *ConfigError) Error() string {
	return e.Var + " environment variable is not set"
}

// APIError is a non-2xx response from the agent API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// TransportError wraps a failure to reach the agent API at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to call eden: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError wraps a success response whose body could not be decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to decode eden response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
