package shopify

import (
	"fmt"
	"strings"
)

// ConfigError lists the settings missing for the admin API.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Missing, ", ")
}

type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("shopify returned status %d", e.Status)
}

// GraphQLError carries the top-level errors array of a response.
type GraphQLError struct {
	Errors string
}

func (e *GraphQLError) Error() string {
	return "GraphQL errors: " + e.Errors
}

// ParseError reports a response without the expected shape.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return e.Msg
}

// UserError is a field-level validation error inside a mutation payload.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func (u UserError) String() string {
	if len(u.Field) == 0 {
		return u.Message
	}
	return strings.Join(u.Field, ".") + ": " + u.Message
}
