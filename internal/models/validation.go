package models

import "fmt"

// ValidationError is returned before any database call is made; handlers
// map it to a 422 so callers can fix the field and retry.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
