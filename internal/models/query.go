package models

import (
	"fmt"
	"strings"
)

// Query is the request body accepted by the chat and diagnose endpoints.
type Query struct {
	Query string `json:"query"`
}

// Validate trims the question and rejects empty input.
func (q *Query) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return nil
}
