package models

import (
	"strings"
	"time"
)

type Child struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Birthdate string    `json:"birthdate,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c Child) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if c.Birthdate != "" {
		if _, err := time.Parse("2006-01-02", c.Birthdate); err != nil {
			return ValidationError{Field: "birthdate", Message: "invalid birthdate, want YYYY-MM-DD"}
		}
	}
	return nil
}
