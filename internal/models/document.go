package models

import (
	"strings"
	"time"
)

// Document is a shared family file stored in the blob store.
type Document struct {
	Id          string    `json:"id"`
	ChildId     string    `json:"child_id,omitempty"`
	Title       string    `json:"title"`
	BlobPath    string    `json:"blob_path"`
	PublicURL   string    `json:"public_url"`
	SizeBytes   int64     `json:"size_bytes"`
	SizeHuman   string    `json:"size,omitempty"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAgo string    `json:"uploaded_ago,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (d Document) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(d.UploadedBy) == "" {
		return ValidationError{Field: "uploaded_by", Message: "uploaded_by is required"}
	}
	return nil
}
