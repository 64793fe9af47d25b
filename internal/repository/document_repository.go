package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nidohq/nido-api/internal/models"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, d models.Document) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO documents (id, child_id, title, blob_path, public_url, size_bytes, uploaded_by, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Id, d.ChildId, d.Title, d.BlobPath, d.PublicURL, d.SizeBytes, d.UploadedBy, mustTime(d.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Get(ctx context.Context, id string) (models.Document, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, child_id, title, blob_path, public_url, size_bytes, uploaded_by, created_at
	FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Document{}, ErrNotFound
		}
		return models.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]models.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, child_id, title, blob_path, public_url, size_bytes, uploaded_by, created_at
	FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]models.Document, 0)
	for rows.Next() {
		doc, scanErr := scanDocument(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func scanDocument(s scanner) (models.Document, error) {
	var d models.Document
	var createdAt string
	if err := s.Scan(&d.Id, &d.ChildId, &d.Title, &d.BlobPath, &d.PublicURL, &d.SizeBytes, &d.UploadedBy, &createdAt); err != nil {
		return models.Document{}, err
	}
	var err error
	if d.CreatedAt, err = parseRequiredTime(createdAt); err != nil {
		return models.Document{}, err
	}
	return d, nil
}
