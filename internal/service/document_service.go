package service

import (
	"context"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/nidohq/nido-api/internal/blob"
	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/realtime"
	"github.com/nidohq/nido-api/internal/repository"
)

type DocumentService struct {
	documentRepo *repository.DocumentRepository
	blobs        *blob.Store
	hub          *realtime.Hub
}

func NewDocumentService(documentRepo *repository.DocumentRepository, blobs *blob.Store, hub *realtime.Hub) *DocumentService {
	return &DocumentService{documentRepo: documentRepo, blobs: blobs, hub: hub}
}

// Upload stores the file bytes, records the document row, and announces it
// on the realtime channel so other family members see it appear.
func (s *DocumentService) Upload(ctx context.Context, doc models.Document, filename string, r io.Reader) (models.Document, error) {
	doc.Id = uuid.NewString()
	doc.CreatedAt = time.Now().UTC()

	if err := doc.Validate(); err != nil {
		return models.Document{}, err
	}

	path, size, err := s.blobs.Put("documents", doc.Id+"-"+filename, r)
	if err != nil {
		return models.Document{}, err
	}
	doc.BlobPath = path
	doc.PublicURL = s.blobs.PublicURL(path)
	doc.SizeBytes = size

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		_ = s.blobs.Remove(path)
		return models.Document{}, err
	}

	s.hub.Publish(realtime.Event{Collection: "documents", Action: realtime.ActionInsert, Id: doc.Id, Payload: decorate(doc)})
	return decorate(doc), nil
}

func (s *DocumentService) List(ctx context.Context) ([]models.Document, error) {
	docs, err := s.documentRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i] = decorate(docs[i])
	}
	return docs, nil
}

// decorate fills the display-only size and age fields.
func decorate(d models.Document) models.Document {
	d.SizeHuman = humanize.Bytes(uint64(d.SizeBytes))
	d.UploadedAgo = humanize.Time(d.CreatedAt)
	return d
}
