package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/realtime"
	"github.com/nidohq/nido-api/internal/repository"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := repository.InitDB(filepath.Join(t.TempDir(), "nido-test.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createChild(t *testing.T, db *sql.DB) models.Child {
	t.Helper()
	now := time.Now().UTC()
	child := models.Child{
		Id:        uuid.NewString(),
		Name:      "Maya",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repository.NewChildRepository(db).Create(context.Background(), child); err != nil {
		t.Fatalf("create child: %v", err)
	}
	return child
}

func createTemplate(t *testing.T, db *sql.DB, tpl models.Template) models.Template {
	t.Helper()
	now := time.Now().UTC()
	if tpl.Id == "" {
		tpl.Id = uuid.NewString()
	}
	for i := range tpl.Tasks {
		if tpl.Tasks[i].Id == "" {
			tpl.Tasks[i].Id = uuid.NewString()
		}
	}
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	if err := repository.NewTemplateRepository(db).Create(context.Background(), tpl); err != nil {
		t.Fatalf("create template: %v", err)
	}
	return tpl
}

func newHub() *realtime.Hub {
	return realtime.NewHub()
}
