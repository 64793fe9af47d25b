package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"github.com/nidohq/nido-api/internal/api"
	"github.com/nidohq/nido-api/internal/blob"
	"github.com/nidohq/nido-api/internal/realtime"
	"github.com/nidohq/nido-api/internal/repository"
	"github.com/nidohq/nido-api/internal/seed"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatal("Error loading .env:", err)
	}

	addr := envOr("NIDO_ADDR", ":8080")
	dataDir := envOr("NIDO_DATA_DIR", "./data")
	baseURL := envOr("NIDO_PUBLIC_BASE_URL", "http://localhost:8080")
	seedFile := os.Getenv("NIDO_SEED_FILE")

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal("Error creating data dir:", err)
	}

	// One server instance per data dir; the sqlite file is not shared.
	lock := flock.New(filepath.Join(dataDir, "nido.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatal("Error locking data dir:", err)
	}
	if !locked {
		log.Fatal("Data dir is already in use by another instance")
	}
	defer lock.Unlock()

	db, err := repository.InitDB(filepath.Join(dataDir, "nido.db"))
	if err != nil {
		log.Fatal("Error initializing DB:", err)
	}
	defer db.Close()

	blobs, err := blob.NewStore(filepath.Join(dataDir, "blobs"), baseURL)
	if err != nil {
		log.Fatal("Error initializing blob store:", err)
	}

	if seedFile != "" {
		templateRepo := repository.NewTemplateRepository(db)
		inserted, err := seed.LoadFile(context.Background(), templateRepo, seedFile)
		if err != nil {
			log.Fatal("Error seeding templates:", err)
		}
		if inserted > 0 {
			fmt.Printf("Seeded %d preloaded templates\n", inserted)
		}
	}

	hub := realtime.NewHub()
	router := api.SetupRouter(db, blobs, hub)

	fmt.Println("Nido API listening on", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("Error starting server:", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
