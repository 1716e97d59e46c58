// Package repository provides file-backed persistence for scan and
// generation history.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codestudio/domain/history"
)

const historyFileName = "history.json"

// historyDocument is the on-disk JSON structure for one history record.
type historyDocument struct {
	ID        string    `json:"id"`
	Format    string    `json:"format"`
	Payload   string    `json:"payload"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// JSONHistoryRepository implements history.Repository using a JSON file.
type JSONHistoryRepository struct {
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// NewJSONHistoryRepository creates a repository backed by the given file.
func NewJSONHistoryRepository(path string, logger *slog.Logger) *JSONHistoryRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONHistoryRepository{
		path:   path,
		logger: logger,
	}
}

// DefaultHistoryPath returns the per-user location of the history file.
func DefaultHistoryPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, "codestudio", historyFileName), nil
}

// FindAll retrieves all history records.
func (r *JSONHistoryRepository) FindAll(ctx context.Context) ([]*history.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs, err := r.readDocuments()
	if err != nil {
		return nil, err
	}

	records := make([]*history.Record, len(docs))
	for i, doc := range docs {
		records[i] = documentToRecord(&doc)
	}
	return records, nil
}

// Insert appends a new record.
func (r *JSONHistoryRepository) Insert(ctx context.Context, rec *history.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.readDocuments()
	if err != nil {
		return err
	}

	docs = append(docs, *recordToDocument(rec))
	if err := r.writeDocuments(docs); err != nil {
		return err
	}

	r.logger.Info("History record inserted", "id", rec.ID, "format", rec.Format)
	return nil
}

// Update replaces an existing record by ID.
func (r *JSONHistoryRepository) Update(ctx context.Context, rec *history.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.readDocuments()
	if err != nil {
		return err
	}

	found := false
	for i := range docs {
		if docs[i].ID == rec.ID {
			docs[i] = *recordToDocument(rec)
			found = true
			break
		}
	}
	if !found {
		return history.ErrRecordNotFound
	}

	return r.writeDocuments(docs)
}

// Delete removes a record by its identifier.
func (r *JSONHistoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.readDocuments()
	if err != nil {
		return err
	}

	kept := docs[:0]
	for _, doc := range docs {
		if doc.ID != id {
			kept = append(kept, doc)
		}
	}
	if len(kept) == len(docs) {
		return history.ErrRecordNotFound
	}

	if err := r.writeDocuments(kept); err != nil {
		return err
	}

	r.logger.Info("History record deleted", "id", id)
	return nil
}

// Clear removes all records.
func (r *JSONHistoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writeDocuments(nil); err != nil {
		return err
	}

	r.logger.Info("History cleared")
	return nil
}

// readDocuments loads the file. A missing file reads as an empty store.
func (r *JSONHistoryRepository) readDocuments() ([]historyDocument, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var docs []historyDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode history file: %w", err)
	}
	return docs, nil
}

// writeDocuments writes the full store through a temp file and rename so a
// crash mid-write never leaves a truncated history behind.
func (r *JSONHistoryRepository) writeDocuments(docs []historyDocument) error {
	if docs == nil {
		docs = []historyDocument{}
	}

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, historyFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// documentToRecord converts a stored document to a domain Record.
func documentToRecord(doc *historyDocument) *history.Record {
	return &history.Record{
		ID:        doc.ID,
		Format:    doc.Format,
		Payload:   doc.Payload,
		Source:    history.Source(doc.Source),
		CreatedAt: doc.CreatedAt,
	}
}

// recordToDocument converts a domain Record to its stored form.
func recordToDocument(rec *history.Record) *historyDocument {
	return &historyDocument{
		ID:        rec.ID,
		Format:    rec.Format,
		Payload:   rec.Payload,
		Source:    string(rec.Source),
		CreatedAt: rec.CreatedAt,
	}
}

// Ensure JSONHistoryRepository implements history.Repository
var _ history.Repository = (*JSONHistoryRepository)(nil)
