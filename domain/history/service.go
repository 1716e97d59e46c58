package history

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultLimit caps the history when no explicit limit is configured.
const DefaultLimit = 50

// Service provides business logic for the code history.
type Service struct {
	repo  Repository
	limit int
}

// NewService creates a new history service. A non-positive limit selects
// DefaultLimit.
func NewService(repo Repository, limit int) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Service{repo: repo, limit: limit}
}

// Limit returns the configured record cap.
func (s *Service) Limit() int {
	return s.limit
}

// Add remembers a payload. A record with the same format, payload and source
// is refreshed in place instead of duplicated. When the cap is exceeded the
// oldest records are dropped.
func (s *Service) Add(ctx context.Context, format, payload string, source Source) (*Record, error) {
	record := &Record{
		ID:        uuid.NewString(),
		Format:    format,
		Payload:   payload,
		Source:    source,
		CreatedAt: time.Now(),
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, r := range existing {
		if r.Key() == record.Key() {
			refreshed := r.Clone()
			refreshed.CreatedAt = record.CreatedAt
			if err := s.repo.Update(ctx, refreshed); err != nil {
				return nil, err
			}
			return refreshed, nil
		}
	}

	if err := s.repo.Insert(ctx, record); err != nil {
		return nil, err
	}

	if err := s.enforceLimit(ctx, append(existing, record)); err != nil {
		return nil, err
	}

	return record, nil
}

// enforceLimit drops the oldest records until the cap is respected.
func (s *Service) enforceLimit(ctx context.Context, records []*Record) error {
	if len(records) <= s.limit {
		return nil
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	for _, r := range records[:len(records)-s.limit] {
		if err := s.repo.Delete(ctx, r.ID); err != nil {
			return err
		}
	}
	return nil
}

// List retrieves all records, newest first.
func (s *Service) List(ctx context.Context) ([]*Record, error) {
	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	// Sort newest first, then by ID for stable ordering
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})

	return records, nil
}

// Count returns the number of stored records.
func (s *Service) Count(ctx context.Context) (int, error) {
	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Remove deletes a single record.
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Clear deletes all records.
func (s *Service) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
