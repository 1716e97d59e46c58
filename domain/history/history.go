// Package history defines the Record entity for remembered codes.
package history

import (
	"errors"
	"fmt"
	"time"
)

// Common errors for history operations.
var (
	ErrRecordNotFound = errors.New("history record not found")
	ErrEmptyPayload   = errors.New("history record payload is empty")
	ErrUnknownSource  = errors.New("unknown history record source")
)

// Source states how a record entered the history.
type Source string

const (
	// SourceGenerated marks payloads the user rendered as an image.
	SourceGenerated Source = "generated"
	// SourceScanned marks payloads decoded from a loaded image.
	SourceScanned Source = "scanned"
)

// Valid reports whether the source is one of the known values.
func (s Source) Valid() bool {
	return s == SourceGenerated || s == SourceScanned
}

// Record represents one remembered payload.
type Record struct {
	// ID is the unique identifier (UUID string)
	ID string

	// Format is the symbology display name, e.g. "QR Code" or "EAN-13"
	Format string

	// Payload is the encoded or decoded text
	Payload string

	// Source states whether the payload was generated or scanned
	Source Source

	// CreatedAt is when the record was (last) added
	CreatedAt time.Time
}

// Key returns the deduplication key. Two records with the same key describe
// the same payload and are collapsed into one.
func (r *Record) Key() string {
	return fmt.Sprintf("%s|%s|%s", r.Format, r.Source, r.Payload)
}

// Validate checks the record fields needed for persistence.
func (r *Record) Validate() error {
	if r.Payload == "" {
		return ErrEmptyPayload
	}
	if !r.Source.Valid() {
		return ErrUnknownSource
	}
	return nil
}

// Clone creates a copy of the record.
func (r *Record) Clone() *Record {
	clone := *r
	return &clone
}
