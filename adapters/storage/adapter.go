// Package storage keeps a history of analysis reports.
// Supports three backends: file, PostgreSQL and memory.
package storage

import (
	"context"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"

	"synergism-calc/core/engine"
	"synergism-calc/core/report"
	"synergism-calc/internal/clock"
	"synergism-calc/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendFile     Backend = "file"
	BackendPostgres Backend = "postgres"
	BackendMemory   Backend = "memory"
)

// DefaultProfile groups records saved without a profile.
const DefaultProfile = "default"

//go:generate go tool mockgen -destination=mocks/mock_store.go -package=mocks . Store

// Store is the storage interface
type Store interface {
	// Save stores a report. ID, Profile and CreatedAt are filled in when empty.
	Save(ctx context.Context, rec *Record) error

	// Get retrieves a record by ID
	Get(ctx context.Context, id string) (*Record, error)

	// List lists records, newest save first
	List(ctx context.Context, filter *ListFilter) ([]*Record, error)

	// Delete removes a record
	Delete(ctx context.Context, id string) error

	// Latest gets the newest record of a profile
	Latest(ctx context.Context, profile string) (*Record, error)

	// Compare compares two records
	Compare(ctx context.Context, oldID, newID string) (*report.Comparison, error)

	// Close closes the store
	Close() error
}

// Record is a stored report
type Record struct {
	// ID is the report ID
	ID string `json:"id"`

	// Profile groups the reports of one player
	Profile string `json:"profile"`

	// CreatedAt is when the record was stored
	CreatedAt time.Time `json:"created_at"`

	Report *report.Report `json:"report"`
}

// Summary is a record without its sections, for listings
type Summary struct {
	ID             string       `json:"id"`
	Profile        string       `json:"profile"`
	CreatedAt      time.Time    `json:"created_at"`
	SavedAt        time.Time    `json:"saved_at"`
	Stage          engine.Stage `json:"stage"`
	PriceTableHash string       `json:"price_table_hash,omitempty"`
	Warnings       int          `json:"warnings"`
}

// Summary returns the listing view of the record.
func (r *Record) Summary() Summary {
	return Summary{
		ID:             r.ID,
		Profile:        r.Profile,
		CreatedAt:      r.CreatedAt,
		SavedAt:        r.Report.SavedAt,
		Stage:          r.Report.Stage,
		PriceTableHash: r.Report.PriceTableHash,
		Warnings:       len(r.Report.Warnings),
	}
}

// ListFilter filters record listing
type ListFilter struct {
	Profile string

	// Since and Until bound the save time
	Since time.Time
	Until time.Time

	Limit  int
	Offset int
}

func (f *ListFilter) match(r *Record) bool {
	if f == nil {
		return true
	}
	if f.Profile != "" && r.Profile != f.Profile {
		return false
	}
	if !f.Since.IsZero() && r.Report.SavedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && r.Report.SavedAt.After(f.Until) {
		return false
	}
	return true
}

func (f *ListFilter) page(records []*Record) []*Record {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Report.SavedAt.Equal(b.Report.SavedAt) {
			return a.Report.SavedAt.After(b.Report.SavedAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if f == nil {
		return records
	}
	if f.Offset > 0 {
		if f.Offset >= len(records) {
			return nil
		}
		records = records[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(records) {
		records = records[:f.Limit]
	}
	return records
}

// Option configures a store
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock sets the clock used for CreatedAt
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

func newOptions(opts []Option) options {
	o := options{clock: clock.Real{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open returns the store for a backend. location is the directory of the
// file backend or the DSN of the postgres backend.
func Open(ctx context.Context, backend Backend, location string, opts ...Option) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(location, opts...)
	case BackendPostgres:
		return NewPostgresStore(ctx, location, opts...)
	case BackendMemory:
		return NewMemoryStore(opts...), nil
	default:
		return nil, errors.Newf(errors.TypeConfig, "unknown storage backend %q", backend)
	}
}

var profilePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// prepare validates rec and fills in its defaults.
func prepare(rec *Record, c clock.Clock) error {
	if rec == nil || rec.Report == nil {
		return errors.Input("record has no report")
	}
	if rec.Profile == "" {
		rec.Profile = DefaultProfile
	}
	if !profilePattern.MatchString(rec.Profile) {
		return errors.Newf(errors.TypeInput, "invalid profile %q", rec.Profile).
			WithContext("profile", rec.Profile)
	}
	if rec.ID == "" {
		if rec.Report.ID == uuid.Nil {
			rec.Report.ID = uuid.New()
		}
		rec.ID = rec.Report.ID.String()
	}
	if err := checkID(rec.ID); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = c.Now().UTC()
	}
	return nil
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Wrapf(errors.TypeInput, err, "invalid report id %q", id)
	}
	return nil
}

func compare(ctx context.Context, s Store, oldID, newID string) (*report.Comparison, error) {
	older, err := s.Get(ctx, oldID)
	if err != nil {
		return nil, err
	}
	newer, err := s.Get(ctx, newID)
	if err != nil {
		return nil, err
	}
	return report.Compare(older.Report, newer.Report), nil
}

func latest(ctx context.Context, s Store, profile string) (*Record, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	records, err := s.List(ctx, &ListFilter{Profile: profile, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.NotFound("profile", profile)
	}
	return records[0], nil
}
