// Package snapshot stores versioned track documents in PostgreSQL.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/trackforge/editor/internal/document"
	"github.com/trackforge/editor/internal/typeid"
)

var ErrNotFound = errors.New("snapshot not found")

// Schema creates the snapshot table. Versions are per track and strictly
// increasing.
const Schema = `
CREATE TABLE IF NOT EXISTS track_snapshots (
	id         TEXT PRIMARY KEY,
	track_id   TEXT NOT NULL,
	version    INTEGER NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	points     INTEGER NOT NULL DEFAULT 0,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (track_id, version)
);`

// DB is the subset of *pgxpool.Pool the service needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Service struct {
	db DB
}

func NewService(db DB) *Service {
	return &Service{db: db}
}

// Snapshot describes one saved version of a track.
type Snapshot struct {
	ID        string    `json:"id" db:"id"`
	TrackID   string    `json:"trackId" db:"track_id"`
	Version   int       `json:"version" db:"version"`
	Name      string    `json:"name" db:"name"`
	Points    int       `json:"points" db:"points"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

func (s *Service) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Save stores doc as the next version of its track. The version is taken
// from the document unless an equal or newer one is already stored.
func (s *Service) Save(ctx context.Context, doc *document.TrackDocument) (*Snapshot, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("%w: missing track id", document.ErrInvalidDocument)
	}

	var latest int
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM track_snapshots WHERE track_id = $1`,
		doc.ID,
	).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("get latest version: %w", err)
	}
	if doc.Version <= latest {
		doc.Version = latest + 1
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	snap := &Snapshot{
		ID:      typeid.NewSnapshotID(),
		TrackID: doc.ID,
		Version: doc.Version,
		Name:    doc.Name,
		Points:  len(doc.Points),
	}
	err = s.db.QueryRow(ctx,
		`INSERT INTO track_snapshots (id, track_id, version, name, points, document)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		snap.ID, snap.TrackID, snap.Version, snap.Name, snap.Points, docJSON,
	).Scan(&snap.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	return snap, nil
}

// Latest returns the newest document saved for trackID.
func (s *Service) Latest(ctx context.Context, trackID string) (*document.TrackDocument, error) {
	return s.queryDocument(ctx,
		`SELECT document FROM track_snapshots WHERE track_id = $1
		 ORDER BY version DESC LIMIT 1`,
		trackID,
	)
}

// Get returns the document stored in one snapshot.
func (s *Service) Get(ctx context.Context, snapshotID string) (*document.TrackDocument, error) {
	return s.queryDocument(ctx, `SELECT document FROM track_snapshots WHERE id = $1`, snapshotID)
}

func (s *Service) queryDocument(ctx context.Context, sql string, arg string) (*document.TrackDocument, error) {
	var raw []byte
	if err := s.db.QueryRow(ctx, sql, arg).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return document.Parse(raw)
}

// List returns the snapshots of a track, newest first.
func (s *Service) List(ctx context.Context, trackID string) ([]Snapshot, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, track_id, version, name, points, created_at
		 FROM track_snapshots WHERE track_id = $1
		 ORDER BY version DESC`,
		trackID,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	snaps, err := pgx.CollectRows(rows, pgx.RowToStructByName[Snapshot])
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snaps, nil
}
