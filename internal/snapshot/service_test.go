package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/trackforge/editor/internal/document"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

// fakeDB answers the service's single-row queries from memory.
type fakeDB struct {
	latest   int
	inserted []any
	doc      []byte
}

func (db *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (db *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "MAX(version)"):
		return fakeRow{func(dest ...any) error {
			*dest[0].(*int) = db.latest
			return nil
		}}
	case strings.HasPrefix(strings.TrimSpace(sql), "INSERT"):
		db.inserted = args
		return fakeRow{func(dest ...any) error {
			*dest[0].(*time.Time) = time.Unix(0, 0)
			return nil
		}}
	default:
		return fakeRow{func(dest ...any) error {
			if db.doc == nil {
				return pgx.ErrNoRows
			}
			*dest[0].(*[]byte) = db.doc
			return nil
		}}
	}
}

func TestService_SaveBumpsVersion(t *testing.T) {
	db := &fakeDB{latest: 4}
	s := NewService(db)

	doc := document.NewSampleDocument("track_a")
	snap, err := s.Save(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Version != 5 || doc.Version != 5 {
		t.Errorf("version = %d, doc %d, want 5", snap.Version, doc.Version)
	}
	if db.inserted[1] != "track_a" || db.inserted[4] != len(doc.Points) {
		t.Errorf("insert args = %v", db.inserted[:5])
	}

	doc.Version = 9
	snap, _ = s.Save(context.Background(), doc)
	if snap.Version != 9 {
		t.Errorf("explicit newer version replaced: %d", snap.Version)
	}
}

func TestService_SaveRejectsInvalid(t *testing.T) {
	s := NewService(&fakeDB{})
	doc := document.NewEmptyDocument("", "x")
	if _, err := s.Save(context.Background(), doc); !errors.Is(err, document.ErrInvalidDocument) {
		t.Errorf("err = %v", err)
	}
}

func TestService_Latest(t *testing.T) {
	db := &fakeDB{}
	s := NewService(db)
	if _, err := s.Latest(context.Background(), "track_a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	db.doc, _ = json.Marshal(document.NewSampleDocument("track_a"))
	doc, err := s.Latest(context.Background(), "track_a")
	if err != nil || doc.ID != "track_a" {
		t.Errorf("Latest = %v, %v", doc, err)
	}
}
