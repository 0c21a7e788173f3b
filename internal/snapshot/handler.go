package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/trackforge/editor/internal/document"
	"github.com/trackforge/editor/internal/plan"
	"github.com/trackforge/editor/internal/typeid"
)

// Store is what the handler needs from Service.
type Store interface {
	Save(ctx context.Context, doc *document.TrackDocument) (*Snapshot, error)
	Latest(ctx context.Context, trackID string) (*document.TrackDocument, error)
	Get(ctx context.Context, snapshotID string) (*document.TrackDocument, error)
	List(ctx context.Context, trackID string) ([]Snapshot, error)
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

type createTrackRequest struct {
	Name   string `json:"name"`
	Sample bool   `json:"sample"`
}

// CreateTrack starts a new track and stores its first snapshot.
func (h *Handler) CreateTrack(w http.ResponseWriter, r *http.Request) {
	var req createTrackRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	trackID := typeid.NewTrackID()
	doc := document.NewEmptyDocument(trackID, "Untitled")
	if req.Sample {
		doc = document.NewSampleDocument(trackID)
	}
	if req.Name != "" {
		doc.Name = req.Name
	}

	snap, err := h.store.Save(r.Context(), doc)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// Save stores the request body as the next snapshot of the track in the URL.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	trackID := mux.Vars(r)["trackId"]
	if err := typeid.Validate(trackID, typeid.PrefixTrack); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var doc document.TrackDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	doc.ID = trackID

	snap, err := h.store.Save(r.Context(), &doc)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.store.List(r.Context(), mux.Vars(r)["trackId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if snaps == nil {
		snaps = []Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Latest(r.Context(), mux.Vars(r)["trackId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Get(r.Context(), mux.Vars(r)["snapshotId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Plan prints the latest snapshot of a track as a PDF.
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Latest(r.Context(), mux.Vars(r)["trackId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := plan.Write(&buf, doc, plan.Options{}); err != nil {
		handleServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.ID+".pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Routes mounts the snapshot endpoints on r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/tracks", h.CreateTrack).Methods("POST")
	r.HandleFunc("/tracks/{trackId}/snapshots", h.List).Methods("GET")
	r.HandleFunc("/tracks/{trackId}/snapshots", h.Save).Methods("POST")
	r.HandleFunc("/tracks/{trackId}/snapshots/latest", h.Latest).Methods("GET")
	r.HandleFunc("/tracks/{trackId}/plan.pdf", h.Plan).Methods("GET")
	r.HandleFunc("/snapshots/{snapshotId}", h.Get).Methods("GET")
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, document.ErrInvalidDocument):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
