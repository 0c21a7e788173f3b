package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/trackforge/editor/internal/typeid"
)

func TestToken_RoundTrip(t *testing.T) {
	s := NewService("secret")
	track := typeid.NewTrackID()

	sess, err := s.IssueToken(track, "Ada")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := s.ValidateToken(sess.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.TrackID != track || claims.Subject != sess.SessionID || claims.DisplayName != "Ada" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestToken_Rejected(t *testing.T) {
	s := NewService("secret")
	sess, _ := s.IssueToken(typeid.NewTrackID(), "Ada")

	other := NewService("other-secret")
	if _, err := other.ValidateToken(sess.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign signature: %v", err)
	}

	expired := NewService("secret")
	expired.now = func() time.Time { return time.Now().Add(tokenTTL + time.Hour) }
	if _, err := expired.ValidateToken(sess.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: %v", err)
	}

	if _, err := s.ValidateToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: %v", err)
	}

	if _, err := s.IssueToken("proj_123", "Ada"); err == nil {
		t.Error("token issued for a non-track id")
	}
}

func TestMiddleware(t *testing.T) {
	s := NewService("secret")
	sess, _ := s.IssueToken(typeid.NewTrackID(), "Ada")
	h := s.Middleware(http.HandlerFunc(NewHandler(s).Me))

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"bearer", "Bearer " + sess.Token, "", http.StatusOK},
		{"query", "", "?token=" + sess.Token, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"bad scheme", "Basic abc", "", http.StatusUnauthorized},
		{"bad token", "Bearer abc", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandler_CreateSession(t *testing.T) {
	s := NewService("secret")
	h := NewHandler(s)
	track := typeid.NewTrackID()

	rec := httptest.NewRecorder()
	h.CreateSession(rec, httptest.NewRequest("POST", "/sessions", strings.NewReader(`{"trackId":"`+track+`"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var sess Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatal(err)
	}
	if sess.DisplayName != "Guest" || sess.TrackID != track || sess.Token == "" {
		t.Errorf("session = %+v", sess)
	}

	rec = httptest.NewRecorder()
	h.CreateSession(rec, httptest.NewRequest("POST", "/sessions", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing track: %d", rec.Code)
	}
}
