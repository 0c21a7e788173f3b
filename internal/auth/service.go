package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trackforge/editor/internal/typeid"
)

var ErrInvalidToken = errors.New("invalid token")

const tokenTTL = 24 * time.Hour

// Service issues and checks editing session tokens. A token binds one
// websocket connection to one track.
type Service struct {
	jwtSecret []byte
	now       func() time.Time
}

func NewService(jwtSecret string) *Service {
	return &Service{
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

// Claims are the contents of a session token. The subject is the session id.
type Claims struct {
	TrackID     string `json:"trk"`
	DisplayName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type Session struct {
	Token       string    `json:"token"`
	SessionID   string    `json:"sessionId"`
	TrackID     string    `json:"trackId"`
	DisplayName string    `json:"displayName"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// IssueToken starts a session on trackID.
func (s *Service) IssueToken(trackID, displayName string) (*Session, error) {
	if err := typeid.Validate(trackID, typeid.PrefixTrack); err != nil {
		return nil, err
	}

	now := s.now()
	sess := &Session{
		SessionID:   typeid.NewSessionID(),
		TrackID:     trackID,
		DisplayName: displayName,
		ExpiresAt:   now.Add(tokenTTL).Truncate(time.Second),
	}
	claims := Claims{
		TrackID:     trackID,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.SessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	sess.Token = signed
	return sess, nil
}

// ValidateToken checks the signature and expiry and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" || claims.TrackID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
