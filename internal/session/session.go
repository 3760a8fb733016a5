// Package session keeps the logged-in identity in a signed cookie.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "sessionid"

var ErrNoSession = errors.New("no valid session")

type Identity struct {
	UserID   int64
	Username string
}

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewManager signs tokens with secret. secure marks the cookie Secure, which
// should be off only for plain-HTTP local runs.
func NewManager(secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, secure: secure, now: time.Now}
}

func (m *Manager) Issue(id Identity) (string, error) {
	now := m.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	return tok.SignedString(m.secret)
}

func (m *Manager) Parse(raw string) (*Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	uid, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || uid <= 0 {
		return nil, fmt.Errorf("%w: bad subject %q", ErrNoSession, c.Subject)
	}
	return &Identity{UserID: uid, Username: c.Username}, nil
}

// Read returns the identity carried by the request cookie.
func (m *Manager) Read(c *gin.Context) (*Identity, error) {
	raw, err := c.Cookie(CookieName)
	if err != nil || raw == "" {
		return nil, ErrNoSession
	}
	return m.Parse(raw)
}

func (m *Manager) Write(c *gin.Context, id Identity) error {
	raw, err := m.Issue(id)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, raw, int(m.ttl.Seconds()), "/", "", m.secure, true)
	return nil
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", m.secure, true)
}
