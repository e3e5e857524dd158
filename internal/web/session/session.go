// Package session keeps the signed-in user id behind a random cookie value.
//
// Only the user id is stored. Role and permissions are resolved from the
// database on every request so grant changes apply immediately.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// ErrNoSession is returned when the cookie is missing or its session expired.
var ErrNoSession = errors.New("no session")

// Store is the global session store instance.
var Store *session.Store //nolint:gochecknoglobals

// Data represents the session data structure.
type Data struct {
	UserID    uint64    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	if len(byteData) == 0 {
		return ErrNoSession
	}

	return json.Unmarshal(byteData, s)
}

// FromRequest reads the session referenced by the request cookie.
func FromRequest(c *fiber.Ctx) (*Data, error) {
	sessionID := c.Cookies(CookieName)
	if sessionID == "" {
		return nil, ErrNoSession
	}

	data := new(Data)
	if err := data.Read(sessionID); err != nil {
		return nil, err
	}

	if data.UserID == 0 {
		return nil, ErrNoSession
	}

	return data, nil
}

// Delete removes a session from the store.
func Delete(sessionID string) error {
	return Store.Storage.Delete(sessionID)
}

// Init initializes the session store. A nil storage keeps sessions in memory.
func Init(storage fiber.Storage) {
	Store = session.New(session.Config{
		Storage: storage,
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
