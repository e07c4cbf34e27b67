package store

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/gofiber/fiber/v2"
)

const statePrefix = "oauth-state:"

// StateStore tracks outstanding OAuth state values. States expire after ttl
// and are single-use.
type StateStore struct {
	storage fiber.Storage
	ttl     time.Duration
}

// NewState generates a random state value and records it until it expires.
func (s *StateStore) NewState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	state := hex.EncodeToString(buf)
	if err := s.storage.Set(statePrefix+state, []byte{1}, s.ttl); err != nil {
		return "", err
	}
	return state, nil
}

// Consume removes a state value, reporting whether it was outstanding.
func (s *StateStore) Consume(state string) bool {
	blob, err := s.storage.Get(statePrefix + state)
	if err != nil || len(blob) == 0 {
		return false
	}
	s.storage.Delete(statePrefix + state)
	return true
}

func NewStateStore(storage fiber.Storage, ttl time.Duration) *StateStore {
	return &StateStore{
		storage: storage,
		ttl:     ttl,
	}
}
