package provision

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// ResumeToken carries the state and secrets stage two needs across the
// reboot boundary. It is written before the reboot and deleted only after a
// successful stage two; any exchange failure preserves it so the operator can
// re-run stage two manually.
type ResumeToken struct {
	ID                string    `json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	RemainingSteps    []string  `json:"remaining_steps"`
	OAuthClientID     string    `json:"oauth_client_id"`
	OAuthClientSecret string    `json:"oauth_client_secret"`
	Tailnet           string    `json:"tailnet"`
	Tags              []string  `json:"tags"`
	KeyExpirySeconds  int       `json:"key_expiry_seconds"`
	Hostname          string    `json:"hostname"`
}

// NewResumeToken allocates a token with a fresh ID.
func NewResumeToken() ResumeToken {
	return ResumeToken{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

// SaveResumeToken writes the token with owner-only permissions; it contains
// OAuth client secrets.
func SaveResumeToken(path string, token ResumeToken) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encode resume token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write resume token: %w", err)
	}
	return nil
}

// LoadResumeToken reads a previously saved token. A missing file is reported
// via os.ErrNotExist so callers can distinguish "stage one never ran".
func LoadResumeToken(path string) (ResumeToken, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ResumeToken{}, fmt.Errorf("read resume token: %w", err)
	}
	var token ResumeToken
	if err := json.Unmarshal(data, &token); err != nil {
		return ResumeToken{}, fmt.Errorf("parse resume token: %w", err)
	}
	return token, nil
}

// DeleteResumeToken removes the token file. Missing is not an error.
func DeleteResumeToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete resume token: %w", err)
	}
	return nil
}

// ResumeTokenExists reports whether a token is present on disk.
func ResumeTokenExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
