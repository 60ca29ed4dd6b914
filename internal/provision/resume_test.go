package provision

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResumeTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume-token.json")

	token := NewResumeToken()
	token.RemainingSteps = []string{"tailscale-enroll"}
	token.OAuthClientID = "id"
	token.OAuthClientSecret = "secret"
	token.Tailnet = "example.com"
	token.Tags = []string{"tag:media"}
	token.KeyExpirySeconds = 600
	token.Hostname = "sullivan"

	if err := SaveResumeToken(path, token); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadResumeToken(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID != token.ID {
		t.Fatalf("id mismatch: %q vs %q", loaded.ID, token.ID)
	}
	if loaded.OAuthClientSecret != "secret" || loaded.Tailnet != "example.com" {
		t.Fatalf("fields lost in round trip: %+v", loaded)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("token file must be owner-only, got %v", info.Mode().Perm())
	}
}

func TestLoadResumeTokenMissing(t *testing.T) {
	_, err := LoadResumeToken(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestDeleteResumeTokenToleratesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")
	if err := DeleteResumeToken(path); err != nil {
		t.Fatalf("deleting an absent token must succeed: %v", err)
	}
	if ResumeTokenExists(path) {
		t.Fatal("token should not exist")
	}
}
