package envfile

import (
	"fmt"
	"strconv"
)

// Entry declares one default key for a synthesized env file.
type Entry struct {
	Key     string
	Value   string
	Secret  bool // purely internal secret, safe to auto-generate
	Comment string
}

// StackDefaults returns the env keys the compose stack expects. Internal
// secrets (database passwords) are auto-generated during synthesis; keys that
// require external registration stay as marked placeholders.
func StackDefaults(uid, gid int, mediaRoot string) []Entry {
	return []Entry{
		{Key: "PUID", Value: strconv.Itoa(uid), Comment: "# Container user and group"},
		{Key: "PGID", Value: strconv.Itoa(gid)},
		{Key: "TZ", Value: "Etc/UTC"},
		{Key: "MEDIA_ROOT", Value: mediaRoot, Comment: "# Host storage layout"},
		{Key: "DOWNLOADS_ROOT", Value: mediaRoot + "/downloads"},
		{Key: "POSTGRES_PASSWORD", Secret: true, Comment: "# Internal secrets (auto-generated)"},
		{Key: "REDIS_PASSWORD", Secret: true},
		{Key: "HOMARR_ENCRYPTION_KEY", Secret: true},
		{Key: "PLEX_CLAIM_TOKEN", Value: "your_plex_claim_here", Comment: "# External registrations (fill in manually)"},
		{Key: "JELLYFIN_API_KEY", Value: "your_jellyfin_api_key_here"},
		{Key: "TELEGRAM_BOT_TOKEN", Value: "your_telegram_bot_token_here"},
	}
}

// Synthesize fills an env file from defaults. Only empty or placeholder
// values are touched, so re-running never clobbers operator edits. It returns
// the keys that still need manual action.
func Synthesize(f *File, entries []Entry) ([]string, error) {
	for _, entry := range entries {
		if _, present := f.Get(entry.Key); !present && entry.Comment != "" {
			if len(f.Keys()) > 0 {
				f.Append("")
			}
			f.Append(entry.Comment)
		}
		value := entry.Value
		if entry.Secret {
			generated, err := GenerateSecret(32)
			if err != nil {
				return nil, fmt.Errorf("generate secret for %s: %w", entry.Key, err)
			}
			value = generated
		}
		f.Set(entry.Key, value)
	}
	return f.PlaceholderKeys(), nil
}
