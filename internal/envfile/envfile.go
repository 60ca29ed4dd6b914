package envfile

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// File is a line-oriented KEY=VALUE configuration file. Comments, blank
// lines, and key order survive a rewrite untouched.
type File struct {
	path  string
	lines []line
	index map[string]int
}

type line struct {
	raw   string
	key   string
	value string
	pair  bool
}

// Load reads an env file. A missing file yields an empty File bound to the
// same path, ready to be populated and saved.
func Load(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("env file path required")
	}
	f := &File{path: path, index: make(map[string]int)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("read env file: %w", err)
	}

	for _, raw := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		f.appendLine(raw)
	}
	return f, nil
}

func (f *File) appendLine(raw string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		f.lines = append(f.lines, line{raw: raw})
		return
	}
	key, value, found := strings.Cut(trimmed, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		f.lines = append(f.lines, line{raw: raw})
		return
	}
	f.lines = append(f.lines, line{raw: raw, key: key, value: strings.TrimSpace(value), pair: true})
	if _, dup := f.index[key]; !dup {
		f.index[key] = len(f.lines) - 1
	}
}

// Path returns the file location.
func (f *File) Path() string { return f.path }

// Exists reports whether the file currently exists on disk.
func (f *File) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Get returns the value for key and whether the key is present.
func (f *File) Get(key string) (string, bool) {
	i, ok := f.index[key]
	if !ok {
		return "", false
	}
	return f.lines[i].value, true
}

// Keys returns present keys in file order. Duplicate keys are reported once;
// lookups always resolve to the first occurrence.
func (f *File) Keys() []string {
	keys := make([]string, 0, len(f.index))
	seen := make(map[string]struct{}, len(f.index))
	for _, l := range f.lines {
		if !l.pair {
			continue
		}
		if _, dup := seen[l.key]; dup {
			continue
		}
		seen[l.key] = struct{}{}
		keys = append(keys, l.key)
	}
	return keys
}

// Set updates or appends a key. An existing value is only overwritten when it
// is empty or a recognized placeholder; otherwise the call reports false and
// leaves the value untouched.
func (f *File) Set(key, value string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	if i, ok := f.index[key]; ok {
		if !IsPlaceholder(f.lines[i].value) {
			return false
		}
		f.lines[i].value = value
		f.lines[i].raw = key + "=" + value
		return true
	}
	f.lines = append(f.lines, line{raw: key + "=" + value, key: key, value: value, pair: true})
	f.index[key] = len(f.lines) - 1
	return true
}

// Append adds a comment line.
func (f *File) Append(comment string) {
	f.lines = append(f.lines, line{raw: comment})
}

// Save writes the file with owner-only permissions; it carries secrets.
func (f *File) Save() error {
	var buf strings.Builder
	for _, l := range f.lines {
		buf.WriteString(l.raw)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(f.path, []byte(buf.String()), 0o600); err != nil {
		return fmt.Errorf("write env file: %w", err)
	}
	return nil
}

// PlaceholderKeys returns the keys whose values are still placeholders.
func (f *File) PlaceholderKeys() []string {
	var keys []string
	for _, key := range f.Keys() {
		if value, _ := f.Get(key); IsPlaceholder(value) {
			keys = append(keys, key)
		}
	}
	return keys
}

// IsPlaceholder reports whether a value is a recognizable sentinel indicating
// a secret that still needs manual provisioning.
func IsPlaceholder(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	lower := strings.ToLower(value)
	switch lower {
	case "changeme", "change_me", "replace_me", "todo", "xxx":
		return true
	}
	if strings.HasPrefix(value, "<") && strings.HasSuffix(value, ">") {
		return true
	}
	if strings.HasPrefix(lower, "your_") && strings.HasSuffix(lower, "_here") {
		return true
	}
	return false
}
