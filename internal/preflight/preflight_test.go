package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"sullivan/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFileReadable(t *testing.T) {
	f := filepath.Join(t.TempDir(), "docker-compose.yml")
	if err := os.WriteFile(f, []byte("services: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckFileReadable("compose", f); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckFileReadable("compose", f+".absent"); result.Passed {
		t.Fatal("expected failure for missing file")
	}
	if result := CheckFileReadable("compose", filepath.Dir(f)); result.Passed {
		t.Fatal("expected failure for directory path")
	}
}

func TestRunAllReportsMissingMount(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.WriteFile(cfg.Paths.ComposeFile, []byte("services: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg)
	if len(results) == 0 {
		t.Fatal("expected results")
	}

	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Name] = r
	}
	if !byName["State directory"].Passed {
		t.Fatalf("state dir should pass: %+v", byName["State directory"])
	}
	if !byName["Compose file"].Passed {
		t.Fatalf("compose file should pass: %+v", byName["Compose file"])
	}
	for _, mount := range cfg.Media.MountPoints {
		if byName["Mount "+mount].Passed {
			t.Fatalf("unprepared mount should fail the check: %+v", byName["Mount "+mount])
		}
	}
}
