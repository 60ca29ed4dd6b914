package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRequirementsCarryComposeBinary(t *testing.T) {
	reqs := Requirements("podman")
	if reqs[0].Name != "Docker" || reqs[0].Command != "podman" {
		t.Fatalf("configured runtime not carried: %+v", reqs[0])
	}

	reqs = Requirements("")
	if reqs[0].Command != "docker" {
		t.Fatalf("empty runtime must fall back to docker, got %q", reqs[0].Command)
	}

	var aptGet *Requirement
	for i := range reqs {
		if reqs[i].Command == "apt-get" {
			aptGet = &reqs[i]
		}
	}
	if aptGet == nil || !aptGet.Optional {
		t.Fatalf("apt-get must be declared optional: %+v", reqs)
	}
}

func TestCheckReportsAvailability(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	results := Check([]Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatal("expected detail message for missing binary")
	}
}

func TestCheckEmptyCommand(t *testing.T) {
	results := Check([]Requirement{{Name: "Unset"}})
	if results[0].Available {
		t.Fatal("unset command must not be available")
	}
	if results[0].Detail != "command not configured" {
		t.Fatalf("unexpected detail: %s", results[0].Detail)
	}
}
