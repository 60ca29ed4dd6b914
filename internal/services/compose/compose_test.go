package compose

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sullivan/internal/services"
)

type fakeExecutor struct {
	calls  [][]string
	stdout []string
	err    error
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	call := append([]string{binary}, args...)
	f.calls = append(f.calls, call)
	if onStdout != nil {
		for _, line := range f.stdout {
			onStdout(line)
		}
	}
	return f.err
}

func newTestClient(t *testing.T, exec *fakeExecutor) *Client {
	t.Helper()
	client, err := New("docker", "/srv/sullivan/docker-compose.yml", "/srv/sullivan/.env", WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestUpScopesSelection(t *testing.T) {
	exec := &fakeExecutor{}
	client := newTestClient(t, exec)

	if err := client.Up(context.Background(), []string{"qbittorrent", "sonarr"}); err != nil {
		t.Fatalf("Up returned error: %v", err)
	}

	got := strings.Join(exec.calls[0], " ")
	want := "docker compose -f /srv/sullivan/docker-compose.yml --env-file /srv/sullivan/.env up -d qbittorrent sonarr"
	if got != want {
		t.Fatalf("unexpected command:\n got %q\nwant %q", got, want)
	}
}

func TestPullFailureIsDegraded(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("network unreachable")}
	client := newTestClient(t, exec)

	err := client.Pull(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrDegraded) {
		t.Fatalf("expected degraded marker, got %v", err)
	}
	if !strings.Contains(strings.Join(exec.calls[0], " "), "--ignore-pull-failures") {
		t.Fatalf("pull should ignore per-image failures: %v", exec.calls[0])
	}
}

func TestDownRemoveOrphans(t *testing.T) {
	exec := &fakeExecutor{}
	client := newTestClient(t, exec)

	if err := client.Down(context.Background(), nil, true); err != nil {
		t.Fatalf("Down returned error: %v", err)
	}
	if !strings.Contains(strings.Join(exec.calls[0], " "), "down --remove-orphans") {
		t.Fatalf("unexpected command: %v", exec.calls[0])
	}
}

func TestPSParsesJSONLines(t *testing.T) {
	exec := &fakeExecutor{stdout: []string{
		`{"Name":"sullivan-sonarr-1","Service":"sonarr","State":"running","Health":"healthy"}`,
		``,
		`{"Name":"sullivan-plex-1","Service":"plex","State":"exited","Health":""}`,
	}}
	client := newTestClient(t, exec)

	statuses, err := client.PS(context.Background(), nil)
	if err != nil {
		t.Fatalf("PS returned error: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Service != "sonarr" || statuses[0].State != "running" {
		t.Fatalf("unexpected first status: %+v", statuses[0])
	}
}

func TestPSRejectsMalformedOutput(t *testing.T) {
	exec := &fakeExecutor{stdout: []string{"not json"}}
	client := newTestClient(t, exec)

	if _, err := client.PS(context.Background(), nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLogsFollowDetachesOnCancel(t *testing.T) {
	exec := &fakeExecutor{err: context.Canceled}
	client := newTestClient(t, exec)

	if err := client.Logs(context.Background(), []string{"plex"}, true, nil); err != nil {
		t.Fatalf("follow cancellation should detach cleanly, got %v", err)
	}
}
