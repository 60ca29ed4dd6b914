package provision_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"sullivan/internal/journal"
	"sullivan/internal/logging"
	"sullivan/internal/provision"
	"sullivan/internal/services"
	"sullivan/internal/services/tailscale"
	"sullivan/internal/testsupport"
)

type fakeUnits struct {
	registered []string
	removed    []string
	err        error
}

func (f *fakeUnits) RegisterResumeUnit(ctx context.Context, unitName, execStart string) error {
	f.registered = append(f.registered, unitName+" "+execStart)
	return f.err
}

func (f *fakeUnits) RemoveResumeUnit(ctx context.Context, unitName string) error {
	f.removed = append(f.removed, unitName)
	return f.err
}

type fakeMinter struct {
	key string
	err error
}

func (f fakeMinter) MintAuthKey(ctx context.Context) (string, error) { return f.key, f.err }

type fakeEnroller struct {
	keys []string
	err  error
}

func (f *fakeEnroller) Up(ctx context.Context, authKey, hostname string) error {
	f.keys = append(f.keys, authKey)
	return f.err
}

func newCoordinator(t *testing.T, units *fakeUnits, minter provision.AuthKeyMinter, enroller provision.Enroller) (*provision.Coordinator, *journal.Store, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithOAuth("kclient", "ksecret"))

	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	coord, err := provision.NewCoordinator(cfg, store, units, logging.NewNop(),
		provision.WithMinterFactory(func(tailscale.Config) (provision.AuthKeyMinter, error) {
			return minter, nil
		}),
		provision.WithEnroller(enroller),
		provision.WithExecutable("/usr/local/bin/sullivan"),
	)
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	return coord, store, cfg.ResumeTokenPath()
}

func step(name string, err error) provision.Step {
	return provision.Step{Name: name, Run: func(ctx context.Context) error { return err }}
}

func TestRunStage1HaltsOnFatalStep(t *testing.T) {
	coord, _, _ := newCoordinator(t, &fakeUnits{}, fakeMinter{}, &fakeEnroller{})

	var ranThird bool
	plan := provision.Plan{Stage: 1, Steps: []provision.Step{
		step("update-os", nil),
		step("install-docker", errors.New("exit status 100")),
		{Name: "install-tailscale", Run: func(ctx context.Context) error {
			ranThird = true
			return nil
		}},
	}}

	result, err := coord.RunStage1(context.Background(), plan)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrProvisioning) {
		t.Fatalf("expected provisioning marker, got %v", err)
	}
	if result.FailedStep != "install-docker" {
		t.Fatalf("unexpected failed step: %q", result.FailedStep)
	}
	if ranThird {
		t.Fatal("steps after a fatal failure must not run")
	}
}

func TestRunStage1SkipsCompletedStepsOnRerun(t *testing.T) {
	coord, _, _ := newCoordinator(t, &fakeUnits{}, fakeMinter{}, &fakeEnroller{})

	runs := map[string]int{}
	counted := func(name string, err error) provision.Step {
		return provision.Step{Name: name, Run: func(ctx context.Context) error {
			runs[name]++
			return err
		}}
	}

	plan := provision.Plan{Stage: 1, Steps: []provision.Step{
		counted("update-os", nil),
		counted("install-docker", errors.New("network down")),
	}}
	if _, err := coord.RunStage1(context.Background(), plan); err == nil {
		t.Fatal("expected first run to fail")
	}

	plan = provision.Plan{Stage: 1, Steps: []provision.Step{
		counted("update-os", nil),
		counted("install-docker", nil),
	}}
	result, err := coord.RunStage1(context.Background(), plan)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if !result.OK() {
		t.Fatalf("expected success, got %+v", result)
	}

	if runs["update-os"] != 1 {
		t.Fatalf("completed step re-executed: ran %d times", runs["update-os"])
	}
	if runs["install-docker"] != 2 {
		t.Fatalf("failed step should re-run: ran %d times", runs["install-docker"])
	}
	if result.Steps[0].Outcome != provision.OutcomeSkipped {
		t.Fatalf("expected skip outcome, got %q", result.Steps[0].Outcome)
	}
}

func TestRunStage1BestEffortContinues(t *testing.T) {
	coord, _, _ := newCoordinator(t, &fakeUnits{}, fakeMinter{}, &fakeEnroller{})

	plan := provision.Plan{Stage: 1, Steps: []provision.Step{
		{Name: "remove-legacy-docker", BestEffort: true, Run: func(ctx context.Context) error {
			return errors.New("package not installed")
		}},
		step("install-docker", nil),
	}}

	result, err := coord.RunStage1(context.Background(), plan)
	if err != nil {
		t.Fatalf("best-effort failure should not abort: %v", err)
	}
	if result.Steps[0].Outcome != provision.OutcomeWarned {
		t.Fatalf("expected warned outcome, got %q", result.Steps[0].Outcome)
	}
	if result.Steps[1].Outcome != provision.OutcomeCompleted {
		t.Fatalf("expected completed outcome, got %q", result.Steps[1].Outcome)
	}
}

func TestScheduleResumePersistsTokenAndUnit(t *testing.T) {
	units := &fakeUnits{}
	coord, _, tokenPath := newCoordinator(t, units, fakeMinter{}, &fakeEnroller{})

	if err := coord.ScheduleResume(context.Background()); err != nil {
		t.Fatalf("ScheduleResume returned error: %v", err)
	}

	token, err := provision.LoadResumeToken(tokenPath)
	if err != nil {
		t.Fatalf("token should exist: %v", err)
	}
	if token.OAuthClientID != "kclient" || token.OAuthClientSecret != "ksecret" {
		t.Fatalf("token missing credentials: %+v", token)
	}

	info, err := os.Stat(tokenPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("token must be owner-only, got %v", info.Mode().Perm())
	}

	if len(units.registered) != 1 || !strings.Contains(units.registered[0], "provision --stage2") {
		t.Fatalf("unexpected unit registration: %v", units.registered)
	}
}

func TestRunStage2CleansUpOnSuccess(t *testing.T) {
	units := &fakeUnits{}
	enroller := &fakeEnroller{}
	coord, _, tokenPath := newCoordinator(t, units, fakeMinter{key: "tskey-auth-abc"}, enroller)

	if err := coord.ScheduleResume(context.Background()); err != nil {
		t.Fatal(err)
	}

	result, err := coord.RunStage2(context.Background())
	if err != nil {
		t.Fatalf("RunStage2 returned error: %v", err)
	}
	if !result.OK() {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(enroller.keys) != 1 || enroller.keys[0] != "tskey-auth-abc" {
		t.Fatalf("enroller received wrong key: %v", enroller.keys)
	}
	if provision.ResumeTokenExists(tokenPath) {
		t.Fatal("resume token must be deleted after a successful stage two")
	}
	if len(units.removed) != 1 {
		t.Fatalf("one-shot unit must be removed: %v", units.removed)
	}
}

func TestRunStage2ExchangeFailurePreservesToken(t *testing.T) {
	units := &fakeUnits{}
	exchangeErr := services.Wrap(services.ErrCredentialExchange, "tailscale", "mint-key",
		`status 401: {"message":"invalid key"}`, nil)
	coord, _, tokenPath := newCoordinator(t, units, fakeMinter{err: exchangeErr}, &fakeEnroller{})

	if err := coord.ScheduleResume(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, err := coord.RunStage2(context.Background())
	if !errors.Is(err, services.ErrCredentialExchange) {
		t.Fatalf("expected credential exchange marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid key") {
		t.Fatalf("raw body not surfaced: %v", err)
	}
	if !provision.ResumeTokenExists(tokenPath) {
		t.Fatal("resume token must survive a failed exchange")
	}
	if len(units.removed) != 0 {
		t.Fatal("unit must not be removed after a failed stage two")
	}
}

func TestRunStage2WithoutTokenFails(t *testing.T) {
	coord, _, _ := newCoordinator(t, &fakeUnits{}, fakeMinter{key: "k"}, &fakeEnroller{})

	_, err := coord.RunStage2(context.Background())
	if err == nil {
		t.Fatal("expected error without a resume token")
	}
	if !strings.Contains(err.Error(), "resume token") {
		t.Fatalf("unexpected error: %v", err)
	}
}
