package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"sullivan/internal/config"
	"sullivan/internal/journal"
	"sullivan/internal/logging"
	"sullivan/internal/services"
	"sullivan/internal/services/tailscale"
)

// UnitManager is the init-system collaborator used to schedule stage two.
type UnitManager interface {
	RegisterResumeUnit(ctx context.Context, unitName, execStart string) error
	RemoveResumeUnit(ctx context.Context, unitName string) error
}

// AuthKeyMinter mints a single-use enrollment key from the VPN control plane.
type AuthKeyMinter interface {
	MintAuthKey(ctx context.Context) (string, error)
}

// Enroller applies an enrollment key to the local VPN daemon.
type Enroller interface {
	Up(ctx context.Context, authKey, hostname string) error
}

// Option configures the coordinator.
type Option func(*Coordinator)

// WithMinterFactory overrides control-plane client construction (tests).
func WithMinterFactory(factory func(tailscale.Config) (AuthKeyMinter, error)) Option {
	return func(c *Coordinator) {
		if factory != nil {
			c.newMinter = factory
		}
	}
}

// WithEnroller overrides the local enrollment collaborator (tests).
func WithEnroller(enroller Enroller) Option {
	return func(c *Coordinator) {
		if enroller != nil {
			c.enroller = enroller
		}
	}
}

// WithExecutable overrides the binary path written into the resume unit.
func WithExecutable(path string) Option {
	return func(c *Coordinator) {
		if strings.TrimSpace(path) != "" {
			c.executable = path
		}
	}
}

// Coordinator sequences provisioning into two stages split by a mandatory
// reboot, journaling progress so re-runs skip completed steps.
type Coordinator struct {
	cfg        *config.Config
	store      *journal.Store
	units      UnitManager
	logger     *slog.Logger
	newMinter  func(tailscale.Config) (AuthKeyMinter, error)
	enroller   Enroller
	executable string
}

// NewCoordinator constructs a coordinator.
func NewCoordinator(cfg *config.Config, store *journal.Store, units UnitManager, logger *slog.Logger, opts ...Option) (*Coordinator, error) {
	if cfg == nil || store == nil || units == nil {
		return nil, errors.New("coordinator requires config, journal store, and unit manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	executable, err := os.Executable()
	if err != nil {
		executable = "sullivan"
	}

	coord := &Coordinator{
		cfg:    cfg,
		store:  store,
		units:  units,
		logger: logging.WithComponent(logger, "provision"),
		newMinter: func(tsCfg tailscale.Config) (AuthKeyMinter, error) {
			return tailscale.New(tsCfg)
		},
		enroller:   tailscale.NewEnroller(),
		executable: executable,
	}
	for _, opt := range opts {
		opt(coord)
	}
	return coord, nil
}

// RunStage1 executes the plan in declared order. A fatal step failure halts
// the plan immediately; there is no rollback because the steps are
// irreversible OS-level mutations. Steps journaled as completed by a previous
// run are skipped.
func (c *Coordinator) RunStage1(ctx context.Context, plan Plan) (StageResult, error) {
	result := StageResult{Stage: plan.Stage}

	completed, err := c.store.Completed(ctx, plan.Stage)
	if err != nil {
		return result, fmt.Errorf("load journal: %w", err)
	}

	stepTimeout := time.Duration(c.cfg.Provision.StepTimeout) * time.Second

	for _, step := range plan.Steps {
		if completed[step.Name] {
			c.logger.Info("step already completed, skipping", logging.String("step", step.Name))
			result.Steps = append(result.Steps, StepResult{Name: step.Name, Outcome: OutcomeSkipped})
			continue
		}

		if err := c.store.Begin(ctx, plan.Stage, step.Name); err != nil {
			return result, err
		}
		c.logger.Info("step started", logging.String("step", step.Name))

		stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
		runErr := step.Run(stepCtx)
		cancel()

		switch {
		case runErr == nil:
			if err := c.store.Finish(ctx, plan.Stage, step.Name, journal.StatusCompleted, ""); err != nil {
				return result, err
			}
			c.logger.Info("step completed", logging.String("step", step.Name))
			result.Steps = append(result.Steps, StepResult{Name: step.Name, Outcome: OutcomeCompleted})

		case step.BestEffort || errors.Is(runErr, services.ErrDegraded):
			if err := c.store.Finish(ctx, plan.Stage, step.Name, journal.StatusFailed, runErr.Error()); err != nil {
				return result, err
			}
			c.logger.Warn("best-effort step failed, continuing",
				logging.String("step", step.Name), logging.Error(runErr))
			result.Steps = append(result.Steps, StepResult{Name: step.Name, Outcome: OutcomeWarned, Err: runErr})

		default:
			if err := c.store.Finish(ctx, plan.Stage, step.Name, journal.StatusFailed, runErr.Error()); err != nil {
				c.logger.Error("failed to journal step failure", logging.Error(err))
			}
			c.logger.Error("step failed, halting plan",
				logging.String("step", step.Name), logging.Error(runErr))
			result.Steps = append(result.Steps, StepResult{Name: step.Name, Outcome: OutcomeFailed, Err: runErr})
			result.FailedStep = step.Name
			return result, services.Wrap(services.ErrProvisioning, "provision", step.Name, "step failed", runErr)
		}
	}

	return result, nil
}

// ScheduleResume persists the resume token and registers the one-shot boot
// unit so stage two runs automatically after the reboot.
func (c *Coordinator) ScheduleResume(ctx context.Context) error {
	if strings.TrimSpace(c.cfg.Tailscale.OAuthClientID) == "" {
		return services.Wrap(services.ErrConfiguration, "provision", "schedule-resume",
			"tailscale oauth credentials are not configured; stage two cannot enroll", nil)
	}

	hostname, _ := os.Hostname()
	token := NewResumeToken()
	token.RemainingSteps = []string{"tailscale-enroll"}
	token.OAuthClientID = c.cfg.Tailscale.OAuthClientID
	token.OAuthClientSecret = c.cfg.Tailscale.OAuthClientSecret
	token.Tailnet = c.cfg.Tailscale.Tailnet
	token.Tags = c.cfg.Tailscale.Tags
	token.KeyExpirySeconds = c.cfg.Tailscale.KeyExpirySeconds
	token.Hostname = hostname

	tokenPath := c.cfg.ResumeTokenPath()
	if err := SaveResumeToken(tokenPath, token); err != nil {
		return services.Wrap(services.ErrProvisioning, "provision", "schedule-resume", "", err)
	}

	execStart := c.executable + " provision --stage2"
	if err := c.units.RegisterResumeUnit(ctx, c.cfg.Provision.ResumeUnit, execStart); err != nil {
		return err
	}

	c.logger.Info("stage two scheduled",
		logging.String("token", tokenPath),
		logging.String("unit", c.cfg.Provision.ResumeUnit))
	return nil
}

// RunStage2 consumes the resume token: it exchanges the OAuth credentials for
// a single-use enrollment key, applies it, and then removes both the token
// and the one-shot unit. Any exchange failure leaves the token in place so
// the operator can re-run stage two.
func (c *Coordinator) RunStage2(ctx context.Context) (StageResult, error) {
	result := StageResult{Stage: 2}

	tokenPath := c.cfg.ResumeTokenPath()
	token, err := LoadResumeToken(tokenPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return result, services.Wrap(services.ErrProvisioning, "provision", "stage2",
				"no resume token found; run stage one first", nil)
		}
		return result, services.Wrap(services.ErrProvisioning, "provision", "stage2", "", err)
	}

	minter, err := c.newMinter(tailscale.Config{
		BaseURL:          c.cfg.Tailscale.APIBaseURL,
		Tailnet:          token.Tailnet,
		ClientID:         token.OAuthClientID,
		ClientSecret:     token.OAuthClientSecret,
		KeyExpirySeconds: token.KeyExpirySeconds,
		Tags:             token.Tags,
	})
	if err != nil {
		return result, services.Wrap(services.ErrCredentialExchange, "provision", "stage2", "", err)
	}

	authKey, err := minter.MintAuthKey(ctx)
	if err != nil {
		result.FailedStep = "mint-auth-key"
		result.Steps = append(result.Steps, StepResult{Name: "mint-auth-key", Outcome: OutcomeFailed, Err: err})
		return result, err
	}
	result.Steps = append(result.Steps, StepResult{Name: "mint-auth-key", Outcome: OutcomeCompleted})

	if err := c.enroller.Up(ctx, authKey, token.Hostname); err != nil {
		result.FailedStep = "tailscale-enroll"
		result.Steps = append(result.Steps, StepResult{Name: "tailscale-enroll", Outcome: OutcomeFailed, Err: err})
		return result, err
	}
	result.Steps = append(result.Steps, StepResult{Name: "tailscale-enroll", Outcome: OutcomeCompleted})

	// Cleanup half of the secret-hygiene invariant: nothing that carries
	// credentials survives a successful stage two.
	if err := DeleteResumeToken(tokenPath); err != nil {
		return result, services.Wrap(services.ErrProvisioning, "provision", "stage2-cleanup", "", err)
	}
	if err := c.units.RemoveResumeUnit(ctx, c.cfg.Provision.ResumeUnit); err != nil {
		return result, err
	}
	result.Steps = append(result.Steps, StepResult{Name: "cleanup", Outcome: OutcomeCompleted})

	c.logger.Info("stage two completed, enrollment secrets removed")
	return result, nil
}
