// Package scheduler periodically revalidates the remote model lists of
// enabled providers that have a catalog configured.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"llmsettings/internal/modellist"
	"llmsettings/pkg/types"
)

// Revalidator refetches one cache key.
type Revalidator interface {
	Revalidate(ctx context.Context, provider types.ProviderKey, autoFetch bool) modellist.Result
}

// SettingsReader exposes the committed settings tree.
type SettingsReader interface {
	Settings() types.Settings
}

// Config encapsulates all inputs for Scheduler construction.
type Config struct {
	// Spec is a five-field cron expression, e.g. "*/30 * * * *".
	Spec     string
	Cache    Revalidator
	Settings SettingsReader
	// Providers lists the providers with a configured catalog.
	Providers []types.ProviderKey
	// Timeout bounds one refresh run. Zero means no bound.
	Timeout time.Duration
	Logger  *zerolog.Logger
}

// Scheduler runs refreshes on a cron schedule.
type Scheduler struct {
	cfg  Config
	cron gocron.Scheduler
	log  zerolog.Logger
}

// ValidateSpec checks a five-field cron expression.
func ValidateSpec(spec string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// New validates cfg.Spec and registers the refresh job. Call Start to begin.
func New(cfg Config) (*Scheduler, error) {
	if err := ValidateSpec(cfg.Spec); err != nil {
		return nil, err
	}
	if cfg.Cache == nil || cfg.Settings == nil {
		return nil, fmt.Errorf("scheduler: cache and settings are required")
	}
	cs, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	s := &Scheduler{cfg: cfg, cron: cs, log: zerolog.Nop()}
	if cfg.Logger != nil {
		s.log = cfg.Logger.With().Str("component", "scheduler").Logger()
	}
	run := func() {
		ctx := context.Background()
		if cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
		}
		s.RunOnce(ctx)
	}
	if _, err := cs.NewJob(
		gocron.CronJob(cfg.Spec, false),
		gocron.NewTask(run),
		gocron.WithName("revalidate-model-lists"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		_ = cs.Shutdown()
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return s, nil
}

// Timeout reports the bound applied to each scheduled run.
func (s *Scheduler) Timeout() time.Duration { return s.cfg.Timeout }

// Start begins running the schedule.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Str("spec", s.cfg.Spec).Int("providers", len(s.cfg.Providers)).Msg("model list refresh scheduled")
}

// Stop waits for a running refresh and stops the schedule.
func (s *Scheduler) Stop() error { return s.cron.Shutdown() }

// RunOnce revalidates the auto-fetch key of every enabled provider with a
// catalog, one after another, and reports the resulting state per provider.
func (s *Scheduler) RunOnce(ctx context.Context) map[types.ProviderKey]modellist.State {
	tree := s.cfg.Settings.Settings()
	out := make(map[types.ProviderKey]modellist.State)
	for _, p := range s.cfg.Providers {
		if ctx.Err() != nil {
			break
		}
		cfg, ok := tree.LanguageModel[p]
		if !ok || !cfg.Enabled {
			continue
		}
		res := s.cfg.Cache.Revalidate(ctx, p, true)
		out[p] = res.State
		ev := s.log.Debug()
		if res.Err != nil {
			ev = s.log.Warn().Err(res.Err)
		}
		ev.Str("provider", string(p)).Str("state", string(res.State)).Int("models", len(res.Data)).Msg("model list refreshed")
	}
	return out
}
