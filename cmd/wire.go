package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/abhisek/gameiq/internal/catalog"
	"github.com/abhisek/gameiq/internal/coach"
	"github.com/abhisek/gameiq/internal/config"
	"github.com/abhisek/gameiq/internal/ledger"
	"github.com/abhisek/gameiq/internal/llm"
	"github.com/abhisek/gameiq/internal/logging"
	"github.com/abhisek/gameiq/internal/questiongen"
	"github.com/abhisek/gameiq/internal/quiz"
	"github.com/abhisek/gameiq/internal/store"
)

// services wires everything a command may need. Unused constructors are
// never called.
func services(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(
			newLogger,
			newStore,
			newLocker,
			newLedger,
			newProvider,
			catalog.New,
			newImporter,
			newManager,
			newScorer,
			newCoach,
		),
	)
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.Log, os.Stderr)
}

func newStore(lc fx.Lifecycle, cfg *config.Config) (*store.Store, error) {
	dbCfg, err := cfg.ResolveDB()
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}
	s, err := store.Open(context.Background(), dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	lc.Append(fx.StopHook(s.Close))
	return s, nil
}

// newLocker shares the per-user ledger lock through Redis when configured,
// so several server processes can meter the same users.
func newLocker(lc fx.Lifecycle, cfg *config.Config, log zerolog.Logger) ledger.Locker {
	if cfg.Redis.Addr == "" {
		return ledger.NewLocalLocker()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
			}
			log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis ledger lock")
			return nil
		},
		OnStop: func(context.Context) error { return client.Close() },
	})
	return ledger.NewRedisLocker(client, cfg.Redis.LockTTL)
}

func newLedger(s *store.Store, lk ledger.Locker, log zerolog.Logger) *ledger.Ledger {
	return ledger.New(s, log, ledger.WithLocker(lk))
}

// newProvider returns nil when AI is disabled.
func newProvider(cfg *config.Config, l *ledger.Ledger, log zerolog.Logger) (llm.Provider, error) {
	p, err := llm.NewProvider(context.Background(), cfg.AI, l)
	if err != nil {
		return nil, err
	}
	if p == nil {
		log.Info().Msg("AI provider not configured; AI features are unavailable")
		return nil, nil
	}
	log.Info().Str("provider", p.Name()).Str("model", p.ModelID()).Msg("AI provider ready")
	return p, nil
}

func newImporter(s *store.Store, log zerolog.Logger) *catalog.Importer {
	return catalog.NewImporter(s, log)
}

func newManager(s *store.Store, cat *catalog.Catalog, p llm.Provider, cfg *config.Config, log zerolog.Logger) *quiz.Manager {
	opts := []quiz.Option{quiz.WithGeneratedSize(cfg.Quiz.GeneratedSize)}
	if p != nil {
		opts = append(opts, quiz.WithGenerator(questiongen.New(p, questiongen.DefaultConfig(), log)))
	}
	return quiz.NewManager(s, cat, log, opts...)
}

func newScorer(s *store.Store, cat *catalog.Catalog, log zerolog.Logger) *quiz.Scorer {
	return quiz.NewScorer(s, cat, log)
}

func newCoach(p llm.Provider, log zerolog.Logger) *coach.Coach {
	return coach.New(p, log)
}

// withServices starts the wiring for a one-shot command, fills targets
// (pointers to the services it needs) and calls fn.
func withServices(cmd *cobra.Command, fn func(ctx context.Context) error, targets ...any) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	app := fx.New(
		fx.NopLogger,
		services(cfg),
		fx.Populate(targets...),
	)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := app.Stop(context.Background()); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "shutdown:", err)
		}
	}()
	return fn(ctx)
}
