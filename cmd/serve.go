package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/abhisek/gameiq/internal/api"
	"github.com/abhisek/gameiq/internal/catalog"
	"github.com/abhisek/gameiq/internal/config"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		app := fx.New(
			fx.NopLogger,
			services(cfg),
			fx.Provide(
				newEngine,
				api.NewHandler,
			),
			fx.Invoke(importCatalog, startServer),
		)
		if err := app.Start(cmd.Context()); err != nil {
			return err
		}
		<-app.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.Stop(stopCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}

func newEngine(cfg *config.Config, log zerolog.Logger) *gin.Engine {
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	return api.NewEngine(log, cfg.Server.CORSOrigins)
}

// importCatalog loads catalog.dir before the server accepts requests.
func importCatalog(lc fx.Lifecycle, cfg *config.Config, im *catalog.Importer, log zerolog.Logger) {
	if cfg.Catalog.Dir == "" {
		return
	}
	lc.Append(fx.StartHook(func(ctx context.Context) error {
		res, err := im.ImportDir(ctx, cfg.Catalog.Dir)
		if err != nil {
			return err
		}
		log.Info().
			Str("dir", cfg.Catalog.Dir).
			Int("files", res.Files).
			Int("inserted", res.Inserted).
			Int("skipped", res.Skipped).
			Strs("failed", res.Failed).
			Msg("catalog imported")
		return nil
	}))
}

func startServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, h *api.Handler, log zerolog.Logger) {
	h.Register(engine)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return err
			}
			log.Info().Str("addr", ln.Addr().String()).Msg("gameiq API listening")
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("server stopped")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("server shutting down")
			return server.Shutdown(ctx)
		},
	})
}
