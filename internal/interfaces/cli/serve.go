package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpapi "github.com/turtacn/CompanyGraph-Intelligence/internal/interfaces/http"
)

func newServeCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			handlers := &httpapi.Handlers{
				Resolver:    app.Resolver,
				Registry:    app.Companies,
				Decider:     app.Decider,
				Extractor:   app.Extraction,
				Cleaner:     app.Cleanup,
				Logger:      app.Logger,
				ReadyChecks: readyChecks(app.ReadyChecks()),
			}
			if app.Embedder != nil && app.Descriptions != nil {
				handlers.Embedder = app.Embedder
				handlers.Searcher = app.Descriptions
			}

			router := httpapi.NewRouter(httpapi.RouterConfig{
				Handlers:       handlers,
				Metrics:        app.Metrics,
				MetricsHandler: app.Collector.Handler(),
				Logger:         app.Logger,
				Mode:           app.Config.Server.Mode,
			})
			server := httpapi.NewServer(app.Config.Server, router, app.Logger)

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
			defer cancel()
			return server.Stop(shutdownCtx)
		},
	}
	return cmd
}

func readyChecks(checks map[string]func(ctx context.Context) error) map[string]httpapi.ReadyCheck {
	out := make(map[string]httpapi.ReadyCheck, len(checks))
	for name, check := range checks {
		out[name] = check
	}
	return out
}
