// The apiserver binary runs only the JSON API, configured from a file or
// CGI_* environment variables.  Deployments that want the full CLI use
// cmd/companygraph instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/application/bootstrap"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/config"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/CompanyGraph-Intelligence/internal/interfaces/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %s\n", err.Error())
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file path (default: CGI_* environment variables)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
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
		Mode:           cfg.Server.Mode,
	})
	server := httpapi.NewServer(cfg.Server, router, app.Logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Stop(shutdownCtx)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

func readyChecks(checks map[string]func(ctx context.Context) error) map[string]httpapi.ReadyCheck {
	out := make(map[string]httpapi.ReadyCheck, len(checks))
	for name, check := range checks {
		out[name] = check
	}
	return out
}
