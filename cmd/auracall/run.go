package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"sophonine/auracall/pkg/adaptation"
	"sophonine/auracall/pkg/config"
	"sophonine/auracall/pkg/conversation"
	"sophonine/auracall/pkg/feedback"
	"sophonine/auracall/pkg/orchestrator"
	"sophonine/auracall/pkg/providers"
	"sophonine/auracall/pkg/providers/openai"
	"sophonine/auracall/pkg/retrieval"
	"sophonine/auracall/pkg/routing"
	"sophonine/auracall/pkg/server"
	"sophonine/auracall/pkg/telemetry/logging"
	"sophonine/auracall/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Auracall server",
	Long: `Start the Auracall server with the specified configuration.

The server accepts chat requests over HTTP, streams backend tokens to
clients as server-sent events, and maintains per-session conversation and
prompt adaptation state.

Examples:
  # Start with default config
  auracall run

  # Start with custom config
  auracall run --config /etc/auracall/config.yaml

  # Override listen address
  auracall run --listen 0.0.0.0:8080

  # Validate config without starting server
  auracall run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	if _, err := logging.Setup(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	}); err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	collector := metrics.NewCollector(&metrics.Config{
		Enabled: cfg.Telemetry.Metrics.Enabled,
	})

	// Backends
	primary, err := openai.NewProvider(backendConfig(cfg.Backends.Primary))
	if err != nil {
		return fmt.Errorf("failed to create primary backend: %w", err)
	}
	secondary, err := openai.NewProvider(backendConfig(cfg.Backends.Secondary))
	if err != nil {
		primary.Close()
		return fmt.Errorf("failed to create secondary backend: %w", err)
	}

	router := routing.NewRouter(primary, secondary)
	defer router.Close()
	router.OnFailover(collector.RecordFailover)
	collector.SetActiveBackend(router.ActiveName())
	fmt.Printf("✓ Backends initialized (%s, %s)\n", cfg.Backends.Primary.Name, cfg.Backends.Secondary.Name)

	// Conversation store and sweeper
	store := conversation.NewStore()
	collector.RegisterSessionSource(store.Len)
	sweeper := conversation.NewSweeper(store, conversation.SweeperConfig{
		Schedule:  cfg.Conversation.SweepSchedule,
		ClosedTTL: cfg.Conversation.ClosedTTL,
		IdleTTL:   cfg.Conversation.IdleTTL,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session sweeper: %w", err)
	}
	defer sweeper.Stop()

	// Prompt adaptation
	templates, err := adaptation.NewTemplateSource(cfg.Adaptation.TemplatePath)
	if err != nil {
		return fmt.Errorf("failed to load prompt template: %w", err)
	}
	defer templates.Close()

	engine := adaptation.NewEngine(templates, router, adaptation.Config{
		MinCommentLength: cfg.Adaptation.MinCommentLength,
		HistoryCap:       cfg.Adaptation.HistoryCap,
		Rules: adaptation.ValidationRules{
			MinLength:       cfg.Adaptation.MinPromptLength,
			MaxLength:       cfg.Adaptation.MaxPromptLength,
			RequiredMarkers: cfg.Adaptation.RequiredMarkers,
		},
	})
	engine.OnAdaptation(func(kind adaptation.Category, outcome string) {
		collector.RecordAdaptation(string(kind), outcome)
	})

	// Knowledge retrieval
	var knowledge *retrieval.Client
	if cfg.Retrieval.Enabled {
		knowledge = retrieval.NewClient(retrieval.Config{
			Enabled: true,
			BaseURL: cfg.Retrieval.BaseURL,
			APIKey:  cfg.Retrieval.APIKey,
			Timeout: cfg.Retrieval.Timeout,
		})
		fmt.Println("✓ Knowledge retrieval enabled")
	}

	// Feedback audit trail
	var audit *feedback.Store
	if cfg.Feedback.Enabled {
		auditCfg := feedback.DefaultConfig()
		auditCfg.Path = cfg.Feedback.Path
		audit, err = feedback.NewStore(auditCfg)
		if err != nil {
			return fmt.Errorf("failed to open feedback store: %w", err)
		}
		defer audit.Close()
		fmt.Println("✓ Feedback audit store initialized")
	}

	orch := orchestrator.New(store, engine, router, knowledge, orchestrator.Config{
		LastNRounds: cfg.Conversation.LastNRounds,
	})

	srv := server.NewServer(&cfg.Server, &cfg.Telemetry.Metrics, server.Deps{
		Orchestrator: orch,
		Store:        store,
		Engine:       engine,
		Router:       router,
		Audit:        audit,
		Metrics:      collector,
	})

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	slog.Info("auracall starting",
		"address", cfg.Server.ListenAddress,
		"primary", cfg.Backends.Primary.Name,
		"secondary", cfg.Backends.Secondary.Name,
	)

	return srv.Start(ctx)
}

// backendConfig converts a config backend section to the provider config.
func backendConfig(cfg config.BackendConfig) providers.Config {
	return providers.Config{
		Name:    cfg.Name,
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}
}
