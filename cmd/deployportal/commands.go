package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rxtech-lab/deployment-portal/internal/api"
	"github.com/rxtech-lab/deployment-portal/internal/config"
	"github.com/rxtech-lab/deployment-portal/internal/logging"
	"github.com/rxtech-lab/deployment-portal/internal/seed"
	"github.com/rxtech-lab/deployment-portal/internal/server"
	"github.com/rxtech-lab/deployment-portal/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	portFlag     int
	dbDriverFlag string
	dbPathFlag   string
	seedFileFlag string

	rootCmd = &cobra.Command{
		Use:           "deployportal",
		Short:         "Track deployment requests across UAT, PERF and PROD",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the deployment portal API server",
		RunE:  runServe,
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Load users, services and releases from a YAML file",
		RunE:  runSeed,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Deployment Portal\nVersion: %s\nCommit: %s\nBuilt: %s\n", Version, CommitHash, BuildTime)
		},
	}
)

func init() {
	for _, cmd := range []*cobra.Command{serveCmd, seedCmd} {
		cmd.Flags().StringVar(&dbDriverFlag, "db-driver", "", "Database driver (sqlite or postgres), overrides DATABASE_DRIVER")
		cmd.Flags().StringVar(&dbPathFlag, "db-path", "", "SQLite database file, overrides DATABASE_PATH")
	}
	serveCmd.Flags().IntVarP(&portFlag, "port", "p", 0, "Port to listen on, overrides PORT")
	seedCmd.Flags().StringVarP(&seedFileFlag, "file", "f", "seed.yaml", "Seed file to load")

	rootCmd.AddCommand(serveCmd, seedCmd, versionCmd)
}

// loadConfig reads the environment and applies command line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = portFlag
	}
	if cmd.Flags().Changed("db-driver") {
		cfg.DatabaseDriver = dbDriverFlag
	}
	if cmd.Flags().Changed("db-path") {
		cfg.DatabasePath = dbPathFlag
	}
	return cfg, cfg.Validate()
}

func openDatabase(cfg *config.Config, logger *zap.Logger) (store.DBService, error) {
	db, err := store.NewDBService(cfg.DatabaseDriver, cfg.DSN(), store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}
	return db, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	deps := server.InitializeServices(server.InitializeStores(db.GetDB()), cfg.SessionTTL, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	janitorDone := server.StartSessionJanitor(ctx, deps.Auth, cfg.SessionSweepInterval, logger.Named("janitor"))

	apiServer := api.NewAPIServer(deps, api.Options{
		CORSOrigins:  cfg.CORSOrigins,
		CookieSecure: cfg.SessionCookieSecure,
		AccessLog:    true,
	}, logger.Named("api"))

	port := cfg.Port
	startedPort, err := apiServer.Start(&port)
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	logger.Info("API server started",
		zap.Int("port", startedPort),
		zap.String("database", cfg.DatabaseDriver),
		zap.String("version", Version))

	<-ctx.Done()
	logger.Info("shutting down server")

	if err := apiServer.Shutdown(10 * time.Second); err != nil {
		logger.Error("error shutting down API server", zap.Error(err))
	}
	<-janitorDone

	logger.Info("server shut down successfully")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer logger.Sync()

	file, err := seed.Load(seedFileFlag)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	stores := server.InitializeStores(db.GetDB())
	deps := server.InitializeServices(stores, cfg.SessionTTL, logger)
	seeder := seed.NewSeeder(stores.Users, stores.Services, deps.Releases, logger.Named("seed"))

	result, err := seeder.Apply(cmd.Context(), file)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d services, %d releases (skipped %d services, %d releases)\n",
		result.Users, result.Services, result.Releases, result.SkippedServices, result.SkippedReleases)
	return nil
}
