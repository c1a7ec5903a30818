package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amoylab/catalog/internal/apiserver"
	"github.com/amoylab/catalog/internal/apiserver/database"
	"github.com/amoylab/catalog/internal/auth"
	"github.com/amoylab/catalog/internal/auth/jwt"
	"github.com/amoylab/catalog/internal/auth/storage"
	"github.com/amoylab/catalog/internal/authz"
	"github.com/amoylab/catalog/internal/catalog"
	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/common/config"
	"github.com/amoylab/catalog/internal/i18n"
	"github.com/amoylab/catalog/pkg/helper"
	"github.com/amoylab/catalog/pkg/logger"
	"github.com/amoylab/catalog/pkg/metrics"
	"github.com/amoylab/catalog/pkg/trace"
	"github.com/amoylab/catalog/pkg/version"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	seedDemo   bool

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of " + cnst.CommandName,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", cnst.CommandName, version.Get())
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the catalog API server",
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Create the default roles and, with --demo, a demo business",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(cmd.Context(), seedDemo)
		},
	}

	rootCmd = &cobra.Command{
		Use:   cnst.CommandName,
		Short: "Multi-tenant product catalog API server",
		Long:  `apiserver serves the product catalog: tenants, users, products and their approval`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "conf", "c", cnst.ApiServerYaml, "path to configuration file, like /etc/catalog/apiserver.yaml")
	seedCmd.Flags().BoolVar(&seedDemo, "demo", false, "also create a demo business with one user per role")
	rootCmd.AddCommand(versionCmd, serveCmd, seedCmd)
}

func loadConfig() (*config.APIServerConfig, error) {
	cfg, cfgPath, err := config.LoadConfig[config.APIServerConfig](configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", cfgPath, err)
	}
	if err := cfg.Validate(cfgPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initLogger(cfg *config.APIServerConfig) *zap.Logger {
	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	return lg
}

func initDatabase(lg *zap.Logger, cfg *config.DatabaseConfig) database.Database {
	db, err := database.NewDatabase(cfg)
	if err != nil {
		lg.Fatal("failed to initialize database", zap.String("type", cfg.Type), zap.Error(err))
	}
	return db
}

func initPolicy(lg *zap.Logger, cfg *config.PolicyConfig) *authz.Policy {
	if len(cfg.Roles) == 0 {
		return authz.DefaultPolicy()
	}
	policy, err := authz.NewPolicy(cfg.Roles)
	if err != nil {
		lg.Fatal("invalid policy.roles", zap.Error(err))
	}
	return policy
}

func initTokens(lg *zap.Logger, cfg *config.APIServerConfig) (*auth.Tokens, storage.Store) {
	store, err := storage.NewStore(lg, &cfg.TokenStore)
	if err != nil {
		lg.Fatal("failed to initialize token store", zap.Error(err))
	}
	jwtService, err := jwt.NewService(jwt.Config{SecretKey: cfg.JWT.SecretKey, Duration: cfg.JWT.Duration})
	if err != nil {
		lg.Fatal("failed to initialize jwt service", zap.Error(err))
	}
	return auth.NewTokens(lg, jwtService, store, cfg.JWT.RefreshDuration), store
}

func run() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	lg := initLogger(cfg)
	defer lg.Sync()
	lg.Info("Starting apiserver", zap.String("version", version.Get()))

	i18n.SetDefaultLanguage(cfg.I18n.DefaultLang)
	if err := i18n.InitTranslator(cfg.I18n.Path); err != nil {
		lg.Fatal("failed to load translations", zap.String("path", cfg.I18n.Path), zap.Error(err))
	}

	shutdownTracing, err := trace.InitTracing(ctx, &cfg.Tracing, lg)
	if err != nil {
		lg.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	db := initDatabase(lg, &cfg.Database)
	defer db.Close()

	policy := initPolicy(lg, &cfg.Policy)
	if cfg.Bootstrap.SeedRoles {
		if err := database.InitDefaultRoles(ctx, db, policy); err != nil {
			lg.Fatal("failed to seed roles", zap.Error(err))
		}
	}

	tokens, store := initTokens(lg, cfg)
	if closer, ok := store.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	opts := []catalog.Option{}
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics)
		opts = append(opts, catalog.WithObserver(m))
	}
	svc := catalog.NewService(db, policy, lg, opts...)

	gin.SetMode(gin.ReleaseMode)
	router := apiserver.NewRouter(apiserver.Options{
		Logger:      lg,
		Service:     svc,
		Tokens:      tokens,
		Metrics:     m,
		MetricsPath: cfg.Metrics.Path,
		Tracing:     cfg.Tracing.Enabled,
	})

	pidFile := helper.GetPIDPath(cfg.PID)
	if err := helper.WritePID(pidFile); err != nil {
		lg.Warn("failed to write PID file", zap.String("path", pidFile), zap.Error(err))
	} else {
		defer helper.RemovePID(pidFile)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		lg.Info("Server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("server forced to shutdown", zap.Error(err))
	}
	lg.Info("Server exited")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
