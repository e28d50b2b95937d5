// Package main provides the entry point for the fixture analysis service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/pitchside/internal/analysis"
	"github.com/yourusername/pitchside/internal/config"
	"github.com/yourusername/pitchside/internal/database"
	"github.com/yourusername/pitchside/internal/health"
	applogger "github.com/yourusername/pitchside/internal/logger"
	"github.com/yourusername/pitchside/internal/metrics"
	"github.com/yourusername/pitchside/internal/quota"
	"github.com/yourusername/pitchside/internal/repository"
	"github.com/yourusername/pitchside/internal/scheduler"
	"github.com/yourusername/pitchside/internal/service"
	"github.com/yourusername/pitchside/internal/sportsdata"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	userFlag   string
	proofFlag  string
	dateFlag   string
	leagueFlag string

	cfg        *config.Config
	appLogger  *logrus.Logger
	caches     *service.Caches
	aggregator *service.Aggregator
	generator  *analysis.Generator
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	analyzeCmd.Flags().StringVarP(&userFlag, "user", "u", "", "User UUID (required)")
	grantPremiumCmd.Flags().StringVarP(&userFlag, "user", "u", "", "User UUID (required)")
	grantPremiumCmd.Flags().StringVarP(&proofFlag, "proof", "p", "", "Payment proof reference (required)")
	fixturesCmd.Flags().StringVarP(&dateFlag, "date", "d", "", "Date in YYYY-MM-DD form (defaults to today)")
	fixturesCmd.Flags().StringVarP(&leagueFlag, "league", "l", "", "League filter")
}

var rootCmd = &cobra.Command{
	Use:   "analyst",
	Short: "Fixture betting analysis pipeline",
	Long:  `Aggregates fixture data, rates market value and generates betting analyses.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		setupPipeline()
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the long-lived service with health, metrics, prefetch and odds stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [fixture-id] [fixture-id]",
	Short: "Run the analysis pipeline for one or two fixtures",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd.Context(), args)
	},
}

var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "List fixtures for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFixtures(cmd.Context())
	},
}

var prefetchCmd = &cobra.Command{
	Use:   "prefetch",
	Short: "Warm the fixture caches for today's slate",
	RunE: func(cmd *cobra.Command, args []string) error {
		scheduler.NewScheduler(aggregator, appLogger).RunPrefetch(cmd.Context())
		return nil
	},
}

var grantPremiumCmd = &cobra.Command{
	Use:   "grant-premium",
	Short: "Grant a user premium standing",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGrantPremium(cmd.Context())
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, analyzeCmd, fixturesCmd, prefetchCmd, grantPremiumCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	loaded, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(loaded, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(loaded); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = loaded
	return nil
}

func setupPipeline() {
	appLogger = applogger.NewLogger(cfg.App.LogLevel)

	httpClient := sportsdata.NewRateLimitedHTTPClient(sportsdata.HTTPClientConfig{
		Timeout:           time.Duration(cfg.SportsAPI.TimeoutSeconds) * time.Second,
		MaxRetries:        cfg.SportsAPI.MaxRetries,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      5 * time.Second,
		RateLimit:         cfg.SportsAPI.RateLimitPerSecond,
		CircuitBreakerMax: 5,
	}, appLogger)

	provider := sportsdata.NewAPIFootballClient(httpClient, cfg.SportsAPI.APIURL, cfg.SportsAPI.APIKey, appLogger)
	caches = service.NewCaches(cfg.Cache)
	aggregator = service.NewAggregator(provider, caches, cfg.SportsAPI, appLogger)

	var completionClient analysis.CompletionClient
	if cfg.AIService.Enabled {
		completionClient = analysis.NewAnthropicClient(cfg.AIService, appLogger)
	}
	generator = analysis.NewGenerator(completionClient, cfg.AITimeout(), cfg.AIService.Enabled, appLogger)
}

func newAnalysisService(ctx context.Context) (*service.AnalysisService, *quota.Gate, *database.DB, error) {
	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	gate, err := quota.NewGate(repos.Quota, cfg.Quota, appLogger)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	svc := service.NewAnalysisService(aggregator, generator, gate, appLogger)
	return svc, gate, db, nil
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The pipeline itself is driven through the analyze command; serve keeps
	// the caches warm and verifies the quota store stays reachable.
	_, _, db, err := newAnalysisService(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	appLogger.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Info("Analysis service starting")

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Logger:      appLogger,
		DB:          db,
		CacheStats:  caches.HitRatios,
	})
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, metrics.Handler())
			appLogger.WithField("addr", addr).Info("Metrics server starting")
			if err := http.ListenAndServe(addr, mux); err != nil {
				appLogger.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	if cfg.SportsAPI.StreamURL != "" {
		stream := sportsdata.NewOddsStreamClient(
			cfg.SportsAPI.StreamURL,
			cfg.SportsAPI.APIKey,
			aggregator.HandleOddsUpdate,
			appLogger,
		)
		go func() {
			if err := stream.Run(ctx); err != nil {
				appLogger.WithError(err).Warn("Odds stream stopped")
			}
		}()
	}

	if cfg.Scheduler.Enabled {
		sched := scheduler.NewScheduler(aggregator, appLogger)
		if err := sched.SchedulePrefetch(cfg.Scheduler); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	healthServer.SetReady(true)
	appLogger.Info("Analysis service ready")

	<-ctx.Done()
	appLogger.Info("Shutting down")
	return nil
}

func runAnalyze(ctx context.Context, args []string) error {
	userID, err := uuid.Parse(userFlag)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}

	fixtureIDs := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid fixture id %q: %w", arg, err)
		}
		fixtureIDs = append(fixtureIDs, id)
	}

	svc, _, db, err := newAnalysisService(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	// A denial partway through a request still carries the results that were
	// billed before it; print whatever came back before reporting the error.
	response, err := svc.RequestAnalysis(ctx, userID, fixtureIDs)
	if response != nil {
		if printErr := printJSON(response); printErr != nil {
			return printErr
		}
	}
	return err
}

func runFixtures(ctx context.Context) error {
	date := time.Now().UTC()
	if dateFlag != "" {
		parsed, err := time.Parse("2006-01-02", dateFlag)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		date = parsed
	}

	list, err := aggregator.GetFixturesByDate(ctx, date, leagueFlag)
	if err != nil {
		return err
	}

	return printJSON(list)
}

func runGrantPremium(ctx context.Context) error {
	userID, err := uuid.Parse(userFlag)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}
	if proofFlag == "" {
		return fmt.Errorf("--proof is required")
	}

	_, gate, db, err := newAnalysisService(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	state, err := gate.SetPremium(ctx, userID, proofFlag)
	if err != nil {
		return err
	}

	fmt.Printf("Premium granted to %s until %s\n", userID, state.PremiumExpiresAt.Format(time.RFC3339))
	return nil
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
