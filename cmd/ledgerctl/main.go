// ledgerctl is the command-line surface of the wallet ledger: customer
// registration, deposits, withdrawals, transfers, currency exchanges,
// spending analytics and admin maintenance.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wallet-ledger/config"
	"wallet-ledger/internal/adapter/classifier"
	"wallet-ledger/internal/adapter/notifier"
	"wallet-ledger/internal/adapter/ratesource"
	"wallet-ledger/internal/adapter/storage/postgres"
	"wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgFile string

// app bundles the wired services behind every subcommand.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	accounts  ports.AccountService
	ledger    ports.LedgerService
	analytics ports.AnalyticsService
	rates     ports.RateResolver
	close     func()
}

// newApp loads configuration, connects Postgres and Redis, runs pending
// migrations and wires the service layer.
func newApp(ctx context.Context) (*app, error) {
	// Optional: .env files are a dev convenience, absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if err := postgres.RunMigrations(cfg.Database.DSN()); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	redisClient, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	customerRepo := postgres.NewCustomerRepo(pool)
	walletRepo := postgres.NewWalletRepo(pool)
	txRepo := postgres.NewTransactionRepo(pool)
	budgetRepo := postgres.NewBudgetRepo(pool)
	overrideRepo := postgres.NewRateOverrideRepo(pool)
	transactor := postgres.NewTransactor(pool)

	rateCache := redis.NewRateCache(redisClient)
	rateSource := ratesource.NewClient(cfg.Rates)
	rates := service.NewRateService(overrideRepo, rateCache, rateSource, cfg.Rates.CacheTTL, log)

	categorizer := service.NewCategorizer(classifier.NewClient(cfg.Classifier), log)
	notify := notifier.New(log)
	hasher := service.NewArgon2Hasher()

	refCurrency := cfg.Rates.ReferenceCurrency
	return &app{
		cfg: cfg,
		log: log,
		accounts: service.NewAccountService(
			customerRepo, walletRepo, txRepo, rates, hasher, notify, transactor, refCurrency, log),
		ledger: service.NewLedgerService(
			customerRepo, walletRepo, txRepo, rates, notify, transactor, log),
		analytics: service.NewAnalyticsService(
			customerRepo, txRepo, budgetRepo, categorizer, rates, refCurrency, log),
		rates: rates,
		close: func() {
			redisClient.Close()
			pool.Close()
		},
	}, nil
}

// runWithApp wraps a subcommand body with app setup and teardown.
func runWithApp(fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		if err := fn(cmd.Context(), a, cmd, args); err != nil {
			if appErr, ok := apperror.As(err); ok {
				return fmt.Errorf("%s: %s", appErr.Code, appErr.Message)
			}
			return err
		}
		return nil
	}
}

var rootCmd = &cobra.Command{
	Use:           "ledgerctl",
	Short:         "Multi-currency wallet ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.AddCommand(
		registerCmd, loginCmd, passwdCmd, emailCmd, walletsCmd,
		depositCmd, withdrawCmd, transferCmd, exchangeCmd, historyCmd,
		summaryCmd, incomeCmd, cashflowCmd, budgetCmd,
		ratesCmd, adminCmd,
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
