package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"caixamei/internal/backend"
	"caixamei/internal/config"
	"caixamei/internal/core"
	"caixamei/internal/events"
	"caixamei/internal/gateway"
	"caixamei/internal/log"
	"caixamei/internal/notify"
	"caixamei/internal/profile"
	"caixamei/internal/report"
	"caixamei/internal/session"
	"caixamei/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: slog.LevelInfo})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("Command failed", log.FieldError, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	var (
		from     = flag.String("from", "", "start date filter (YYYY-MM-DD, inclusive)")
		to       = flag.String("to", "", "end date filter (YYYY-MM-DD, inclusive)")
		category = flag.String("category", "", "category name filter")
		kind     = flag.String("kind", "", "kind filter (Receita or Despesa)")
		search   = flag.String("search", "", "description substring filter")

		addDate     = flag.String("add-date", "", "record a transaction: date (YYYY-MM-DD)")
		addKind     = flag.String("add-kind", string(core.Income), "record a transaction: kind")
		addCategory = flag.String("add-category", "", "record a transaction: category")
		addDesc     = flag.String("add-description", "", "record a transaction: description")
		addAmount   = flag.String("add-amount", "", "record a transaction: amount")
	)
	flag.Parse()

	factory := backend.NewFactory(logger)
	result, err := factory.CreateGateway(cfg)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}
	gw := result.Gateway

	// Best-effort change event publishing; a missing broker just disables it.
	var notifier store.ChangeNotifier
	if cfg.AMQPURL != "" {
		amqpClient, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, change events disabled", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			notifier = amqpClient
		}
	}

	sess := session.New(ctx, gw, logger, func() {
		fmt.Println("Sessão encerrada. Faça login novamente.")
	})
	defer sess.Close()

	alerts := notify.NewChannel(cfg.NotifyDuration)
	alerts.Subscribe(func(n *notify.Notification) {
		if n != nil {
			fmt.Printf("[%s] %s\n", n.Severity, n.Message)
		}
	})

	if !sess.IsLoggedIn() {
		email := os.Getenv("CAIXAMEI_EMAIL")
		password := os.Getenv("CAIXAMEI_PASSWORD")
		switch {
		case email != "":
			if err := sess.Login(ctx, email, password); err != nil {
				alerts.ShowError(session.FriendlyLoginMessage(err))
				return err
			}
		case cfg.DataBackend == backend.MemoryBackend:
			// Throwaway account so the memory backend is usable out of the box.
			if err := sess.Register(ctx, "demo@caixamei.local", "demo", "Conta Demo"); err != nil {
				return fmt.Errorf("register demo account: %w", err)
			}
			if err := sess.Login(ctx, "demo@caixamei.local", "demo"); err != nil {
				return err
			}
		default:
			return fmt.Errorf("not signed in: set CAIXAMEI_EMAIL and CAIXAMEI_PASSWORD")
		}
	}

	txs := store.New("transactions", gw, gw.Transactions(), notifier, logger)
	cats := store.New("categories", gw, gw.Categories(), notifier, logger)
	txs.FetchAll(ctx)
	cats.FetchAll(ctx)

	if *addDate != "" {
		amount, err := core.ParseAmount(*addAmount)
		if err != nil {
			return fmt.Errorf("parse amount: %w", err)
		}
		tx := core.Transaction{
			Date:        *addDate,
			Kind:        core.Kind(*addKind),
			Category:    *addCategory,
			Description: *addDesc,
			Amount:      amount,
		}
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("validate transaction: %w", err)
		}
		if err := txs.Add(ctx, tx); err != nil {
			alerts.ShowError("Não foi possível salvar a transação.")
			return err
		}
		alerts.ShowSuccess("Transação registrada com sucesso.")
	}

	filter := report.Filter{
		DateStart: *from,
		DateEnd:   *to,
		Category:  *category,
		Kind:      core.Kind(*kind),
		Text:      *search,
	}
	printDashboard(ctx, gw, logger, filter, txs.Snapshot(), cats.Snapshot())
	return nil
}

func printDashboard(ctx context.Context, gw gateway.Gateway, logger *log.Logger, filter report.Filter, txs []core.Transaction, cats []core.Category) {
	profiles := profile.NewManager(gw, gw.Profiles(), logger)
	if p, err := profiles.Load(ctx); err == nil && p.FullName != "" {
		fmt.Printf("Olá, %s!\n\n", profile.FirstName(p))
	}

	filtered := filter.Apply(txs)
	totals := report.ComputeTotals(filtered)
	progress := report.LimitProgress(totals.Income, core.MEILimit)

	fmt.Printf("Receitas:  R$ %.2f\n", totals.Income)
	fmt.Printf("Despesas:  R$ %.2f\n", totals.Expense)
	fmt.Printf("Saldo:     R$ %.2f\n", totals.Balance)
	fmt.Printf("Limite MEI: %.1f%% de R$ %.2f (%s)\n\n",
		progress, core.MEILimit, report.ProgressTier(progress))

	fmt.Println("Por categoria:")
	for _, g := range report.GroupByCategory(filtered) {
		fmt.Printf("  %-24s %-8s R$ %10.2f (%d)\n", g.Category, g.Kind, g.Total, g.Count)
	}

	fmt.Println("\nEvolução diária:")
	for _, p := range report.DateSeries(filtered) {
		fmt.Printf("  %s  +R$ %10.2f  -R$ %10.2f\n", p.Date, p.Income, p.Expense)
	}

	fmt.Printf("\n%d transações, %d categorias (em %s)\n",
		len(filtered), len(cats), time.Now().Format("2006-01-02 15:04"))
}
