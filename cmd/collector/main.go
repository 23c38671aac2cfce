package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rivalsense/db"
	"rivalsense/internal/collect"
	"rivalsense/internal/config"
	"rivalsense/internal/model"
	"rivalsense/internal/repository"
	"rivalsense/pkg/news"
)

var (
	companiesPath string
	cfg           *config.Config

	outDir      string
	save        bool
	daysBack    int
	perQuery    int
	concurrency int
	only        []string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "collector",
	Short: "Collect company and competitor news snapshots",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		godotenv.Load()

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&companiesPath, "companies", "c", "companies.yaml", "Path to the companies YAML file")

	runCmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory for <key>_data.json files")
	runCmd.Flags().BoolVar(&save, "save", false, "Also store snapshots in Postgres (DATABASE_URL)")
	runCmd.Flags().IntVar(&daysBack, "days", 30, "How many days of news to collect")
	runCmd.Flags().IntVar(&perQuery, "per-query", 5, "Maximum results per search query")
	runCmd.Flags().IntVar(&concurrency, "concurrency", 4, "Competitors collected in parallel")
	runCmd.Flags().StringSliceVar(&only, "only", nil, "Collect only these company keys")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(latestCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect news for every configured company",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		companies, err := collect.LoadCompanies(companiesPath)
		if err != nil {
			return err
		}
		companies = filterCompanies(companies, only)

		var repo *repository.SnapshotRepository
		if save {
			if err := db.Connect(ctx, cfg.DatabaseURL); err != nil {
				return fmt.Errorf("error connecting to DB: %w", err)
			}
			defer db.Close()

			repo = repository.NewSnapshotRepository(db.DB)
			if err := repo.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("error preparing schema: %w", err)
			}
		}

		sources, financials := buildSources(ctx)
		defer db.CloseRedis()
		collector := collect.NewCollector(sources, financials, collect.Options{
			PerQuery:    perQuery,
			DaysBack:    daysBack,
			Concurrency: concurrency,
		})

		var snapshots []*model.CompanySnapshot
		for _, company := range companies {
			snapshot, err := collector.Collect(ctx, company)
			if err != nil {
				return err
			}
			snapshots = append(snapshots, snapshot)

			logSummary(snapshot)

			if repo != nil {
				if err := repo.SaveSnapshot(ctx, snapshot); err != nil {
					slog.Error("error saving snapshot", "company", company.Key, "error", err)
					continue
				}
				slog.Info("snapshot saved", "company", company.Key, "id", snapshot.ID)
			}
		}

		paths, err := collect.WriteSnapshots(outDir, snapshots)
		if err != nil {
			return err
		}
		for _, p := range paths {
			slog.Info("wrote file", "path", p)
		}

		return nil
	},
}

var latestCmd = &cobra.Command{
	Use:   "latest KEY...",
	Short: "Print the newest stored snapshot for each company key",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := db.Connect(ctx, cfg.DatabaseURL); err != nil {
			return fmt.Errorf("error connecting to DB: %w", err)
		}
		defer db.Close()

		repo := repository.NewSnapshotRepository(db.DB)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")

		for _, key := range args {
			snapshot, err := repo.GetLatestSnapshot(ctx, key)
			if err != nil {
				return fmt.Errorf("error fetching snapshot %s: %w", key, err)
			}
			if snapshot == nil {
				slog.Warn("no snapshot stored", "company", key)
				continue
			}
			if err := enc.Encode(snapshot); err != nil {
				return err
			}
		}

		return nil
	},
}

// buildSources wires every news source that has credentials. Google News needs
// none and is always present. When REDIS_URL is set, each source is cached.
func buildSources(ctx context.Context) ([]news.NewsClient, collect.FinancialsSource) {
	clients := []news.NewsClient{news.NewGoogleNewsClient()}

	var financials collect.FinancialsSource
	if key := cfg.Sources.FinnhubKey; key != "" {
		finnhub := news.NewFinnHubClient(key)
		clients = append(clients, finnhub)
		financials = finnhub
	}
	if key := cfg.Sources.AlphaVantageKey; key != "" {
		clients = append(clients, news.NewAlphaVantageClient(key))
	}
	if key := cfg.Sources.MassiveKey; key != "" {
		clients = append(clients, news.NewMassiveClient(key))
	}

	if cfg.RedisURL == "" {
		return clients, financials
	}

	if err := db.ConnectRedis(ctx, cfg.RedisURL); err != nil {
		slog.Warn("redis unavailable, news cache disabled", "error", err)
		return clients, financials
	}

	cache := db.NewRedisCache(db.Redis, db.NewsCachePrefix)
	for i, c := range clients {
		clients[i] = news.NewCachedClient(c, cache, cfg.Sources.CacheTTL)
	}

	return clients, financials
}

func filterCompanies(companies []collect.CompanyConfig, keys []string) []collect.CompanyConfig {
	if len(keys) == 0 {
		return companies
	}

	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}

	var out []collect.CompanyConfig
	for _, c := range companies {
		if want[c.Key] {
			out = append(out, c)
		}
	}
	return out
}

func logSummary(s *model.CompanySnapshot) {
	var competitorNews int
	s.Company.Competitors.Each(func(name string, record model.CompetitorRecord) bool {
		competitorNews += len(record.News)
		return true
	})

	slog.Info("collection complete",
		"company", s.Company.Name,
		"news", len(s.Company.News),
		"competitors", s.Company.Competitors.Len(),
		"competitor_news", competitorNews,
		"financials", len(s.Financials),
	)
}
