package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kevinmichaelchen/gitfolio/internal/config"
	"github.com/kevinmichaelchen/gitfolio/internal/models"
	"github.com/kevinmichaelchen/gitfolio/internal/pipeline"
	"github.com/kevinmichaelchen/gitfolio/internal/surrealdb"
)

func main() {
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	root := &cobra.Command{
		Use:          "gitfolio",
		Short:        "GitHub repositories → AI portfolio summaries, resume bullets and keywords",
		SilenceUsage: true,
	}

	root.AddCommand(analyzeCmd(), userCmd(), schemaCmd(), searchCmd(), statsCmd(), toggleCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func usernameArg(args []string, cfg *config.Config) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.GitHubUsername
}

func analyzeCmd() *cobra.Command {
	var includeAll, store bool
	var token, provider string
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "analyze [username]",
		Short: "Fetch, enrich and analyze the repositories of a GitHub account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if token != "" {
				cfg.GitHubToken = token
			}
			if provider != "" {
				cfg.LLMProvider = strings.ToLower(provider)
			}
			if cmd.Flags().Changed("delay") {
				cfg.AnalysisDelay = delay
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			var svc *pipeline.Service
			var err error
			if store {
				var db *surrealdb.Client
				svc, db, err = injectStoredService(cfg)
				if err != nil {
					return err
				}
				defer func() { _ = db.Close(context.Background()) }()
			} else {
				svc, err = injectService(cfg)
				if err != nil {
					return err
				}
			}

			res, err := svc.Run(ctx, pipeline.Options{
				Username:   usernameArg(args, cfg),
				IncludeAll: includeAll,
			}, func(current, total int) {
				logger.Infof("Analyzing repository %d/%d", current+1, total)
			})
			if res != nil {
				printPortfolio(res.Repos)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&includeAll, "all", false, "Keep forks and repositories without description or stars")
	cmd.Flags().BoolVar(&store, "store", false, "Save the analyzed portfolio to SurrealDB")
	cmd.Flags().StringVar(&token, "token", "", "GitHub token (overrides GITHUB_TOKEN)")
	cmd.Flags().StringVar(&provider, "provider", "", "Generation provider: gemini or openai (overrides LLM_PROVIDER)")
	cmd.Flags().DurationVar(&delay, "delay", pipeline.DefaultDelay, "Pause between two analysis calls")
	return cmd
}

func printPortfolio(repos []models.AnalyzedRepository) {
	for i, r := range repos {
		marker := " "
		if !r.Included {
			marker = "x"
		}
		fmt.Printf("%d. [%s] %s  ★ %d  (%s)\n", i+1, marker, r.FullName, r.Stars, r.Status)
		fmt.Printf("   %s\n", r.URL)
		fmt.Printf("   %s\n", strings.ReplaceAll(r.Summary, "\n", "\n   "))
		for _, b := range r.BulletPoints {
			fmt.Printf("   • %s\n", b)
		}
		if len(r.TechKeywords) > 0 {
			fmt.Printf("   Keywords: %s\n", strings.Join(r.TechKeywords, ", "))
		}
		fmt.Println()
	}
}

func userCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user [username]",
		Short: "Show the GitHub profile the analysis would run for",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			username := usernameArg(args, cfg)
			if username == "" {
				return pipeline.ErrMissingUsername
			}

			gh, err := injectGitHubClient(cfg)
			if err != nil {
				return err
			}
			u, err := gh.User(context.Background(), username)
			if err != nil {
				return err
			}

			fmt.Printf("%s  %s\n", u.Login, u.URL)
			if u.Name != nil {
				fmt.Printf("Name:      %s\n", *u.Name)
			}
			if u.Bio != nil {
				fmt.Printf("Bio:       %s\n", *u.Bio)
			}
			fmt.Printf("Repos:     %d\n", u.PublicRepos)
			fmt.Printf("Followers: %d\n", u.Followers)
			return nil
		},
	}
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Initialize/update SurrealDB schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := injectStore(config.Load())
			if err != nil {
				return err
			}
			_ = db.Close(context.Background())
			fmt.Println("Schema initialized")
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Semantic similarity search across stored portfolios",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if k <= 0 {
				return fmt.Errorf("-k must be positive, got %d", k)
			}
			ctx := context.Background()
			cfg := config.Load()
			query := args[0]

			embClient, err := injectEmbeddingClient(cfg)
			if err != nil {
				return err
			}
			vec, err := embClient.EmbedQuery(ctx, query)
			if err != nil {
				return fmt.Errorf("embedding query: %w", err)
			}

			db, err := injectStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			results, err := db.VectorSearch(ctx, vec, k)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Println("No results found")
				return nil
			}

			fmt.Printf("Top %d results for %q:\n\n", len(results), query)
			for i, r := range results {
				fmt.Printf("%d. %s  (%.3f)  ★ %d\n", i+1, r.FullName, r.Score, r.Stars)
				fmt.Printf("   %s\n", r.URL)
				if r.Summary != nil {
					fmt.Printf("   %s\n", *r.Summary)
				}
				if len(r.TechKeywords) > 0 {
					fmt.Printf("   Keywords: %s\n", strings.Join(r.TechKeywords, ", "))
				}
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 10, "Number of results")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show stored repository counts and keyword breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			db, err := injectStore(config.Load())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			stats, err := db.GetStats(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Repos:       %d\n", stats.Total)
			fmt.Printf("Included:    %d\n", stats.Included)
			fmt.Printf("Analyzed:    %d\n", stats.Succeeded)
			fmt.Printf("Unavailable: %d\n", stats.Unavailable)
			fmt.Printf("Failed:      %d\n", stats.Failed)
			fmt.Printf("Embedded:    %d\n", stats.Embedded)

			keywords, err := db.GetKeywordBreakdown(ctx)
			if err != nil {
				return err
			}

			if len(keywords) > 0 {
				fmt.Println("\nKeyword breakdown:")
				for _, kw := range keywords {
					fmt.Printf("  %-20s %d\n", kw.Keyword, kw.Count)
				}
			}

			return nil
		},
	}
}

func toggleCmd() *cobra.Command {
	var on, off bool

	cmd := &cobra.Command{
		Use:   "toggle [owner/name]",
		Short: "Include or exclude a stored repository from the portfolio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if on && off {
				return errors.New("--on and --off are mutually exclusive")
			}
			ctx := context.Background()
			fullName := args[0]

			db, err := injectStore(config.Load())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			included := on
			if on || off {
				err = db.SetIncluded(ctx, fullName, on)
			} else {
				included, err = db.Toggle(ctx, fullName)
			}
			if err != nil {
				return err
			}

			state := "excluded from"
			if included {
				state = "included in"
			}
			fmt.Printf("%s is now %s the portfolio\n", fullName, state)

			owner, _, _ := strings.Cut(fullName, "/")
			selected, err := db.GetSelected(ctx, owner)
			if err != nil {
				return err
			}
			fmt.Printf("%s has %d selected repositories\n", owner, len(selected))
			return nil
		},
	}
	cmd.Flags().BoolVar(&on, "on", false, "Include the repository")
	cmd.Flags().BoolVar(&off, "off", false, "Exclude the repository")
	return cmd
}
