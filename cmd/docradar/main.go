package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/docradar/docradar/internal/config"
	"github.com/docradar/docradar/internal/graph"
	"github.com/docradar/docradar/internal/ingest"
	"github.com/docradar/docradar/internal/server"
)

var (
	version   = "dev"
	cfgFile   string
	dbPath    string
	logFormat string
	logLevel  string
	logger    *slog.Logger
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "docradar",
		Short: "docradar — documentation impact radar",
		Long:  "Documentation dependency mapping, blast radius analysis, and broken reference detection.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLogLevel(logLevel)
			if err != nil {
				return err
			}
			opts := &slog.HandlerOptions{Level: level}
			switch logFormat {
			case "json":
				logger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
			case "text":
				logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
			default:
				return fmt.Errorf("invalid --log-format %q (use: text, json)", logFormat)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./docradar.yaml)")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides config)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log output format (text, json)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		ingestCmd(),
		buildCmd(),
		impactCmd(),
		refsCmd(),
		depsCmd(),
		exportCmd(),
		reposCmd(),
		serveCmd(),
		versionCmd(),
		completionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid --log-level %q (use: debug, info, warn, error)", s)
	}
}

func openStore() (*graph.SQLiteStore, *config.Config) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		logger.Error("loading config", "error", err)
		os.Exit(1)
	}

	path := cfg.Storage.Path
	if dbPath != "" {
		path = dbPath
	}

	store, err := graph.NewSQLiteStore(path)
	if err != nil {
		logger.Error("opening database", "error", err)
		os.Exit(1)
	}

	if err := store.Init(context.Background()); err != nil {
		logger.Error("initializing database", "error", err)
		os.Exit(1)
	}

	return store, cfg
}

// openEngine returns the store and an engine wired with snapshot persistence
// and, if configured and reachable, a Memgraph mirror.
func openEngine(ctx context.Context) (*graph.SQLiteStore, *graph.Engine, *config.Config) {
	store, cfg := openStore()

	var mirror *graph.Mirror
	if cfg.Storage.Memgraph.Enabled {
		m, err := graph.NewMirror(ctx,
			cfg.Storage.Memgraph.URI,
			cfg.Storage.Memgraph.Username,
			cfg.Storage.Memgraph.Password,
			logger,
		)
		if err != nil {
			logger.Warn("memgraph unavailable, builds will not be mirrored", "error", err)
		} else {
			mirror = m
			logger.Info("memgraph connected", "uri", cfg.Storage.Memgraph.URI)
		}
	}

	return store, graph.NewEngine(store, store, mirror, logger), cfg
}

// --- ingest ---

func ingestCmd() *cobra.Command {
	var repoID string
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "ingest [root]",
		Short: "Load a repository's files into the document store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg := openStore()
			defer store.Close() //nolint:errcheck // best-effort cleanup

			in := ingest.New(store, cfg, logger)
			ctx := cmd.Context()

			if manifestPath == "" {
				manifestPath = cfg.Ingest.Manifest
			}
			if manifestPath != "" {
				m, err := ingest.LoadManifest(manifestPath)
				if err != nil {
					return err
				}
				for _, repo := range m.Repositories {
					fmt.Printf("Ingesting %s from %s...\n", repo.ID, repo.Root)
					printIngestResult(in.RunSync(ctx, repo.ID, repo.Root))
				}
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("a repository root is required (or use --manifest)")
			}
			if repoID == "" {
				return fmt.Errorf("--repo is required when ingesting a single root")
			}

			fmt.Printf("Ingesting %s from %s...\n", repoID, args[0])
			r := in.RunSync(ctx, repoID, args[0])
			printIngestResult(r)
			return r.Error
		},
	}

	cmd.Flags().StringVar(&repoID, "repo", "", "repository identifier")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "YAML manifest listing repositories to ingest")
	return cmd
}

func printIngestResult(r ingest.Result) {
	if r.Error != nil {
		fmt.Printf("Ingest failed: %v\n", r.Error)
		return
	}
	fmt.Printf("Ingested %d documents\n", r.DocumentsFound)
	for _, w := range r.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}

// --- build ---

func buildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build <repo>",
		Short: "Build the documentation dependency graph for a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, engine, _ := openEngine(cmd.Context())
			defer store.Close() //nolint:errcheck // best-effort cleanup

			g, err := engine.Build(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Built graph for %s: %d nodes, %d edges\n",
				g.RepositoryID, g.Metadata.NodeCount, g.Metadata.EdgeCount)
			return nil
		},
	}
}

// --- impact ---

func impactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "impact <repo> <changed-file> [changed-file...]",
		Short: "Compute the documentation blast radius of changed files",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, engine, _ := openEngine(cmd.Context())
			defer store.Close() //nolint:errcheck // best-effort cleanup

			radius, err := engine.ComputeBlastRadius(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}

			if len(radius.AffectedDocs) == 0 {
				fmt.Println("No documentation affected.")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DOC\tIMPACT\tCONFIDENCE\tREASON")
			for _, d := range radius.AffectedDocs {
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", d.Path, d.ImpactType, d.Confidence, d.Reason)
			}
			tw.Flush() //nolint:errcheck // best-effort output
			fmt.Printf("\nTotal impact: %.2f across %d doc(s)\n", radius.TotalImpact, len(radius.AffectedDocs))
			return nil
		},
	}
}

// --- refs ---

func refsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refs <repo>",
		Short: "List broken cross-references in a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, engine, _ := openEngine(cmd.Context())
			defer store.Close() //nolint:errcheck // best-effort cleanup

			broken, err := engine.DetectBrokenReferences(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if len(broken) == 0 {
				fmt.Println("No broken references found.")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SOURCE\tTARGET\tKIND")
			for _, b := range broken {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Source, b.Target, b.Kind)
			}
			tw.Flush() //nolint:errcheck // best-effort output
			fmt.Printf("\n%d broken reference(s)\n", len(broken))
			return nil
		},
	}
}

// --- deps ---

func depsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps <repo> <path>",
		Short: "Show what a file depends on and what depends on it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, engine, _ := openEngine(cmd.Context())
			defer store.Close() //nolint:errcheck // best-effort cleanup

			deps, err := engine.NodeDependencies(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("Depends on (%d):\n", len(deps.DependsOn))
			for _, n := range deps.DependsOn {
				fmt.Printf("  %s (%s)\n", n.Path, n.Kind)
			}
			fmt.Printf("\nDepended on by (%d):\n", len(deps.DependedBy))
			for _, n := range deps.DependedBy {
				fmt.Printf("  %s (%s)\n", n.Path, n.Kind)
			}
			return nil
		},
	}
}

// --- export ---

func exportCmd() *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export <repo>",
		Short: "Export the graph as DOT, Cytoscape JSON, or raw JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, engine, _ := openEngine(cmd.Context())
			defer store.Close() //nolint:errcheck // best-effort cleanup

			out, err := engine.Export(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Println(out.Content)
				return nil
			}
			if err := os.WriteFile(output, []byte(out.Content), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Printf("Exported %d nodes, %d edges to %s\n", out.NodeCount, out.EdgeCount, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "export format (dot, cytoscape, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// --- repos ---

func reposCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repos",
		Short: "List ingested repositories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _ := openStore()
			defer store.Close() //nolint:errcheck // best-effort cleanup
			ctx := cmd.Context()

			repos, err := store.ListRepositories(ctx)
			if err != nil {
				return err
			}
			if len(repos) == 0 {
				fmt.Println("No repositories ingested yet.")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "REPO\tDOCUMENTS\tNODES\tEDGES\tBUILT")
			for _, repo := range repos {
				docCount, _ := store.DocumentCount(ctx, repo)
				nodes, edges, built := "-", "-", "never"
				if snap, _ := store.GetSnapshot(ctx, repo); snap != nil {
					nodes = fmt.Sprintf("%d", snap.NodeCount)
					edges = fmt.Sprintf("%d", snap.EdgeCount)
					built = snap.BuiltAt.Format(time.RFC3339)
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", repo, docCount, nodes, edges, built)
			}
			tw.Flush() //nolint:errcheck // best-effort output
			return nil
		},
	}
}

// --- serve ---

func serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			store, engine, cfg := openEngine(ctx)
			defer store.Close() //nolint:errcheck // best-effort cleanup

			if listen == "" {
				listen = cfg.Server.Listen
			}

			var sched *ingest.Scheduler
			if cfg.Ingest.Schedule != "" && cfg.Ingest.Manifest != "" {
				m, err := ingest.LoadManifest(cfg.Ingest.Manifest)
				if err != nil {
					return err
				}
				in := ingest.New(store, cfg, logger)
				sched, err = ingest.NewScheduler(in, engine, m, cfg.Ingest.Schedule, logger)
				if err != nil {
					return err
				}
				if cfg.Ingest.OnStartup {
					sched.RunAll(ctx)
				}
				sched.Start(ctx)
				defer sched.Stop()
			}

			srv := server.New(store, engine, logger,
				listen, cfg.Server.ReadOnly, cfg.Server.APIToken, cfg.Server.CORSOrigin)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	return cmd
}

// --- version / completion ---

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("docradar %s\n", version)
		},
	}
}

func completionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion script",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}
