package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	gositemapgenerator "github.com/kotylevskiy/go-sitemap-generator"
	"github.com/kotylevskiy/go-sitemap-generator/internal/config"
	"github.com/kotylevskiy/go-sitemap-generator/internal/source"
)

func main() {
	if err := newRootCommand(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var (
		configPath string
		cfg        = config.Default()
	)

	cmd := &cobra.Command{
		Use:          "go-sitemap-generator [flags] [input file]",
		Short:        "Generate sitemap files and a sitemap index from a list of locations",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run := cfg
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				run = overlay(loaded, cfg, cmd)
			}
			if len(args) == 1 {
				run.Source.File = args[0]
			}
			if err := run.Validate(); err != nil {
				return err
			}

			level, err := resolveLogLevel(run.LogLevel)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

			return generate(cmd.Context(), run, stdin, stdout, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "YAML config file; flags override its values")
	flags.StringVar(&cfg.Domain, "domain", "", "Base URL prepended to every location")
	flags.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "Directory sitemap files are written to")
	flags.StringVar(&cfg.BaseFilename, "filename", cfg.BaseFilename, "Base file name (sitemap.xml, sitemap-1.xml, ...)")
	flags.IntVar(&cfg.ItemsPerDocument, "per-document", cfg.ItemsPerDocument, "Maximum entries per sitemap file")
	flags.BoolVar(&cfg.Stdout, "stdout", false, "Print documents to stdout instead of writing files")
	flags.StringVar(&cfg.Index.Loc, "index-loc", "", "Public base URL of the sitemap files; enables the index")
	flags.StringVar(&cfg.Index.LastMod, "index-lastmod", cfg.Index.LastMod, "Index lastmod (Unix seconds or date text)")
	flags.BoolVar(&cfg.Index.RepeatLocation, "repeat-index-loc", false, "Write --index-loc unchanged into every index entry")
	flags.StringVar(&cfg.Source.SQLite, "sqlite", "", "Read entries from this SQLite database")
	flags.StringVar(&cfg.Source.Query, "query", "", "Query returning loc[, priority, changefreq, lastmod] columns")
	flags.StringArrayVar(&cfg.Filter.Include, "include", nil, "Only keep locations matching this pattern (repeatable)")
	flags.StringArrayVar(&cfg.Filter.Exclude, "exclude", nil, "Drop locations matching this pattern (repeatable)")
	flags.StringVar(&cfg.Filter.Robots, "robots", "", "Drop locations disallowed by this robots.txt file")
	flags.StringVar(&cfg.Filter.UserAgent, "user-agent", cfg.Filter.UserAgent, "User agent matched against robots.txt groups")
	flags.StringVar(&cfg.Metrics.File, "metrics-file", "", "Write Prometheus metrics to this textfile when done")
	flags.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newVerifyCommand(stdout))
	return cmd
}

func newVerifyCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:          "verify <file>...",
		Short:        "Check generated sitemap files and print their entry counts",
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, path := range args {
				summary, err := gositemapgenerator.InspectFile(path)
				if err != nil {
					fmt.Fprintf(stdout, "invalid\t-\t%s\t%v\n", path, err)
					failed++
					continue
				}
				fmt.Fprintf(stdout, "%s\t%d\t%s\n", summary.Kind, summary.Entries, path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files are not valid sitemaps", failed, len(args))
			}
			return nil
		},
	}
}

// overlay applies the flags the user actually set on top of the loaded file.
func overlay(loaded, flagged config.Config, cmd *cobra.Command) config.Config {
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if set("domain") {
		loaded.Domain = flagged.Domain
	}
	if set("output") {
		loaded.OutputPath = flagged.OutputPath
	}
	if set("filename") {
		loaded.BaseFilename = flagged.BaseFilename
	}
	if set("per-document") {
		loaded.ItemsPerDocument = flagged.ItemsPerDocument
	}
	if set("stdout") {
		loaded.Stdout = flagged.Stdout
	}
	if set("index-loc") {
		loaded.Index.Loc = flagged.Index.Loc
	}
	if set("index-lastmod") {
		loaded.Index.LastMod = flagged.Index.LastMod
	}
	if set("repeat-index-loc") {
		loaded.Index.RepeatLocation = flagged.Index.RepeatLocation
	}
	if set("sqlite") {
		loaded.Source.SQLite = flagged.Source.SQLite
	}
	if set("query") {
		loaded.Source.Query = flagged.Source.Query
	}
	if set("include") {
		loaded.Filter.Include = flagged.Filter.Include
	}
	if set("exclude") {
		loaded.Filter.Exclude = flagged.Filter.Exclude
	}
	if set("robots") {
		loaded.Filter.Robots = flagged.Filter.Robots
	}
	if set("user-agent") {
		loaded.Filter.UserAgent = flagged.Filter.UserAgent
	}
	if set("metrics-file") {
		loaded.Metrics.File = flagged.Metrics.File
	}
	if set("log-level") {
		loaded.LogLevel = flagged.LogLevel
	}
	return loaded
}

func generate(ctx context.Context, cfg config.Config, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	src, closeSource, err := openSource(cfg.Source, stdin)
	if err != nil {
		return err
	}
	defer closeSource()

	filter, err := buildFilter(cfg.Filter)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	opts := cfg.GeneratorOptions()
	opts.Logger = logger
	opts.Metrics = gositemapgenerator.NewMetrics(reg)
	gen := gositemapgenerator.New(opts)

	added, skipped, err := source.Pipe(ctx, src, filter, func(entry source.Entry) error {
		return gen.Add(entry.Loc, entry.Options()...)
	})
	if err != nil {
		return err
	}
	if err := gen.Close(); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("wrote %d entries into %d documents (%d skipped)", added, gen.DocumentCount(), skipped))

	var index string
	if cfg.Index.Loc != "" {
		index, err = gen.BuildIndex(cfg.Index.Loc, cfg.Index.LastMod)
		if err != nil {
			return err
		}
	}

	if cfg.Stdout {
		docs, err := gen.Documents()
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if _, err := io.WriteString(stdout, doc); err != nil {
				return err
			}
		}
		if index != "" {
			if _, err := io.WriteString(stdout, index); err != nil {
				return err
			}
		}
	} else {
		for _, path := range gen.Files() {
			logger.Debug(fmt.Sprintf("wrote %s", path))
		}
	}

	if cfg.Metrics.File != "" {
		if err := prometheus.WriteToTextfile(cfg.Metrics.File, reg); err != nil {
			return fmt.Errorf("write metrics %s: %w", cfg.Metrics.File, err)
		}
	}
	return nil
}

func openSource(cfg config.SourceConfig, stdin io.Reader) (source.Source, func(), error) {
	switch {
	case cfg.SQLite != "":
		db, err := source.OpenSQLite(cfg.SQLite)
		if err != nil {
			return nil, nil, err
		}
		return source.SQLSource{DB: db, Query: cfg.Query}, func() { db.Close() }, nil
	case cfg.File != "" && cfg.File != "-":
		f, err := os.Open(cfg.File)
		if err != nil {
			return nil, nil, fmt.Errorf("open input %s: %w", cfg.File, err)
		}
		return source.LineSource{Reader: f}, func() { f.Close() }, nil
	default:
		if stdin == nil {
			return nil, nil, errors.New("no input: pass a file, --sqlite, or pipe locations on stdin")
		}
		return source.LineSource{Reader: stdin}, func() {}, nil
	}
}

func buildFilter(cfg config.FilterConfig) (*source.Filter, error) {
	include, err := source.CompilePatterns(cfg.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := source.CompilePatterns(cfg.Exclude)
	if err != nil {
		return nil, err
	}
	filter := &source.Filter{Include: include, Exclude: exclude}
	if cfg.Robots != "" {
		data, err := os.ReadFile(cfg.Robots)
		if err != nil {
			return nil, fmt.Errorf("read robots.txt %s: %w", cfg.Robots, err)
		}
		userAgent := cfg.UserAgent
		if userAgent == "" {
			userAgent = config.DefaultUserAgent
		}
		filter.Robots, err = source.ParseRobots(data, userAgent)
		if err != nil {
			return nil, err
		}
	}
	return filter, nil
}

func resolveLogLevel(flagValue string) (slog.Level, error) {
	value := strings.TrimSpace(flagValue)
	if value == "" {
		value = strings.TrimSpace(os.Getenv("GO_SITEMAP_GENERATOR_LOG_LEVEL"))
	}
	if value == "" {
		return slog.LevelError, nil
	}
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (use debug, info, warn, error)", value)
	}
}
