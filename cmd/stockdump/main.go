package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quantfold/stockdump/internal/fetcher"
	"github.com/quantfold/stockdump/internal/pipeline"
	"github.com/quantfold/stockdump/pkg/columnar"
	"github.com/quantfold/stockdump/pkg/config"
	"github.com/quantfold/stockdump/pkg/errors"
	"github.com/quantfold/stockdump/pkg/logger"
	"github.com/quantfold/stockdump/pkg/manifest"
	"github.com/quantfold/stockdump/pkg/preview"
)

var version = "0.1.0"

func main() {
	// Load .env if present so crumb/cookie can live outside the shell.
	_ = godotenv.Load()

	var (
		cfg        *config.Config
		configFile string
		logLevel   string
	)

	root := &cobra.Command{
		Use:   "stockdump",
		Short: "stockdump - financial data dump ingestion and columnar conversion",
		Long: `stockdump normalizes compressed financial-data dumps (per-symbol CSV/JSON
time series, or bulk ZIP bundles) into a single columnar table for
analytical storage. Fetching is delegated to an external fetcher process;
this tool builds its manifests and converts the dumps it produces.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configFile)
			if err != nil {
				return err
			}
			level := logLevel
			if level == "" {
				level = cfg.LogLevel
			}
			return logger.Init(logger.Config{Level: level, Encoding: "console"})
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to optional YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stockdump v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(manifestCmd(&cfg))
	root.AddCommand(manifestBulkCmd())
	root.AddCommand(fetchCmd(&cfg))
	root.AddCommand(convertCmd(&cfg))
	root.AddCommand(convertBulkCmd())
	root.AddCommand(headCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		printHints(err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

// manifestCmd creates a JSONL manifest of Yahoo Finance history jobs.
func manifestCmd(cfg **config.Config) *cobra.Command {
	var (
		output   string
		start    string
		end      string
		interval string
		crumb    string
		cookie   string
	)

	cmd := &cobra.Command{
		Use:   "manifest TICKER [TICKER...]",
		Short: "Create a JSONL manifest for the external fetcher",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := manifest.YahooParams{
				Interval: interval,
				Crumb:    firstNonEmpty(crumb, (*cfg).Yahoo.Crumb),
				Cookie:   firstNonEmpty(cookie, (*cfg).Yahoo.Cookie),
			}

			var err error
			if params.Start, err = parseDate(start); err != nil {
				return err
			}
			if params.End, err = parseDate(end); err != nil {
				return err
			}

			jobs, err := manifest.BuildYahoo(args, params)
			if err != nil {
				return err
			}
			if err := manifest.Write(jobs, output); err != nil {
				return err
			}
			fmt.Printf("manifest written: %s (%d jobs)\n", output, len(jobs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "dumps/manifests/yahoo.jsonl", "Where to write the manifest")
	cmd.Flags().StringVar(&start, "start", "", "Start date YYYY-MM-DD (default one year ago)")
	cmd.Flags().StringVar(&end, "end", "", "End date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&interval, "interval", "1d", "Yahoo Finance interval, e.g. 1d/1wk/1mo")
	cmd.Flags().StringVar(&crumb, "crumb", "", "Yahoo Finance crumb (or YAHOO_CRUMB env)")
	cmd.Flags().StringVar(&cookie, "cookie", "", "Yahoo Finance cookie header value (or YAHOO_COOKIE env)")
	return cmd
}

// manifestBulkCmd creates the single-entry manifest for a bulk archive.
func manifestBulkCmd() *cobra.Command {
	var (
		output string
		rawURL string
		symbol string
	)

	cmd := &cobra.Command{
		Use:   "manifest-bulk",
		Short: "Create a manifest for a bulk archive source (no auth needed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			job := manifest.BuildBulk(symbol, rawURL)
			if err := manifest.Write([]manifest.Job{job}, output); err != nil {
				return err
			}
			fmt.Printf("manifest written: %s -> %s\n", output, job.URL)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "dumps/manifests/stooq.jsonl", "Where to write the manifest")
	cmd.Flags().StringVar(&rawURL, "url", manifest.DefaultBulkURL, "Bulk archive URL")
	cmd.Flags().StringVar(&symbol, "symbol", "stooq-daily", "Symbol naming the resulting dump file")
	return cmd
}

// fetchCmd runs the external fetcher over a manifest.
func fetchCmd(cfg **config.Config) *cobra.Command {
	var (
		manifestPath string
		outputDir    string
		concurrency  int
		retries      int
		timeoutSecs  int
		level        int
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run the external fetcher against a manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc := (*cfg).Fetcher
			if cmd.Flags().Changed("concurrency") {
				fc.Concurrency = concurrency
			}
			if cmd.Flags().Changed("retries") {
				fc.Retries = retries
			}
			if cmd.Flags().Changed("timeout-secs") {
				fc.TimeoutSecs = timeoutSecs
			}
			if cmd.Flags().Changed("level") {
				fc.Level = level
			}
			return fetcher.Run(cmd.Context(), fc, manifestPath, outputDir)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "dumps/manifests/yahoo.jsonl", "Manifest to fetch")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "dumps/raw", "Directory for compressed dumps")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 8, "Concurrent fetches")
	cmd.Flags().IntVarP(&retries, "retries", "r", 2, "Retry attempts per URL")
	cmd.Flags().IntVarP(&timeoutSecs, "timeout-secs", "t", 15, "Per-request timeout in seconds")
	cmd.Flags().IntVarP(&level, "level", "l", 3, "zstd level for dump compression (-7..22)")
	return cmd
}

// convertCmd converts a directory of compressed dumps into one artifact.
func convertCmd(cfg **config.Config) *cobra.Command {
	var (
		dumpsDir    string
		output      string
		format      string
		compression string
		level       int
		hint        string
		noDict      bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert compressed dumps into a single parquet/arrow file",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := firstNonEmpty(dumpsDir, (*cfg).DumpsDir)
			paths, err := filepath.Glob(filepath.Join(dir, "*.zst"))
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeUsage, "bad dumps directory")
			}
			if len(paths) == 0 {
				return errors.Newf(errors.ErrorTypeUsage, "no .zst files found in %s", dir)
			}

			container, err := columnar.ParseFormat(format)
			if err != nil {
				return err
			}

			p := pipeline.New(logger.Get())
			res, err := p.ConvertDumps(cmd.Context(), paths, pipeline.Options{
				FormatHint:  hint,
				Output:      output,
				Container:   container,
				Compression: compression,
				Level:       level,
				Dictionary:  !noDict,
				Stats:       true,
			})
			if err != nil {
				return err
			}
			reportResult(res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dumpsDir, "dumps-dir", "d", "", "Directory of .zst dumps (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "dumps/arrow/dump.parquet", "Artifact destination")
	cmd.Flags().StringVarP(&format, "format", "f", "parquet", "Container format (parquet or arrow)")
	cmd.Flags().StringVarP(&compression, "compression", "c", "zstd", "Compression codec")
	cmd.Flags().IntVar(&level, "level", 0, "Compression level (0 = codec default)")
	cmd.Flags().StringVar(&hint, "hint", "", "Format hint csv/json if autodetect fails")
	cmd.Flags().BoolVar(&noDict, "no-dictionary", false, "Disable dictionary encoding of repeated strings")
	return cmd
}

// convertBulkCmd converts one bulk archive dump into an artifact.
func convertBulkCmd() *cobra.Command {
	var (
		dumpPath    string
		output      string
		format      string
		compression string
		level       int
	)

	cmd := &cobra.Command{
		Use:   "convert-bulk",
		Short: "Convert a bulk archive dump (.zst containing a zip) into an artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := columnar.ParseFormat(format)
			if err != nil {
				return err
			}

			p := pipeline.New(logger.Get())
			res, err := p.ConvertBulk(cmd.Context(), dumpPath, pipeline.Options{
				Output:      output,
				Container:   container,
				Compression: compression,
				Level:       level,
				Dictionary:  true,
				Stats:       true,
			})
			if err != nil {
				return err
			}
			if res.Skipped > 0 {
				fmt.Fprintf(os.Stderr, "warning: %d malformed archive entries skipped\n", res.Skipped)
			}
			reportResult(res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dumpPath, "dump", "d", "dumps/raw/stooq-daily.zst", "Bulk dump path")
	cmd.Flags().StringVarP(&output, "output", "o", "dumps/arrow/stooq.parquet", "Artifact destination")
	cmd.Flags().StringVarP(&format, "format", "f", "parquet", "Container format (parquet or arrow)")
	cmd.Flags().StringVarP(&compression, "compression", "c", "zstd", "Compression codec")
	cmd.Flags().IntVar(&level, "level", 0, "Compression level (0 = codec default)")
	return cmd
}

// headCmd previews the first rows of a single dump.
func headCmd() *cobra.Command {
	var (
		rows int
		hint string
	)

	cmd := &cobra.Command{
		Use:   "head DUMP",
		Short: "Preview a compressed dump quickly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := pipeline.New(logger.Get())
			f, err := p.Head(args[0], hint)
			if err != nil {
				return err
			}
			preview.Render(os.Stdout, f, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", preview.DefaultRows, "Rows to show")
	cmd.Flags().StringVar(&hint, "hint", "", "Format hint csv/json if autodetect fails")
	return cmd
}

func reportResult(res *pipeline.Result) {
	if res.Empty {
		fmt.Println("no usable data found; nothing written")
		return
	}
	fmt.Printf("artifact written: %s (%d rows, %d columns)\n", res.Output, res.Rows, res.Columns)
}

// printHints renders remediation hints for usage errors the way the
// original tooling did; the pipeline itself never prints.
func printHints(err error) {
	if !errors.IsType(err, errors.ErrorTypeUsage) {
		return
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "crumb"):
		fmt.Fprintln(os.Stderr, "hint: visit https://finance.yahoo.com/quote/AAPL and check the browser's")
		fmt.Fprintln(os.Stderr, "      Network tab when downloading historical data to find the crumb")
		fmt.Fprintln(os.Stderr, "      parameter, then pass --crumb or set YAHOO_CRUMB.")
	case strings.Contains(msg, "cookie"):
		fmt.Fprintln(os.Stderr, "hint: copy the Cookie header from the same request and pass --cookie")
		fmt.Fprintln(os.Stderr, "      or set YAHOO_COOKIE.")
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.Wrap(err, errors.ErrorTypeUsage, "invalid date, want YYYY-MM-DD")
	}
	return t, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
