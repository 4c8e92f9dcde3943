package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mnishina/avif-converter/config"
	"github.com/mnishina/avif-converter/discover"
	"github.com/mnishina/avif-converter/encoder"
	"github.com/mnishina/avif-converter/job"
	"github.com/mnishina/avif-converter/ledger"
	"github.com/mnishina/avif-converter/logger"
	"github.com/mnishina/avif-converter/models"
	"github.com/mnishina/avif-converter/progress"
	"github.com/mnishina/avif-converter/report"
)

func newRootCommand() *cobra.Command {
	var (
		configPath  string
		interactive bool

		quality     int
		effort      int
		resize      string
		pattern     string
		concurrency int
		clean       bool
		resume      bool
		noProgress  bool
		verbose     bool
		logFile     string
		dataDir     string
	)

	cmd := &cobra.Command{
		Use:   "avif-converter [flags] [input-dir [output-dir]]",
		Short: "Batch-convert image trees to AVIF plus compressed fallbacks",
		Long: `avif-converter walks an input directory, converts every matching image to
AVIF and re-encodes a compressed fallback in the image's own format, mirroring
the directory structure under the output root.

Settings layer in order: built-in defaults, the TOML config file, environment
(.env is read if present), flags, then interactive prompts.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()

			switch {
			case configPath != "":
				if err := config.ApplyFile(&cfg, configPath); err != nil {
					return err
				}
			default:
				if err := config.ApplyFile(&cfg, config.DefaultFileName); err != nil && !os.IsNotExist(err) {
					return err
				}
			}
			config.ApplyEnv(&cfg)

			flags := cmd.Flags()
			if flags.Changed("quality") {
				cfg.Quality = quality
			}
			if flags.Changed("effort") {
				cfg.Effort = effort
			}
			if flags.Changed("resize") {
				cfg.Resize = resize
			}
			if flags.Changed("pattern") {
				cfg.Pattern = pattern
			}
			if flags.Changed("concurrency") {
				cfg.Concurrency = concurrency
			}
			if flags.Changed("clean") {
				cfg.CleanOutput = clean
			}
			if flags.Changed("resume") {
				cfg.Resume = resume
			}
			if flags.Changed("no-progress") {
				cfg.NoProgress = noProgress
			}
			if flags.Changed("verbose") {
				cfg.Verbose = verbose
			}
			if flags.Changed("log-file") {
				cfg.LogFile = logFile
			}
			if flags.Changed("data-dir") {
				cfg.DataDir = dataDir
			}

			if len(args) > 0 {
				cfg.InputDir = args[0]
			}
			if len(args) > 1 {
				cfg.OutputDir = args[1]
			}

			if interactive || (missingDirs(cfg) && isatty.IsTerminal(os.Stdin.Fd())) {
				if err := promptMissing(&cfg, interactive); err != nil {
					return err
				}
			}

			if err := cfg.Finalize(); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runConvert(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file (default "+config.DefaultFileName+" if present)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for settings before running")
	cmd.Flags().IntVarP(&quality, "quality", "q", 80, "encode quality, 0-100")
	cmd.Flags().IntVarP(&effort, "effort", "e", 4, "AVIF encoder effort, 0 (fastest) to 9 (slowest)")
	cmd.Flags().StringVar(&resize, "resize", "", "target dimensions WxH (accepted, not applied yet)")
	cmd.Flags().StringVarP(&pattern, "pattern", "p", config.DefaultPattern, "glob matched against paths under the input dir")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "max jobs in flight (0 = one per CPU)")
	cmd.Flags().BoolVar(&clean, "clean", true, "clear the output dir before converting")
	cmd.Flags().BoolVar(&resume, "resume", false, "skip files already converted with the same settings")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "log completions instead of drawing a progress bar")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().StringVar(&logFile, "log-file", "", "also append logs to this file")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "run state location (default <output-dir>/"+config.DataDirName+")")

	cmd.AddCommand(newDoctorCommand(), newHistoryCommand(), newVersionCommand())
	return cmd
}

func missingDirs(cfg config.Config) bool {
	return cfg.InputDir == "" || cfg.OutputDir == ""
}

// runConvert is the whole batch: discover, convert through the pool, then
// summarize. Per-job failures are folded into the summary; only an unusable
// input root or an empty match set comes back as an error.
func runConvert(ctx context.Context, cfg config.Config) error {
	if cfg.Verbose {
		logger.SetLevel(logger.DEBUG)
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		logger.SetColor(false)
	}
	if cfg.LogFile != "" {
		if err := logger.Init(cfg.LogFile, true); err != nil {
			return err
		}
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	encoder.RegisterDefaults()

	files, err := discover.Files(cfg.InputDir, cfg.Pattern, cfg.OutputDir, cfg.DataDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files match %q under %s", cfg.Pattern, cfg.InputDir)
	}
	logger.Infof("found %d files under %s", len(files), cfg.InputDir)

	prepareOutputRoot(cfg)

	store := openLedger(cfg)
	if store != nil {
		defer store.Close()
	}

	jobs, skipped := buildJobs(cfg, files, store)
	if skipped > 0 {
		logger.Infof("resume: skipping %d unchanged files", skipped)
	}
	if len(jobs) == 0 {
		logger.Info("nothing to do, all files are up to date")
		return nil
	}

	runID := uuid.NewString()
	logger.Debugf("run %s: %d jobs, %d workers", runID, len(jobs), cfg.Concurrency)

	bar := progress.New(len(jobs), cfg.NoProgress)
	start := time.Now()
	results := job.Run(ctx, jobs, cfg.Concurrency, job.Execute, func(r models.Result) {
		bar.Observe(r)
		recordResult(store, cfg, runID, r)
	})
	bar.Finish()

	if len(cfg.Uploads) > 0 {
		logger.Infof("artifacts mirrored to %d upload target(s)", len(cfg.Uploads))
	}

	summary := report.Summarize(results)
	summary.Elapsed = time.Since(start)
	fmt.Print(report.Render(summary))

	if ctx.Err() != nil {
		logger.Warnf("interrupted: %d of %d jobs not attempted", len(jobs)-len(results), len(jobs))
	}
	return nil
}

// prepareOutputRoot clears and recreates the output tree. Failures here
// degrade to warnings and the run writes into whatever is already there.
// Resume keeps previous artifacts regardless of the clean setting.
func prepareOutputRoot(cfg config.Config) {
	if cfg.CleanOutput && !cfg.Resume {
		if err := os.RemoveAll(cfg.OutputDir); err != nil {
			logger.Warnf("could not clear output dir %s: %v", cfg.OutputDir, err)
		}
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		logger.Warnf("could not create output dir %s: %v", cfg.OutputDir, err)
	}
}

// openLedger opens the run state store. The ledger is nice to have, not a
// requirement; any problem just costs resume and history.
func openLedger(cfg config.Config) *ledger.Store {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Warnf("could not create data dir %s: %v", cfg.DataDir, err)
		return nil
	}
	store, err := ledger.Open(cfg.LedgerDBPath())
	if err != nil {
		logger.Warnf("ledger unavailable, resume and history are off: %v", err)
		return nil
	}
	return store
}

// buildJobs turns discovered files into jobs, dropping the ones resume can
// prove are already done.
func buildJobs(cfg config.Config, files []string, store *ledger.Store) ([]models.Job, int) {
	jobs := make([]models.Job, 0, len(files))
	skipped := 0
	for _, f := range files {
		if cfg.Resume && store != nil {
			rel, err := filepath.Rel(cfg.InputDir, f)
			if err == nil {
				info, statErr := os.Stat(f)
				if statErr == nil && store.ShouldSkip(filepath.ToSlash(rel), info, cfg.Quality, cfg.Effort) {
					skipped++
					continue
				}
			}
		}
		jobs = append(jobs, models.Job{
			InputPath:  f,
			InputRoot:  cfg.InputDir,
			OutputRoot: cfg.OutputDir,
			Config:     cfg,
		})
	}
	return jobs, skipped
}

// recordResult writes one outcome to the ledger. Runs on the collecting
// goroutine, so writes are naturally serialized.
func recordResult(store *ledger.Store, cfg config.Config, runID string, r models.Result) {
	if store == nil {
		return
	}
	rel, err := filepath.Rel(cfg.InputDir, r.InputPath)
	if err != nil {
		return
	}

	record := ledger.Record{
		RunID:     runID,
		Quality:   cfg.Quality,
		Effort:    cfg.Effort,
		Timestamp: time.Now(),
	}
	if r.Failed() {
		record.Status = ledger.StatusFailed
		record.Error = r.Err
	} else {
		record.Status = ledger.StatusSuccess
		record.AvifSize = r.AvifSize
		record.FallbackSize = r.FallbackSize
	}
	if info, err := os.Stat(r.InputPath); err == nil {
		record.SourceSize = info.Size()
		record.SourceModTime = info.ModTime().Unix()
	}

	if err := store.Put(filepath.ToSlash(rel), record); err != nil {
		logger.Debugf("ledger write for %s: %v", rel, err)
	}
}
