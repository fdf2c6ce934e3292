package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"arbiter/internal/audit"
	"arbiter/internal/cache"
	"arbiter/internal/config"
	"arbiter/internal/output"
	"arbiter/internal/policy"
	"arbiter/internal/providers"
	"arbiter/internal/rulepack"
	"arbiter/internal/synth"
)

// Shared audit flags
var (
	flagProvider    string
	flagModel       string
	flagPack        string
	flagPackDir     string
	flagVocab       string
	flagFormat      string
	flagOut         string
	flagLanguage    string
	flagMaxFindings int
	flagMaxAttempts int
	flagNoCache     bool
	flagSourceType  string
	flagSender      string
	flagVerbose     bool
	flagConcurrency int
)

func addAuditFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "Model provider (gemini, openai, anthropic, ollama)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagPack, "pack", "", "Rule pack name")
	cmd.Flags().StringVar(&flagPackDir, "pack-dir", "", "Directory with additional rule pack YAML files")
	cmd.Flags().StringVar(&flagVocab, "vocab", "", "Vocabulary YAML file extending the validator word lists")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagLanguage, "language", "", "Force content language tag (default: detect)")
	cmd.Flags().IntVar(&flagMaxFindings, "max-findings", 0, "Maximum number of findings")
	cmd.Flags().IntVar(&flagMaxAttempts, "max-attempts", 0, "Maximum validation attempts per finding")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Disable the result cache for this run")
	cmd.Flags().StringVar(&flagSourceType, "type", "", "Source type (text, url, image, audio, video, email)")
	cmd.Flags().StringVar(&flagSender, "sender", "", "Sender identity recorded in the audit metadata")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagPack != "" {
		m["rulePack"] = flagPack
	}
	if flagPackDir != "" {
		m["rulePackDir"] = flagPackDir
	}
	if flagVocab != "" {
		m["vocabFile"] = flagVocab
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagLanguage != "" {
		m["language"] = flagLanguage
	}
	if flagMaxFindings > 0 {
		m["maxFindings"] = fmt.Sprintf("%d", flagMaxFindings)
	}
	if flagMaxAttempts > 0 {
		m["maxAttempts"] = fmt.Sprintf("%d", flagMaxAttempts)
	}
	if flagNoCache {
		m["cache.enabled"] = "false"
	}
	return m
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildEngine assembles the full pipeline from the effective config. The
// returned cleanup closes the cache store.
func buildEngine(ctx context.Context, cfg config.Config, logger *slog.Logger) (*synth.Engine, func(), error) {
	gen, err := providers.New(ctx, cfg.Provider, cfg.Model)
	if err != nil {
		return nil, nil, err
	}

	packs, err := rulepack.Load(cfg.RulePackDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading rule packs: %w", err)
	}
	vocab, err := policy.LoadVocab(cfg.VocabFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading vocabulary: %w", err)
	}
	validator := policy.NewValidator(vocab, policy.DefaultThresholds())

	var store cache.Store
	cleanup := func() {}
	if cfg.Cache.Enabled {
		dir, err := cfg.CacheDir()
		if err != nil {
			return nil, nil, err
		}
		bs, err := cache.OpenBadger(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening cache: %w", err)
		}
		store = bs
		cleanup = func() { _ = bs.Close() }
	}

	opts := synth.DefaultOptions()
	opts.RulePack = cfg.RulePack
	opts.Language = cfg.Language
	opts.Score = cfg.Score
	if cfg.MaxFindings > 0 {
		opts.MaxFindings = cfg.MaxFindings
	}
	if cfg.MaxAttempts > 0 {
		opts.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.MaxTokens > 0 {
		opts.MaxTokens = cfg.MaxTokens
	}

	eng := synth.New(gen, cache.NewManager(store, logger), packs, validator, opts, logger)
	return eng, cleanup, nil
}

func sourceTypeFor(path string) audit.SourceType {
	if flagSourceType != "" {
		return audit.SourceType(flagSourceType)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".eml":
		return audit.SourceEmail
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return audit.SourceImage
	case ".mp3", ".wav", ".ogg", ".m4a":
		return audit.SourceAudio
	case ".mp4", ".mov", ".webm", ".avi":
		return audit.SourceVideo
	default:
		return audit.SourceText
	}
}

func metadataFor(path string) map[string]string {
	meta := make(map[string]string)
	if flagSender != "" {
		meta["sender"] = flagSender
	}
	if path != "" {
		meta["filename"] = filepath.Base(path)
	}
	return meta
}

// inputFromFile builds an audit input from a file, transcribing audio and
// video sources to text first.
func inputFromFile(ctx context.Context, path string, tr providers.Transcriber) (audit.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return audit.Input{}, fmt.Errorf("reading %s: %w", path, err)
	}
	src := sourceTypeFor(path)

	content := string(data)
	if src == audit.SourceAudio || src == audit.SourceVideo {
		content, err = tr.Transcribe(ctx, data)
		if err != nil {
			content = providers.TranscriptUnavailable
		}
	}
	return audit.NewInput(content, src, metadataFor(path)), nil
}

func runAudit(ctx context.Context, in audit.Input, cfg config.Config) {
	logger := newLogger()
	eng, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		reportError(err)
		return
	}
	defer cleanup()

	res, err := eng.Audit(ctx, in)
	if err != nil {
		reportError(err)
		return
	}

	if err := output.WriteResult(res, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if res.Status == audit.StatusNonCompliant {
		exitCode = ExitNonCompliant
	}
}

func reportError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if providers.IsAuthError(err) {
		exitCode = ExitAuthError
		return
	}
	exitCode = ExitRuntimeError
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit content for compliance",
	Long:  "Audit content against a compliance rule pack. Use subcommands to specify the content source.",
}

var auditTextCmd = &cobra.Command{
	Use:   "text <content>",
	Short: "Audit a text passage given as an argument",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		in := audit.NewInput(strings.Join(args, " "), audit.SourceText, metadataFor(""))
		runAudit(cmd.Context(), in, cfg)
		return nil
	},
}

var auditFileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Audit the contents of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		in, err := inputFromFile(cmd.Context(), args[0], providers.NoopTranscriber{})
		if err != nil {
			reportError(err)
			return nil
		}
		runAudit(cmd.Context(), in, cfg)
		return nil
	},
}

var auditStdinCmd = &cobra.Command{
	Use:   "stdin",
	Short: "Audit content read from standard input",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		src := audit.SourceText
		if flagSourceType != "" {
			src = audit.SourceType(flagSourceType)
		}
		in := audit.NewInput(string(data), src, metadataFor(""))
		runAudit(cmd.Context(), in, cfg)
		return nil
	},
}

var auditBatchCmd = &cobra.Command{
	Use:   "batch <path>...",
	Short: "Audit multiple files concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		runBatch(cmd.Context(), args, cfg)
		return nil
	},
}

// runBatch audits each file on its own goroutine, sharing one engine and one
// cache. Output is serialized so reports never interleave.
func runBatch(ctx context.Context, paths []string, cfg config.Config) {
	logger := newLogger()
	eng, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		reportError(err)
		return
	}
	defer cleanup()

	var mu sync.Mutex
	nonCompliant := 0

	g, gctx := errgroup.WithContext(ctx)
	if flagConcurrency > 0 {
		g.SetLimit(flagConcurrency)
	}
	for _, path := range paths {
		g.Go(func() error {
			in, err := inputFromFile(gctx, path, providers.NoopTranscriber{})
			if err != nil {
				return err
			}
			res, err := eng.Audit(gctx, in)
			if err != nil {
				return fmt.Errorf("auditing %s: %w", path, err)
			}

			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(os.Stdout, "=== %s ===\n", path)
			if err := output.WriteResult(res, cfg.Format, ""); err != nil {
				return err
			}
			if res.Status == audit.StatusNonCompliant {
				nonCompliant++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		reportError(err)
		return
	}

	fmt.Fprintf(os.Stderr, "Batch complete: %d of %d files non-compliant\n", nonCompliant, len(paths))
	if nonCompliant > 0 {
		exitCode = ExitNonCompliant
	}
}

func init() {
	for _, cmd := range []*cobra.Command{auditTextCmd, auditFileCmd, auditStdinCmd, auditBatchCmd} {
		addAuditFlags(cmd)
	}
	auditBatchCmd.Flags().IntVar(&flagConcurrency, "concurrency", 4, "Maximum concurrent file audits")

	auditCmd.AddCommand(auditTextCmd)
	auditCmd.AddCommand(auditFileCmd)
	auditCmd.AddCommand(auditStdinCmd)
	auditCmd.AddCommand(auditBatchCmd)
}
