package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coolbeans/seevgen/pkg/archive"
	"github.com/coolbeans/seevgen/pkg/config"
	"github.com/coolbeans/seevgen/pkg/convert"
	"github.com/coolbeans/seevgen/pkg/extract"
	"github.com/coolbeans/seevgen/pkg/logging"
	"github.com/coolbeans/seevgen/pkg/metrics"
	"github.com/coolbeans/seevgen/pkg/notify"
	"github.com/coolbeans/seevgen/pkg/pattern"
	"github.com/coolbeans/seevgen/pkg/seev"
	"github.com/coolbeans/seevgen/pkg/source"
	"github.com/coolbeans/seevgen/pkg/watch"
)

var version = "0.1.0"

// app holds state shared by every subcommand, filled in before each run.
type app struct {
	configPath  string
	logLevel    string
	patternsDir string

	cfg      *config.Config
	logger   *logging.Logger
	registry *pattern.DefaultRegistry

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := a.rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "seevgen: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "seevgen",
		Short: "Shareholder meeting notice to seev.001 converter",
		Long: `seevgen reads AGM, EGM and bondholder meeting notices in English or
French and produces ISO 20022 seev.001.001.12 meeting notifications.

It extracts the issuer, ISIN, meeting date and time, record date, voting
deadline, venue and the numbered agenda, then renders them in schema order
with placeholders for anything the notice does not state.

Supported inputs: TXT, MD, HTML, PDF (requires pdftotext), DOCX`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.patternsDir, "patterns", "", "Directory of institution pattern packs")

	rootCmd.AddCommand(a.convertCmd())
	rootCmd.AddCommand(a.extractCmd())
	rootCmd.AddCommand(a.watchCmd())
	rootCmd.AddCommand(a.patternsCmd())

	return rootCmd
}

// setup loads configuration, builds the logger and loads pattern packs.
func (a *app) setup() error {
	cfg, err := config.LoadWithFile(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.patternsDir != "" {
		cfg.Patterns.Dir = a.patternsDir
	}
	a.cfg = cfg

	logger, err := logging.NewLoggerWithWriter(&cfg.Log, a.stderr)
	if err != nil {
		return err
	}
	a.logger = logger

	a.registry = pattern.NewRegistry()
	if cfg.Patterns.Dir != "" {
		if err := a.registry.LoadDirectory(cfg.Patterns.Dir); err != nil {
			return fmt.Errorf("loading pattern packs: %w", err)
		}
		logger.Debug(context.Background(), "pattern packs loaded",
			zap.String("dir", cfg.Patterns.Dir),
			zap.Int("packs", a.registry.Count()),
		)
	}
	return nil
}

func (a *app) extractor() *extract.Extractor {
	return extract.NewExtractor(extract.WithRules(a.registry))
}

func (a *app) reader() *source.Reader {
	return source.NewReader(
		source.WithPDFToText(a.cfg.Source.PDFToText),
		source.WithPDFTimeout(a.cfg.Source.Timeout.Duration()),
	)
}

func (a *app) renderer() *seev.Renderer {
	r := a.cfg.Render
	return seev.NewRenderer(
		seev.WithDefaults(seev.Defaults{
			Date:    r.PlaceholderDate,
			ISIN:    r.PlaceholderISIN,
			Issuer:  r.Issuer,
			Town:    r.Town,
			Country: r.Country,
		}),
		seev.WithIDPrefix(r.IDPrefix),
		seev.WithIndent(r.Indent),
	)
}

func (a *app) mailer(extraTo []string) *notify.Mailer {
	m := a.cfg.Mail
	to := append(append([]string{}, m.To...), extraTo...)
	return notify.NewMailer(notify.Config{
		Enabled:    m.Enabled || len(extraTo) > 0,
		SMTPServer: m.SMTPServer,
		SMTPPort:   m.SMTPPort,
		SMTPUser:   m.SMTPUser,
		SMTPPass:   m.SMTPPass.Value(),
		From:       m.From,
		To:         to,
	}, notify.WithLogger(a.logger))
}

func (a *app) convertCmd() *cobra.Command {
	var (
		assumeYes   bool
		outDir      string
		toStdout    bool
		mailTo      []string
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "convert <notice>",
		Short: "Convert a meeting notice into a seev.001 document",
		Long: `Convert a meeting notice into a seev.001.001.12 document.

The extracted data is shown for review and the document is only written
after confirmation, unless --yes is given. Documents are written to the
output directory as SEEV001_<COMPANY>_<YYYYMMDD_HHMMSS>.xml and recorded
in its archive.json manifest.

Example:
  seevgen convert notice.txt
  seevgen convert notice.pdf --yes --out ./outbox
  seevgen convert notice.html --stdout > notice.xml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if outDir == "" {
				outDir = a.cfg.Output.Dir
			}
			if metricsFile == "" {
				metricsFile = a.cfg.Metrics.Textfile
			}
			if len(mailTo) > 0 && a.cfg.Mail.SMTPServer == "" {
				return fmt.Errorf("--mail-to needs mail.smtp_server in the configuration")
			}

			m := metrics.New()
			options := []convert.Option{
				convert.WithLogger(a.logger.Named("convert")),
				convert.WithMetrics(m),
			}

			if !assumeYes && !a.cfg.Output.AssumeYes {
				prompt := convert.NewPrompt(a.stdin, a.stderr)
				options = append(options, convert.WithConfirmer(prompt))
			}

			if !toStdout {
				store, err := archive.Open(outDir)
				if err != nil {
					return &convert.StageError{Stage: convert.StagePersist, Err: err}
				}
				options = append(options,
					convert.WithStore(store),
					convert.WithNotifier(a.mailer(mailTo)),
				)
			}

			svc := convert.NewService(a.reader(), a.extractor(), a.renderer(), options...)
			result, err := svc.ConvertFile(ctx, args[0])

			if metricsFile != "" {
				if werr := m.WriteTextfile(metricsFile); werr != nil {
					a.logger.Warn(ctx, "failed to write metrics", zap.Error(werr))
				}
			}

			if errors.Is(err, convert.ErrCancelled) {
				fmt.Fprintln(a.stderr, "Generation cancelled.")
				return nil
			}
			if result != nil {
				if toStdout {
					_, _ = a.stdout.Write(result.Document)
				} else if result.Entry != nil {
					fmt.Fprintln(a.stdout, filepath.Join(outDir, result.Entry.File))
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Generate without asking for confirmation")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from config, else .)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Write the document to stdout instead of the output directory")
	cmd.Flags().StringSliceVar(&mailTo, "mail-to", nil, "Also e-mail the document to these addresses")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")

	return cmd
}

func (a *app) extractCmd() *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "extract <notice>",
		Short: "Print the extracted meeting record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := convert.NewService(a.reader(), a.extractor(), a.renderer(),
				convert.WithLogger(a.logger.Named("extract")))

			rec, err := svc.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(a.stdout)
			if !compact {
				encoder.SetIndent("", "  ")
			}
			return encoder.Encode(rec)
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "Single-line JSON output")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	var (
		outDir    string
		statePath string
		debounce  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <inbox>",
		Short: "Convert every notice dropped into an inbox directory",
		Long: `Watch a directory and convert each notice as it arrives, without
confirmation. Files with identical content are converted once. Pattern
packs are reloaded on change when patterns.watch is set.

Example:
  seevgen watch ./inbox --out ./outbox --state ./outbox/.watch-state.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if outDir == "" {
				outDir = a.cfg.Output.Dir
			}
			store, err := archive.Open(outDir)
			if err != nil {
				return err
			}

			if a.cfg.Patterns.Watch && a.cfg.Patterns.Dir != "" {
				a.registry.SetOnChange(func(event string, pack *pattern.Pack) {
					a.logger.Info(ctx, "pattern pack "+event, zap.String("pack", pack.Name))
				})
				a.registry.SetOnError(func(path string, err error) {
					a.logger.Warn(ctx, "pattern pack rejected", zap.String("file", path), zap.Error(err))
				})
				if err := a.registry.Watch(); err != nil {
					return err
				}
				defer a.registry.StopWatch()
			}

			m := metrics.New()
			svc := convert.NewService(a.reader(), a.extractor(), a.renderer(),
				convert.WithLogger(a.logger.Named("convert")),
				convert.WithMetrics(m),
				convert.WithStore(store),
				convert.WithNotifier(a.mailer(nil)),
			)

			inbox, err := watch.NewInbox(watch.Config{
				Dir:       args[0],
				Debounce:  debounce,
				StatePath: statePath,
				Accept:    source.Supported,
			}, a.logger)
			if err != nil {
				return err
			}

			return inbox.Run(ctx, func(ctx context.Context, path string) error {
				result, err := svc.ConvertFile(ctx, path)
				if a.cfg.Metrics.Textfile != "" {
					if werr := m.WriteTextfile(a.cfg.Metrics.Textfile); werr != nil {
						a.logger.Warn(ctx, "failed to write metrics", zap.Error(werr))
					}
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, filepath.Join(outDir, result.Entry.File))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from config, else .)")
	cmd.Flags().StringVar(&statePath, "state", "", "File recording processed notices across restarts")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before a new file is processed")
	return cmd
}

func (a *app) patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect institution pattern packs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List loaded pattern packs and their rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			packs := a.registry.List()
			if len(packs) == 0 {
				fmt.Fprintln(a.stdout, "No pattern packs loaded. Use --patterns or patterns.dir.")
				return nil
			}
			for _, pack := range packs {
				fmt.Fprintf(a.stdout, "%s %s", pack.Name, pack.Version)
				if pack.Institution != "" {
					fmt.Fprintf(a.stdout, " (%s)", pack.Institution)
				}
				fmt.Fprintln(a.stdout)
				for _, rule := range pack.Rules {
					fmt.Fprintf(a.stdout, "  %-16s %-24s %s\n", rule.Field, rule.Name, rule.Pattern)
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check <file>...",
		Short: "Validate pattern pack files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				pack, err := pattern.ParseFile(path)
				if err != nil {
					failed++
					fmt.Fprintf(a.stdout, "FAIL %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(a.stdout, "OK   %s (%s, %d rules)\n", path, pack.Name, len(pack.Rules))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d pattern packs invalid", failed, len(args))
			}
			return nil
		},
	})

	return cmd
}
