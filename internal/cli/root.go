package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lu-zhengda/ports/internal/config"
	"github.com/lu-zhengda/ports/internal/logs"
	"github.com/lu-zhengda/ports/internal/output"
	"github.com/lu-zhengda/ports/internal/port"
	"github.com/lu-zhengda/ports/internal/process"
	"github.com/lu-zhengda/ports/internal/snapshot"
	"github.com/lu-zhengda/ports/internal/tui"
)

// Set via ldflags at build time.
var version = "dev"

// env holds the process-level collaborators. Tests replace them.
type env struct {
	newRunner func(timeout time.Duration) port.CmdRunner
	stdout    io.Writer
	stderr    io.Writer
	now       func() time.Time
}

func defaultEnv() env {
	return env{
		newRunner: func(timeout time.Duration) port.CmdRunner {
			return &port.RealCmdRunner{Timeout: timeout}
		},
		stdout: os.Stdout,
		stderr: os.Stderr,
		now:    time.Now,
	}
}

// options holds parsed flags plus the state derived from them.
type options struct {
	env env

	json        bool
	interactive bool
	port        int
	process     string
	appType     string
	configPath  string
	noColor     bool
	verbose     int

	cfg    *config.Config
	logger *logs.Logger
}

// Execute runs the root command. On failure the error and a hint have
// already been written to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], defaultEnv())
}

func run(ctx context.Context, args []string, e env) error {
	opts := &options{env: e}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetOut(e.stdout)
	cmd.SetErr(e.stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	logger := opts.logger
	if logger == nil {
		logger = logs.New(logs.Options{Out: e.stderr})
	}
	logger.Error("%v", err)
	var pe *port.Error
	if errors.As(err, &pe) {
		logger.Hint("%s", pe.Hint())
	} else {
		logger.Hint("Run 'ports --help' for usage")
	}
	return err
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "Show listening TCP ports and the apps behind them",
		Long: `ports lists every TCP port in LISTEN state on this machine together with
the process that owns it: its command line, owner, uptime and the framework
or runtime it appears to be running.

Each invocation takes a single snapshot. Use -i for an interactive viewer.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if shell, _ := cmd.Flags().GetString("generate-completion"); shell != "" {
				return generateCompletion(cmd, shell)
			}
			return runRoot(cmd, opts)
		},
	}

	cmd.SetVersionTemplate(fmt.Sprintf("ports %s\n", version))
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.Flags().String("generate-completion", "", "Generate shell completion (bash, zsh, fish)")
	cmd.Flags().MarkHidden("generate-completion")

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.json, "json", "j", false, "Output in JSON format")
	pf.StringVar(&opts.configPath, "config", "", "Config file (default ~/.config/ports/config.yaml)")
	pf.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	pf.CountVarP(&opts.verbose, "verbose", "v", "Increase log verbosity (repeatable)")

	f := cmd.Flags()
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "Browse the snapshot interactively")
	f.IntVar(&opts.port, "port", 0, "Only show this port")
	f.StringVar(&opts.process, "process", "", "Only show processes whose name or command contains this text")
	f.StringVar(&opts.appType, "type", "", "Only show this app type (node, python, java, go, ...)")
	cmd.MarkFlagsMutuallyExclusive("json", "interactive")

	cmd.AddCommand(newInfoCmd(opts))
	return cmd
}

// setup loads config and builds the logger. Flags override config.
func (o *options) setup(cmd *cobra.Command) error {
	// Replaced once the config is known.
	o.logger = logs.New(logs.Options{
		Out:   o.env.stderr,
		Level: logs.LevelFromVerbosity(o.verbose),
		Color: colorFor(o.env.stderr, true, o.noColor),
	})

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = logs.New(logs.Options{
		Out:   o.env.stderr,
		Level: logs.LevelFromVerbosity(o.verbose),
		Color: colorFor(o.env.stderr, cfg.ColorEnabled, o.noColor),
	})

	if !cmd.Flags().Changed("json") {
		o.json = cfg.DefaultFormat == config.FormatJSON
	}
	o.logger.Debug("config loaded: format=%s exclude=%v timeout=%s", cfg.DefaultFormat, cfg.Exclude, cfg.Timeout())
	return nil
}

func (o *options) filter() (snapshot.Filter, error) {
	f := snapshot.Filter{Process: o.process, Exclude: o.cfg.Exclude}
	if o.port != 0 {
		p, err := validatePort(o.port)
		if err != nil {
			return f, err
		}
		f.Port = p
	}
	if o.appType != "" {
		t, err := port.ParseAppType(o.appType)
		if err != nil {
			return f, err
		}
		f.Type = &t
	}
	return f, nil
}

func (o *options) snapshotOptions(f snapshot.Filter, logger *logs.Logger) snapshot.Options {
	runner := o.env.newRunner(o.cfg.Timeout())
	return snapshot.Options{
		Scanner:  port.NewLsofScanner(runner),
		Enricher: process.NewEnricher(runner, process.WithClock(o.env.now)),
		Filter:   f,
		Logger:   logger,
		Now:      o.env.now,
	}
}

func runRoot(cmd *cobra.Command, opts *options) error {
	f, err := opts.filter()
	if err != nil {
		return err
	}

	if opts.interactive {
		return runInteractive(opts, f)
	}

	snap, err := snapshot.Take(cmd.Context(), opts.snapshotOptions(f, opts.logger))
	if err != nil {
		return err
	}
	opts.logger.Info("%d listening ports", len(snap.Entries))

	out := cmd.OutOrStdout()
	if opts.json {
		return output.RenderJSON(out, snap)
	}
	return output.RenderTable(out, snap.Entries, output.TableOptions{
		Color:        colorFor(out, opts.cfg.ColorEnabled, opts.noColor),
		CommandWidth: opts.cfg.CommandWidth,
	})
}

func runInteractive(opts *options, f snapshot.Filter) error {
	// Warnings would corrupt the alternate screen; the viewer counts them.
	quiet := logs.New(logs.Options{Out: io.Discard})
	load := func(ctx context.Context) (*snapshot.Snapshot, error) {
		return snapshot.Take(ctx, opts.snapshotOptions(f, quiet))
	}

	p := tea.NewProgram(tui.New(load, version, opts.cfg.CommandWidth), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(tui.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

func validatePort(n int) (uint16, error) {
	if n < 1 || n > 65535 {
		return 0, fmt.Errorf("invalid port %d: must be between 1 and 65535", n)
	}
	return uint16(n), nil
}

func colorFor(w io.Writer, configured, noColor bool) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return logs.ColorEnabled(f, configured, noColor)
}

func generateCompletion(cmd *cobra.Command, shell string) error {
	out := cmd.OutOrStdout()
	switch shell {
	case "bash":
		return cmd.Root().GenBashCompletion(out)
	case "zsh":
		return cmd.Root().GenZshCompletion(out)
	case "fish":
		return cmd.Root().GenFishCompletion(out, true)
	default:
		return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", shell)
	}
}
