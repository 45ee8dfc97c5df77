package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/harrison/cmdlist/internal/config"
	"github.com/harrison/cmdlist/internal/logger"
	"github.com/harrison/cmdlist/internal/pipeline"
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for cmdlist
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cmdlist --path <dir>",
		Short: "List CLISH commands whose parameters take an interface range",
		Long: `cmdlist scans a tree of CLISH XML files and lists the commands that use a
parameter type whose pattern contains the given substring ('[1-2]/' by default,
matched with and without an escaped slash).

The tree holds one directory per board plus a 'common' directory. Files are
staged into a scratch directory (./xmls) that is removed when the run ends,
and the listing is written to commands.list in the current directory.

Configuration is loaded from .cmdlist/config.yaml if present
($CMDLIST_CONFIG overrides the location). CLI flags override configuration
file settings.

Examples:
  cmdlist --path build/apps/clish/xml-files
  cmdlist --path xml-files --boards esr1000,vesr --format markdown --output commands.md`,
		Version:       Version,
		Args:          noPositionalArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	cmd.Flags().String("path", "", "Path to the project xml directory (build/apps/clish/xml-files)")
	cmd.Flags().String("config", "", "Path to config file (default: .cmdlist/config.yaml)")
	cmd.Flags().StringSlice("boards", nil, "Board directory names to scan (comma separated)")
	cmd.Flags().String("substring", "", "Substring a ptype pattern must contain")
	cmd.Flags().String("work-dir", "", "Scratch directory for staged files")
	cmd.Flags().String("output", "", "Report file path")
	cmd.Flags().String("format", "", "Report format: text, markdown or html")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	return cmd
}

func noPositionalArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return &UsageError{Err: fmt.Errorf("unexpected argument %q", args[0])}
	}
	return nil
}

// runRoot implements the root command logic
func runRoot(cmd *cobra.Command, _ []string) error {
	// Called without any option: behave like --help
	if cmd.Flags().NFlag() == 0 {
		return cmd.Help()
	}

	path, _ := cmd.Flags().GetString("path")
	if !cmd.Flags().Changed("path") {
		return &UsageError{Err: errors.New("required option '--path' not given")}
	}
	if path == "" {
		return &ExitError{Code: ExitFailure, Err: errors.New("option '--path' must have an argument")}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Interrupts abort the run so the scratch workspace is still removed
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if _, err := pipeline.Run(ctx, cfg, path, cmd.OutOrStdout(), log); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	return nil
}

// loadConfig reads the config file and applies the flags given on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		var err error
		configPath, err = config.DefaultConfigPath()
		if err != nil {
			return nil, &ExitError{Code: ExitFailure, Err: err}
		}
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Err: fmt.Errorf("failed to load config from %s: %w", configPath, err)}
	}

	var o config.Overrides
	if cmd.Flags().Changed("boards") {
		boards, _ := cmd.Flags().GetStringSlice("boards")
		o.Boards = &boards
	}
	o.Substring = changedString(cmd, "substring")
	o.WorkDir = changedString(cmd, "work-dir")
	o.Output = changedString(cmd, "output")
	o.Format = changedString(cmd, "format")
	o.LogLevel = changedString(cmd, "log-level")
	cfg.MergeWithFlags(o)

	if err := cfg.Validate(); err != nil {
		return nil, &UsageError{Err: fmt.Errorf("invalid configuration: %w", err)}
	}
	return cfg, nil
}

func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// Run executes the root command with args and returns the process exit code.
// Usage errors print the usage text after the message.
func Run(args []string, stdout, stderr io.Writer) int {
	// cobra falls back to os.Args when given nil
	if args == nil {
		args = []string{}
	}

	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitOK
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "\n%s", cmd.UsageString())
		return ExitFailure
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code != ExitOK {
		return exitErr.Code
	}
	return ExitFailure
}
