// Package cli wires the stencil command tree. Each command lives in its
// own file; msgs.go collects every user-facing string and formatting.go
// the cobra template helpers.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/stencil/docs"
	"github.com/arthur-debert/stencil/internal/version"
	"github.com/arthur-debert/stencil/pkg/cobrax/topics"
	"github.com/arthur-debert/stencil/pkg/config"
	"github.com/arthur-debert/stencil/pkg/engine"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/style"
	"github.com/arthur-debert/stencil/pkg/ui"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "stencil",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Full(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand given: show help, signal incorrect usage.
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", FlagVerbose)
	rootCmd.PersistentFlags().String("templates-root", "", FlagTemplatesRoot)
	rootCmd.PersistentFlags().String("format", "auto", FlagFormat)
	rootCmd.PersistentFlags().Bool("no-color", false, FlagNoColor)

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	// Disable automatic help command (replaced by the topics one below)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newBackupsCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Topic-based help over the embedded docs tree
	if err := topics.InitializeWithOptions(rootCmd, docs.Content, "topics", topics.Options{
		Renderer: topics.NewMarkdownRenderer(),
	}); err != nil {
		log.Debug().Err(err).Msg("help topics unavailable")
	}

	return rootCmd
}

// Execute runs the root command and renders any error through the style
// renderer. Returns the process exit code.
func Execute() int {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		renderer := style.NewRenderer(ui.DetectFormat(os.Stderr))
		fmt.Fprintln(os.Stderr, renderer.RenderError(err))
		return 1
	}
	return 0
}

// app bundles the per-invocation state every command needs: resolved
// configuration, the output format, and the writer to print to.
type app struct {
	cfg    *config.Config
	format ui.Format
	out    io.Writer
}

// buildApp resolves configuration and output format from the persistent
// flags of the invoked command's root.
func buildApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Root().PersistentFlags()

	overrides := map[string]interface{}{}
	if root, _ := flags.GetString("templates-root"); root != "" {
		overrides["templates_root"] = root
	}

	cfg, err := config.Load("", overrides)
	if err != nil {
		return nil, err
	}

	name, _ := flags.GetString("format")
	format, err := ui.ParseFormat(name)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid --format value %q", name)
	}

	resolved := ui.Resolve(format, os.Stdout)
	if noColor, _ := flags.GetBool("no-color"); noColor && resolved == ui.FormatTerminal {
		resolved = ui.FormatText
	}

	return &app{cfg: cfg, format: resolved, out: cmd.OutOrStdout()}, nil
}

// engine builds the generation engine from the resolved configuration.
func (a *app) engine(noHooks bool) (*engine.Engine, error) {
	return engine.New(engine.Config{
		TemplatesRoot: a.cfg.TemplatesRoot,
		BackupsDir:    a.cfg.Backups.Dir,
		HookTimeout:   a.cfg.HookTimeout(),
		DisableHooks:  a.cfg.Hooks.Disabled || noHooks,
		Version:       version.Version,
	})
}

// renderer returns the style renderer for the resolved format.
func (a *app) renderer() style.Renderer {
	return style.NewRenderer(a.format)
}

// printJSON writes v as indented JSON to the command output.
func (a *app) printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode output")
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}
