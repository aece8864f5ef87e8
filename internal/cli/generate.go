package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/stencil/pkg/engine"
	"github.com/arthur-debert/stencil/pkg/generate"
)

// generateOptions carries every flag shared by generate and preview.
type generateOptions struct {
	dest        string
	vars        []string
	varFiles    []string
	overwrite   bool
	dryRun      bool
	interactive bool
	noHooks     bool
	preview     bool
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:     "generate <template>",
		Aliases: []string{"gen"},
		Short:   MsgGenerateShort,
		Long:    MsgGenerateLong,
		Args:    cobra.ExactArgs(1),
		Example: `  # Generate into a new directory
  stencil generate web-app --dest ./shop --var projectName=shop

  # Bind variables from a file, then override one
  stencil generate web-app --dest ./shop --var-file vars.yaml --var port=9090

  # Rehearse without writing
  stencil generate web-app --dest ./shop --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dest, "dest", "d", "", FlagDest)
	cmd.Flags().StringArrayVar(&opts.vars, "var", nil, FlagVar)
	cmd.Flags().StringArrayVar(&opts.varFiles, "var-file", nil, FlagVarFile)
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, FlagOverwrite)
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, FlagDryRun)
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, FlagInteractive)
	cmd.Flags().BoolVar(&opts.noHooks, "no-hooks", false, FlagNoHooks)

	return cmd
}

// runGenerate is the shared body of generate and preview.
func runGenerate(cmd *cobra.Command, template string, opts generateOptions) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}

	bindings, err := collectVariables(opts.varFiles, opts.vars)
	if err != nil {
		return err
	}

	eng, err := a.engine(opts.noHooks)
	if err != nil {
		return err
	}

	if opts.interactive && !a.format.IsMachine() && isInteractiveTerminal() {
		def, err := eng.GetTemplate(template)
		if err != nil {
			return err
		}
		if err := promptMissing(def, bindings); err != nil {
			return err
		}
	}

	req := engine.Request{
		Template:    template,
		Destination: opts.dest,
		Variables:   bindings,
		DryRun:      opts.dryRun,
		Overwrite:   opts.overwrite || a.cfg.Generate.Overwrite,
		UseCache:    true,
	}

	var res *generate.Result
	var genErr error
	if opts.preview {
		res, genErr = eng.Preview(cmd.Context(), req)
	} else {
		res, genErr = eng.Generate(cmd.Context(), req)
	}

	if res != nil {
		if err := printGenerateResult(a, res); err != nil {
			return err
		}
	}
	return genErr
}

// printGenerateResult writes the result in the resolved format. Failed
// hooks get their detail lines on top of the summary.
func printGenerateResult(a *app, res *generate.Result) error {
	if a.format.IsMachine() {
		return a.printJSON(res)
	}

	renderer := a.renderer()
	fmt.Fprintln(a.out, renderer.RenderGenerateResult(res))

	for _, hr := range res.HookResults {
		if !hr.Success {
			fmt.Fprintln(a.out, renderer.RenderHookResults(res.HookResults))
			break
		}
	}
	return nil
}
