package cli

import (
	"github.com/spf13/cobra"
)

func newPreviewCmd() *cobra.Command {
	var opts generateOptions
	opts.preview = true

	cmd := &cobra.Command{
		Use:   "preview <template>",
		Short: MsgPreviewShort,
		Long:  MsgPreviewLong,
		Args:  cobra.ExactArgs(1),
		Example: `  # See what would be generated
  stencil preview web-app --dest ./shop --var projectName=shop`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dest, "dest", "d", "", FlagDest)
	cmd.Flags().StringArrayVar(&opts.vars, "var", nil, FlagVar)
	cmd.Flags().StringArrayVar(&opts.varFiles, "var-file", nil, FlagVarFile)
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, FlagInteractive)
	cmd.Flags().BoolVar(&opts.noHooks, "no-hooks", false, FlagNoHooks)

	return cmd
}
