package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgListShort,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}

			eng, err := a.engine(false)
			if err != nil {
				return err
			}

			summaries, err := eng.ListTemplates()
			if err != nil {
				return err
			}

			if a.format.IsMachine() {
				return a.printJSON(summaries)
			}
			fmt.Fprintln(a.out, a.renderer().RenderTemplateList(summaries))
			return nil
		},
	}
}
