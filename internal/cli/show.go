package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <template>",
		Short: MsgShowShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}

			eng, err := a.engine(false)
			if err != nil {
				return err
			}

			def, err := eng.GetTemplate(args[0])
			if err != nil {
				return err
			}

			if a.format.IsMachine() {
				return a.printJSON(def)
			}
			fmt.Fprintln(a.out, a.renderer().RenderTemplateDetail(def))
			return nil
		},
	}
}
