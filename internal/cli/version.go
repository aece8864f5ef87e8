package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/stencil/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}

			if a.format.IsMachine() {
				return a.printJSON(map[string]string{
					"version": version.Version,
					"commit":  version.Commit,
					"date":    version.Date,
				})
			}

			fmt.Fprintf(a.out, MsgVersionFormat, version.Version)
			if version.Commit != "unknown" {
				fmt.Fprintf(a.out, MsgCommitFormat, version.Commit)
			}
			if version.Date != "unknown" {
				fmt.Fprintf(a.out, MsgBuiltFormat, version.Date)
			}
			return nil
		},
	}
}
