package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: MsgCacheShort,
	}

	cmd.AddCommand(newCacheClearCmd())

	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [templates...]",
		Short: MsgCacheClearShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}

			eng, err := a.engine(false)
			if err != nil {
				return err
			}

			eng.ClearCache(args...)

			if a.format.IsMachine() {
				return a.printJSON(map[string]interface{}{"cleared": true, "templates": args})
			}
			if len(args) > 0 {
				fmt.Fprintf(a.out, MsgCacheClearedFormat, len(args))
			} else {
				fmt.Fprintln(a.out, MsgCacheCleared)
			}
			return nil
		},
	}
}
