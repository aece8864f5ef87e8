package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/stencil/pkg/backup"
)

func newBackupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: MsgBackupsShort,
	}

	cmd.AddCommand(newBackupsListCmd())
	cmd.AddCommand(newBackupsRestoreCmd())
	cmd.AddCommand(newBackupsCleanupCmd())

	return cmd
}

func newBackupsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: MsgBackupsListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}

			eng, err := a.engine(false)
			if err != nil {
				return err
			}

			records := eng.Backups().List()
			if a.format.IsMachine() {
				return a.printJSON(records)
			}
			fmt.Fprintln(a.out, a.renderer().RenderBackupList(records))
			return nil
		},
	}
}

func newBackupsRestoreCmd() *cobra.Command {
	var deleteAfter bool

	cmd := &cobra.Command{
		Use:   "restore <id>...",
		Short: MsgBackupsRestoreShort,
		Long:  MsgBackupsRestoreLong,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}

			eng, err := a.engine(false)
			if err != nil {
				return err
			}

			opts := backup.RestoreOptions{DeleteAfter: deleteAfter}
			if err := eng.Backups().RestoreMany(args, opts); err != nil {
				return err
			}

			if a.format.IsMachine() {
				return a.printJSON(map[string]interface{}{"restored": args})
			}
			fmt.Fprintf(a.out, MsgRestoredFormat, len(args))
			return nil
		},
	}

	cmd.Flags().BoolVar(&deleteAfter, "delete", false, FlagRestoreDelete)

	return cmd
}

func newBackupsCleanupCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: MsgBackupsCleanupShort,
		Args:  cobra.NoArgs,
		Example: `  # Remove backups older than 30 days
  stencil backups cleanup --older-than 720h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}

			eng, err := a.engine(false)
			if err != nil {
				return err
			}

			age := olderThan
			if age <= 0 {
				age = a.cfg.BackupMaxAge()
			}

			removed, err := eng.Backups().CleanupOlderThan(age)
			if err != nil {
				return err
			}

			if a.format.IsMachine() {
				return a.printJSON(map[string]interface{}{"removed": removed, "olderThan": age.String()})
			}
			fmt.Fprintf(a.out, MsgCleanupFormat, removed, age)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, FlagOlderThan)

	return cmd
}
