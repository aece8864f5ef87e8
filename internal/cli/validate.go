package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/stencil/pkg/errors"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <template>",
		Short: MsgValidateShort,
		Long:  MsgValidateLong,
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

			validation, err := eng.ValidateTemplate(args[0])
			if err != nil {
				return err
			}

			if a.format.IsMachine() {
				if err := a.printJSON(validation); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(a.out, a.renderer().RenderValidation(args[0], validation))
			}

			if validation != nil && !validation.Valid() {
				return errors.Newf(errors.ErrInvalidInput,
					"template %q has %d validation error(s)", args[0], len(validation.Errors))
			}
			return nil
		},
	}
}
