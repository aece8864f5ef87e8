package cli

import (
	"fmt"
	"path"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/stencil/pkg/backup"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/fileops"
	"github.com/arthur-debert/stencil/pkg/filesystem"
	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/arthur-debert/stencil/pkg/types"
)

func newInitCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "init <name>",
		Short: MsgInitShort,
		Long:  MsgInitLong,
		Args:  cobra.ExactArgs(1),
		Example: `  # Scaffold a template called service
  stencil init service --description "A service skeleton"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			return runInit(a, args[0], description)
		},
	}

	cmd.Flags().StringVar(&description, "description", "", FlagDescription)

	return cmd
}

// runInit scaffolds a template directory under the templates root. The
// writes go through the file operations manager, so the scaffolding is
// validated and backed up like any other mutation.
func runInit(a *app, name, description string) error {
	if err := paths.ValidateTemplateName(name); err != nil {
		return err
	}

	fsys := filesystem.NewOS()

	if _, err := fsys.Stat(path.Join(a.cfg.TemplatesRoot, name)); err == nil {
		return errors.Newf(errors.ErrInvalidInput, "template %q already exists", name)
	}

	validator, err := paths.NewValidator(a.cfg.TemplatesRoot)
	if err != nil {
		return err
	}
	backups, err := backup.NewManager(fsys, a.cfg.Backups.Dir)
	if err != nil {
		return err
	}
	ops := fileops.NewManager(fsys, validator, backups)

	manifest, err := manifestSkeleton(name, description)
	if err != nil {
		return err
	}

	files := []struct {
		path string
		data []byte
	}{
		{path.Join(name, paths.ManifestName), manifest},
		{path.Join(name, "README.md.tmpl"), readmeSkeleton(name)},
	}

	var created []string
	for _, f := range files {
		if res := ops.Write(f.path, f.data, fileops.OpOptions{}); !res.Success {
			return res.Err
		}
		created = append(created, f.path)
	}

	if a.format.IsMachine() {
		return a.printJSON(map[string]interface{}{
			"template": name,
			"created":  created,
		})
	}

	fmt.Fprintf(a.out, MsgInitCreatedFormat, name)
	for _, f := range created {
		fmt.Fprintf(a.out, MsgCreatedItem, f)
	}
	return nil
}

// manifestSkeleton builds the starter manifest, pretty-printed with a
// two space indent.
func manifestSkeleton(name, description string) ([]byte, error) {
	def := &types.TemplateDefinition{
		Name:        name,
		Version:     "0.1.0",
		Description: description,
		Variables: []types.VariableSpec{
			{
				Name:        "projectName",
				Type:        types.VarString,
				Description: "Name of the generated project",
				Required:    true,
			},
		},
		Files: []types.FileMapping{
			{Source: "README.md.tmpl", Target: "README.md"},
		},
	}

	data, err := oj.Marshal(def, 2)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode manifest skeleton")
	}
	return append(data, '\n'), nil
}

func readmeSkeleton(name string) []byte {
	return []byte(fmt.Sprintf(`# {{projectName}}

Generated from the %s template.
`, name))
}
