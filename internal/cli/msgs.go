package cli

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort = "A template engine with a safety net"

	MsgGenerateShort       = "Generate files from a template"
	MsgPreviewShort        = "Show what a generation would do without writing anything"
	MsgListShort           = "List all available templates"
	MsgShowShort           = "Show a template's manifest in detail"
	MsgValidateShort       = "Validate a template's manifest"
	MsgInitShort           = "Scaffold a new template"
	MsgCacheShort          = "Manage the template definition cache"
	MsgCacheClearShort     = "Clear cached template definitions"
	MsgBackupsShort        = "Manage file backups taken before mutations"
	MsgBackupsListShort    = "List backup records, newest first"
	MsgBackupsRestoreShort = "Restore one or more backups by id"
	MsgBackupsCleanupShort = "Delete backups older than a cutoff"
	MsgVersionShort        = "Print version information"

	// Status messages
	MsgCacheCleared       = "Template cache cleared."
	MsgCacheClearedFormat = "Cleared %d cached template(s).\n"
	MsgRestoredFormat     = "Restored %d backup(s).\n"
	MsgCleanupFormat      = "Removed %d backup(s) older than %s.\n"
	MsgInitCreatedFormat  = "Created template %q with the following files:\n"
	MsgCreatedItem        = "  %s\n"

	// Version output
	MsgVersionFormat = "stencil version %s\n"
	MsgCommitFormat  = "  commit: %s\n"
	MsgBuiltFormat   = "  built:  %s\n"

	// Flag descriptions
	FlagVerbose       = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	FlagTemplatesRoot = "Override the templates root directory"
	FlagFormat        = "Output format: auto, term, text or json"
	FlagNoColor       = "Disable colored output"
	FlagDest          = "Destination directory for generated files"
	FlagVar           = "Bind a variable as key=value (repeatable)"
	FlagVarFile       = "Read variable bindings from a JSON, TOML or YAML file (repeatable)"
	FlagOverwrite     = "Generate into a destination that already exists"
	FlagDryRun        = "Compute the full plan without writing anything"
	FlagInteractive   = "Prompt for unbound variables on a terminal"
	FlagNoHooks       = "Skip all lifecycle hooks"
	FlagRestoreDelete = "Delete backup artifacts after a successful restore"
	FlagOlderThan     = "Age cutoff for cleanup, e.g. 720h (default: configured max age)"
	FlagDescription   = "Description recorded in the scaffolded manifest"
)

// Long messages
const (
	MsgRootLong = `stencil generates projects from templates: directories holding a
stencil.json (or stencil.yaml) manifest that declares variables, file
mappings, and lifecycle hooks.

Every file stencil writes is validated against the destination root,
backed up first, and rolled back if the write fails. Backups can be
listed and restored at any time with the backups command.`

	MsgGenerateLong = `Generate renders a template into a destination directory.

Variables are bound from --var-file files (in order, later files win),
then --var flags, then interactive prompts when --interactive is given
on a terminal. Declared defaults fill anything still unbound; missing
required variables abort before any file is written.`

	MsgPreviewLong = `Preview runs the full generation pipeline, including variable binding
and validation, but writes nothing. Lifecycle hooks still run with
STENCIL_DRY_RUN=true so scripts can decide to no-op.`

	MsgValidateLong = `Validate re-reads the manifest from disk, bypassing the cache, and
reports errors and warnings. Errors make a template unloadable for
generation; warnings are advisory.`

	MsgInitLong = `Init scaffolds a new template under the templates root: a stencil.json
manifest with one example variable and file mapping, plus a sample
README.md.tmpl showing placeholder syntax.`

	MsgBackupsRestoreLong = `Restore puts backed-up paths back exactly as recorded. Multiple ids are
restored in reverse argument order, so listing the ids of one failed
run in creation order undoes it newest-first.`
)

// MsgUsageTemplate renders cobra usage with bold section headers on a
// terminal. The bold helper is registered in formatting.go.
const MsgUsageTemplate = `{{bold "Usage:"}}{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

{{bold "Aliases:"}}
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

{{bold "Examples:"}}
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

{{bold "Available Commands:"}}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{bold "Flags:"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

{{bold "Global Flags:"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
