package style

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/stencil/pkg/backup"
	"github.com/arthur-debert/stencil/pkg/generate"
	"github.com/arthur-debert/stencil/pkg/hooks"
	"github.com/arthur-debert/stencil/pkg/types"
	"github.com/arthur-debert/stencil/pkg/ui"
)

// Renderer turns result structs into human-readable output.
type Renderer interface {
	RenderTemplateList(tpls []*types.TemplateSummary) string
	RenderTemplateDetail(def *types.TemplateDefinition) string
	RenderValidation(name string, v *types.TemplateValidation) string
	RenderGenerateResult(res *generate.Result) string
	RenderBackupList(recs []*backup.Record) string
	RenderHookResults(results []hooks.Result) string
	RenderError(err error) string
}

// NewRenderer picks the renderer for a resolved output format. JSON is
// not handled here; commands marshal result structs themselves.
func NewRenderer(format ui.Format) Renderer {
	if format == ui.FormatTerminal {
		return NewTerminalRenderer()
	}
	return NewPlainRenderer()
}

// PhaseStyle returns the pterm style used to badge a hook phase.
func PhaseStyle(phase types.HookPhase) *pterm.Style {
	switch phase {
	case types.PhasePreGenerate:
		return pterm.NewStyle(pterm.FgCyan)
	case types.PhasePostGenerate:
		return pterm.NewStyle(pterm.FgGreen)
	case types.PhasePreFile, types.PhasePostFile:
		return pterm.NewStyle(pterm.FgYellow)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// TerminalRenderer implements Renderer with rich terminal output
type TerminalRenderer struct{}

// NewTerminalRenderer creates a new terminal renderer
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{}
}

// RenderTemplateList renders the template listing
func (r *TerminalRenderer) RenderTemplateList(tpls []*types.TemplateSummary) string {
	if len(tpls) == 0 {
		return MutedStyle.Render("No templates found")
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Templates") + "\n\n")

	for _, t := range tpls {
		indicator := InfoIndicator
		if !t.Valid {
			indicator = ErrorIndicator
		}
		line := fmt.Sprintf("%s %s %s", indicator, TemplateStyle.Render(t.Name), MutedStyle.Render("v"+t.Version))
		if !t.Valid {
			line += " " + ErrorStyle.Render("(invalid)")
		}
		b.WriteString(line + "\n")

		if t.Description != "" {
			b.WriteString(Indent(NormalStyle.Render(t.Description), 1) + "\n")
		}
		if len(t.Tags) > 0 {
			b.WriteString(Indent(MutedStyle.Render(strings.Join(t.Tags, ", ")), 1) + "\n")
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderTemplateDetail renders one template's full manifest view
func (r *TerminalRenderer) RenderTemplateDetail(def *types.TemplateDefinition) string {
	var b strings.Builder

	b.WriteString(TemplateStyle.Render(def.Name) + " " + MutedStyle.Render("v"+def.Version) + "\n")
	if def.Description != "" {
		b.WriteString(NormalStyle.Render(def.Description) + "\n")
	}

	var meta []string
	if def.Author != "" {
		meta = append(meta, "author: "+def.Author)
	}
	if def.License != "" {
		meta = append(meta, "license: "+def.License)
	}
	if len(def.Tags) > 0 {
		meta = append(meta, "tags: "+strings.Join(def.Tags, ", "))
	}
	if len(meta) > 0 {
		b.WriteString(MutedStyle.Render(strings.Join(meta, "  ")) + "\n")
	}

	if len(def.Variables) > 0 {
		b.WriteString("\n" + SubtitleStyle.Render("Variables") + "\n")
		for i := range def.Variables {
			b.WriteString(r.renderVariable(&def.Variables[i]) + "\n")
		}
	}

	if len(def.Files) > 0 {
		b.WriteString("\n" + SubtitleStyle.Render("Files") + "\n")
		for i := range def.Files {
			b.WriteString(r.renderMapping(&def.Files[i]) + "\n")
		}
	}

	if len(def.Hooks) > 0 {
		b.WriteString("\n" + SubtitleStyle.Render("Hooks") + "\n")
		for _, h := range def.Hooks {
			line := fmt.Sprintf("  %s %s", PhaseStyle(h.Phase).Sprint(string(h.Phase)), CodeStyle.Render(h.Command))
			if h.ContinueOnError {
				line += " " + MutedStyle.Render("(continue on error)")
			}
			b.WriteString(line + "\n")
		}
	}

	if len(def.Dependencies) > 0 {
		b.WriteString("\n" + SubtitleStyle.Render("Dependencies") + "\n")
		for _, d := range def.Dependencies {
			b.WriteString("  " + NormalStyle.Render(d) + "\n")
		}
	}

	if def.Validation != nil && len(def.Validation.Warnings) > 0 {
		b.WriteString("\n" + SubtitleStyle.Render("Warnings") + "\n")
		for _, w := range def.Validation.Warnings {
			b.WriteString(fmt.Sprintf("  %s %s\n", WarningIndicator, w))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func (r *TerminalRenderer) renderVariable(v *types.VariableSpec) string {
	var attrs []string
	attrs = append(attrs, string(v.Type))
	if v.Required {
		attrs = append(attrs, "required")
	}
	if v.HasDefault() {
		attrs = append(attrs, fmt.Sprintf("default: %v", v.Default))
	}
	if len(v.Enum) > 0 {
		opts := make([]string, len(v.Enum))
		for i, e := range v.Enum {
			opts[i] = fmt.Sprintf("%v", e)
		}
		attrs = append(attrs, "one of: "+strings.Join(opts, "|"))
	}

	line := fmt.Sprintf("  %s %s", VariableStyle.Render(v.Name), MutedStyle.Render("("+strings.Join(attrs, ", ")+")"))
	if v.Description != "" {
		line += " " + NormalStyle.Render(v.Description)
	}
	return line
}

func (r *TerminalRenderer) renderMapping(m *types.FileMapping) string {
	line := fmt.Sprintf("  %s → %s", PathStyle.Render(m.Source), PathStyle.Render(m.Target))
	var notes []string
	if m.Recursive {
		notes = append(notes, "recursive")
	}
	if !m.ShouldTransform() {
		notes = append(notes, "verbatim")
	}
	if m.Condition != "" {
		notes = append(notes, "if "+m.Condition)
	}
	if m.Permissions != "" {
		notes = append(notes, m.Permissions)
	}
	if len(notes) > 0 {
		line += " " + MutedStyle.Render("("+strings.Join(notes, ", ")+")")
	}
	return line
}

// RenderValidation renders a template's self-validation outcome
func (r *TerminalRenderer) RenderValidation(name string, v *types.TemplateValidation) string {
	var b strings.Builder

	if v == nil || v.Valid() {
		b.WriteString(fmt.Sprintf("%s %s is valid", SuccessIndicator, TemplateStyle.Render(name)))
	} else {
		b.WriteString(fmt.Sprintf("%s %s is invalid", ErrorIndicator, TemplateStyle.Render(name)))
		for _, e := range v.Errors {
			b.WriteString("\n" + Indent(fmt.Sprintf("%s %s", ErrorIndicator, e), 1))
		}
	}

	if v != nil {
		for _, w := range v.Warnings {
			b.WriteString("\n" + Indent(fmt.Sprintf("%s %s", WarningIndicator, w), 1))
		}
	}

	return b.String()
}

// RenderGenerateResult renders the outcome of one generation run
func (r *TerminalRenderer) RenderGenerateResult(res *generate.Result) string {
	var b strings.Builder

	header := fmt.Sprintf("%s %s", TemplateStyle.Render(res.TemplateName), MutedStyle.Render("v"+res.Version))
	if res.DryRun {
		header += " " + WarningStyle.Render("(dry run)")
	}
	b.WriteString(header + "\n")
	b.WriteString(MutedStyle.Render("destination: ") + PathStyle.Render(res.Destination) + "\n")

	if len(res.Generated) > 0 {
		b.WriteString("\n")
		for _, f := range res.Generated {
			b.WriteString(fmt.Sprintf("%s %s\n", SuccessIndicator, f))
		}
	}
	for _, f := range res.Skipped {
		b.WriteString(fmt.Sprintf("%s %s %s\n", PendingIndicator, MutedStyle.Render(f), MutedStyle.Render("(skipped)")))
	}

	if len(res.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range res.Warnings {
			b.WriteString(fmt.Sprintf("%s %s\n", WarningIndicator, WarningStyle.Render(w)))
		}
	}

	if len(res.HookResults) > 0 {
		sum := hooks.Summarize(res.HookResults)
		line := fmt.Sprintf("hooks: %d ran, %d succeeded", sum.Total, sum.Succeeded)
		if sum.Failed > 0 {
			line = fmt.Sprintf("hooks: %d ran, %s", sum.Total, ErrorStyle.Render(fmt.Sprintf("%d failed", sum.Failed)))
		}
		b.WriteString("\n" + HookStyle.Render(line) + "\n")
	}

	var status string
	if res.Success {
		status = fmt.Sprintf("%s %d generated, %d skipped in %s",
			SuccessIndicator, len(res.Generated), len(res.Skipped), res.Duration.Round(time.Millisecond))
	} else {
		status = fmt.Sprintf("%s generation failed", ErrorIndicator)
	}
	b.WriteString("\n" + status)

	return b.String()
}

// RenderBackupList renders the backup records, newest first order preserved
func (r *TerminalRenderer) RenderBackupList(recs []*backup.Record) string {
	if len(recs) == 0 {
		return MutedStyle.Render("No backups found")
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Backups") + "\n\n")

	for _, rec := range recs {
		state := "existed"
		if !rec.Existed {
			state = "new path"
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			InfoIndicator,
			BackupStyle.Render(rec.ID),
			MutedStyle.Render(rec.CreatedAt.Format("2006-01-02 15:04:05"))))
		b.WriteString(Indent(fmt.Sprintf("%s %s %s",
			CodeStyle.Render(string(rec.Operation)),
			PathStyle.Render(rec.Path),
			MutedStyle.Render("("+state+")")), 1) + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderHookResults renders per-hook outcomes
func (r *TerminalRenderer) RenderHookResults(results []hooks.Result) string {
	if len(results) == 0 {
		return MutedStyle.Render("No hooks ran")
	}

	var b strings.Builder
	for _, res := range results {
		indicator := SuccessIndicator
		if !res.Success {
			indicator = ErrorIndicator
		}
		line := fmt.Sprintf("%s %s %s %s",
			indicator,
			PhaseStyle(res.Phase).Sprint(string(res.Phase)),
			CodeStyle.Render(res.Command),
			MutedStyle.Render(res.Duration.Round(time.Millisecond).String()))
		if res.TimedOut {
			line += " " + ErrorStyle.Render("(timed out)")
		} else if !res.Success {
			line += " " + ErrorStyle.Render(fmt.Sprintf("(exit %d)", res.ExitCode))
		}
		b.WriteString(line + "\n")

		if !res.Success && res.Stderr != "" {
			b.WriteString(Indent(MutedStyle.Render(strings.TrimSpace(res.Stderr)), 1) + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderError renders an error message. StencilError messages already
// carry their code, so nothing is re-added here.
func (r *TerminalRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s %s", pterm.Error.Prefix.Text, pterm.Error.MessageStyle.Sprint(err.Error()))
}

// PlainRenderer implements Renderer with plain text output (no styling)
type PlainRenderer struct{}

// NewPlainRenderer creates a new plain text renderer
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// RenderTemplateList renders a plain template listing
func (r *PlainRenderer) RenderTemplateList(tpls []*types.TemplateSummary) string {
	if len(tpls) == 0 {
		return "No templates found"
	}

	var b strings.Builder
	b.WriteString("Templates:\n")
	for _, t := range tpls {
		line := fmt.Sprintf("  %s v%s", t.Name, t.Version)
		if !t.Valid {
			line += " (invalid)"
		}
		if t.Description != "" {
			line += " - " + t.Description
		}
		b.WriteString(line + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderTemplateDetail renders a plain manifest view
func (r *PlainRenderer) RenderTemplateDetail(def *types.TemplateDefinition) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s v%s\n", def.Name, def.Version))
	if def.Description != "" {
		b.WriteString(def.Description + "\n")
	}
	if def.Author != "" {
		b.WriteString("author: " + def.Author + "\n")
	}

	if len(def.Variables) > 0 {
		b.WriteString("variables:\n")
		for _, v := range def.Variables {
			line := fmt.Sprintf("  %s (%s", v.Name, v.Type)
			if v.Required {
				line += ", required"
			}
			if v.HasDefault() {
				line += fmt.Sprintf(", default: %v", v.Default)
			}
			line += ")"
			b.WriteString(line + "\n")
		}
	}

	if len(def.Files) > 0 {
		b.WriteString("files:\n")
		for _, m := range def.Files {
			b.WriteString(fmt.Sprintf("  %s -> %s\n", m.Source, m.Target))
		}
	}

	if len(def.Hooks) > 0 {
		b.WriteString("hooks:\n")
		for _, h := range def.Hooks {
			b.WriteString(fmt.Sprintf("  %s: %s\n", h.Phase, h.Command))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderValidation renders a plain validation outcome
func (r *PlainRenderer) RenderValidation(name string, v *types.TemplateValidation) string {
	var b strings.Builder

	if v == nil || v.Valid() {
		b.WriteString(fmt.Sprintf("template %s is valid", name))
	} else {
		b.WriteString(fmt.Sprintf("template %s is invalid", name))
		for _, e := range v.Errors {
			b.WriteString("\n  error: " + e)
		}
	}

	if v != nil {
		for _, w := range v.Warnings {
			b.WriteString("\n  warning: " + w)
		}
	}

	return b.String()
}

// RenderGenerateResult renders a plain generation outcome
func (r *PlainRenderer) RenderGenerateResult(res *generate.Result) string {
	var b strings.Builder

	header := fmt.Sprintf("%s v%s -> %s", res.TemplateName, res.Version, res.Destination)
	if res.DryRun {
		header += " (dry run)"
	}
	b.WriteString(header + "\n")

	for _, f := range res.Generated {
		b.WriteString("  generated: " + f + "\n")
	}
	for _, f := range res.Skipped {
		b.WriteString("  skipped: " + f + "\n")
	}
	for _, w := range res.Warnings {
		b.WriteString("  warning: " + w + "\n")
	}

	if res.Success {
		b.WriteString(fmt.Sprintf("%d generated, %d skipped in %s",
			len(res.Generated), len(res.Skipped), res.Duration.Round(time.Millisecond)))
	} else {
		b.WriteString("generation failed")
	}

	return b.String()
}

// RenderBackupList renders plain backup records
func (r *PlainRenderer) RenderBackupList(recs []*backup.Record) string {
	if len(recs) == 0 {
		return "No backups found"
	}

	var b strings.Builder
	for _, rec := range recs {
		b.WriteString(fmt.Sprintf("%s  %s  %s  %s\n",
			rec.ID,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.Operation,
			rec.Path))
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderHookResults renders plain per-hook outcomes
func (r *PlainRenderer) RenderHookResults(results []hooks.Result) string {
	if len(results) == 0 {
		return "No hooks ran"
	}

	var b strings.Builder
	for _, res := range results {
		status := "ok"
		if res.TimedOut {
			status = "timed out"
		} else if !res.Success {
			status = fmt.Sprintf("exit %d", res.ExitCode)
		}
		b.WriteString(fmt.Sprintf("%s: %s (%s)\n", res.Phase, res.Command, status))
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderError renders a plain error message
func (r *PlainRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", err.Error())
}
