package types

import "fmt"

// TemplateValidation accumulates the self-validation outcome of a
// manifest. Errors block caching and generation; warnings are advisory.
type TemplateValidation struct {
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Valid reports whether validation found zero errors.
func (v *TemplateValidation) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records a validation error.
func (v *TemplateValidation) AddError(msg string) {
	v.Errors = append(v.Errors, msg)
}

// AddErrorf records a formatted validation error.
func (v *TemplateValidation) AddErrorf(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// AddWarning records a validation warning.
func (v *TemplateValidation) AddWarning(msg string) {
	v.Warnings = append(v.Warnings, msg)
}

// AddWarningf records a formatted validation warning.
func (v *TemplateValidation) AddWarningf(format string, args ...interface{}) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
