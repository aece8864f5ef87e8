// Package types defines the core types shared across stencil.
// This includes the template domain model (TemplateDefinition, VariableSpec,
// FileMapping, HookSpec) and the FS interface that abstracts filesystem
// access for the loader, generator, and file-operation layers.
package types
