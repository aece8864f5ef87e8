// Package docs embeds the help-topic markdown shipped inside the
// binary. The CLI mounts it into cobra's help system so `stencil help
// templates` works without any docs installed on disk.
package docs

import "embed"

//go:embed topics
var Content embed.FS
