package types

// OpKind defines the kind of file system operation
type OpKind string

const (
	// OpRead reads file contents
	OpRead OpKind = "read"

	// OpWrite writes content to a file
	OpWrite OpKind = "write"

	// OpAppend appends content to a file
	OpAppend OpKind = "append"

	// OpDelete deletes a file or directory
	OpDelete OpKind = "delete"

	// OpMkdir creates a directory
	OpMkdir OpKind = "mkdir"

	// OpCopy copies a file
	OpCopy OpKind = "copy"

	// OpMove moves a file
	OpMove OpKind = "move"
)

// CreatesTarget reports whether the operation materializes its target
// path when it does not exist yet. Backups of such operations record
// the prior absence so a rollback knows to remove the created entry.
func (k OpKind) CreatesTarget() bool {
	switch k {
	case OpWrite, OpAppend, OpMkdir, OpCopy, OpMove:
		return true
	}
	return false
}
