package backup

import (
	"crypto/sha256"
	"fmt"
)

// checksum returns the digest of data in the "sha256:<hex>" form stored
// in backup records. Restores refuse to write a blob whose digest no
// longer matches its record.
func checksum(data []byte) string {
	return fmt.Sprintf("sha256:%x", sha256.Sum256(data))
}
