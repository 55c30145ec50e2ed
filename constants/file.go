package constants

import "strings"

// ImportExtensions holds the file extensions the drop-directory watcher
// accepts as bulk import documents.
var ImportExtensions = map[string]struct{}{
	"json": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
