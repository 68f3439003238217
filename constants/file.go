package constants

import "strings"

// AllowedExtensions holds the document extensions accepted for bulk upload.
var AllowedExtensions = map[string]struct{}{
	"docx": {},
	"doc":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedDocument reports whether the filename carries an accepted
// document extension.
func IsAllowedDocument(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	_, ok := AllowedExtensions[NormalizeExt(name[i:])]
	return ok
}
