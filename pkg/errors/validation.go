package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateOutputPath checks a path an output file is about to be written to.
// Paths may be absolute or relative but must not contain control characters
// and must not name a directory.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path %q names a directory", path)
	}
	return nil
}

// ValidateUploadName validates the file name of a diagram posted to the
// render server. It must be a plain base name with a .json, .yaml or .yml
// extension.
func ValidateUploadName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "file name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "file name cannot contain path separators")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "file name cannot contain path traversal sequences (..)")
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return nil
	}
	return New(ErrCodeInvalidInput, "unsupported diagram file type %q", filepath.Ext(name))
}
