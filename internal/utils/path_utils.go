package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/sablelang/sable/internal/config"
)

// IsSourceFile checks if a file has a recognized source extension
func IsSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// GetModuleDir returns the directory a source file's package lives in.
func GetModuleDir(filePath string) string {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return filepath.Dir(filePath)
	}
	return filepath.Dir(abs)
}

// OutputPath swaps the source extension for .c.
func OutputPath(filePath string) string {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(filePath, ext) {
			return strings.TrimSuffix(filePath, ext) + ".c"
		}
	}
	return filePath + ".c"
}

// HashSource fingerprints a source blob for cache comparisons.
func HashSource(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}
