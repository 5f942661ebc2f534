package matcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// supportedExtensions is the fixed allow-list of image file extensions,
// matched case-insensitively.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".gif":  true,
}

// SupportedExtension reports whether the filename carries an extension from
// the allow-list.
func SupportedExtension(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// listCandidates returns the regular files with supported extensions in dir,
// in directory-listing order. Entries skipped here never touch any counter.
// The order is whatever the platform returns and is not guaranteed stable.
func listCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list dataset folder: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !SupportedExtension(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// writeCopy writes the candidate's full byte content to the output directory
// under its original filename, silently overwriting any existing file.
func writeCopy(outputDir, name string, data []byte) error {
	dst := filepath.Join(outputDir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to copy to %s: %w", dst, err)
	}
	return nil
}
