package indexer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// sidecarSuffixes are tried in order next to every ingested file
var sidecarSuffixes = []string{".meta.yml", ".meta.yaml", ".meta.json"}

// sidecar is the metadata a downloader leaves next to a fetched file
type sidecar struct {
	OriginalPath string `yaml:"originalPath" json:"originalPath"`
}

func isSidecar(name string) bool {
	for _, suffix := range sidecarSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// readSidecar returns the logical path recorded for file, or "" when none exists.
// JSON sidecars are decoded by the YAML parser since JSON is a YAML subset.
func readSidecar(file string) (string, error) {
	for _, suffix := range sidecarSuffixes {
		data, err := os.ReadFile(file + suffix)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}

		var meta sidecar
		if err := yaml.Unmarshal(data, &meta); err != nil {
			return "", fmt.Errorf("failed to parse %s: %w", filepath.Base(file+suffix), err)
		}
		return filepath.ToSlash(strings.TrimSpace(meta.OriginalPath)), nil
	}
	return "", nil
}
