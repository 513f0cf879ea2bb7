package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OpenTofu uses its own file extensions that terraform and tflint refuse to
// read. Before running the tools we rename such files to their canonical
// Terraform equivalents, and keep a reverse mapping so the renames never show
// up in user-visible output.
const renamePrefix = "modified_"

var tofuExtensions = map[string]string{
	".tofu":     ".tf",
	".tofuvars": ".tfvars",
}

// findTofuFiles lists OpenTofu files directly inside dir (non-recursive).
func findTofuFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := tofuExtensions[filepath.Ext(e.Name())]; ok {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// NormalizeTofuFiles renames OpenTofu files in dir to their Terraform
// extensions and returns the reverse mapping (renamed name → original name)
// for later rectification. The mapping is empty and the directory untouched
// when no OpenTofu files exist, so a second pass over an already-normalized
// directory is a no-op.
func NormalizeTofuFiles(dir string) (map[string]string, error) {
	names, err := findTofuFiles(dir)
	if err != nil {
		return nil, err
	}

	renames := make(map[string]string, len(names))
	for _, name := range names {
		ext := filepath.Ext(name)
		newName := renamePrefix + strings.TrimSuffix(name, ext) + tofuExtensions[ext]
		if err := os.Rename(filepath.Join(dir, name), filepath.Join(dir, newName)); err != nil {
			return nil, fmt.Errorf("rename %s: %w", name, err)
		}
		renames[newName] = name
	}
	return renames, nil
}
