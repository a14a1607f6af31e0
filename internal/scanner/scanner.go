package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"romcat/internal/utils"
	"romcat/pkg/models"
)

var DefaultExtensions = []string{".7z", ".zip"}

var catalogPattern = regexp.MustCompile(`^\[dat-(?P<platform>.*)\].*\.dat$`)

// PlatformFromFilename returns the platform tag of a "[dat-<platform>]...dat"
// file name.
func PlatformFromFilename(name string) (string, bool) {
	match := catalogPattern.FindStringSubmatch(name)
	if match == nil {
		return "", false
	}
	return match[catalogPattern.SubexpIndex("platform")], true
}

// FindCatalogFiles lists dir (not recursively) for DAT files and maps each
// platform tag to its file. Files are visited in name order, so the last
// name wins when two files declare the same platform.
func FindCatalogFiles(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	files := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		platform, ok := PlatformFromFilename(entry.Name())
		if !ok {
			continue
		}
		files[platform] = filepath.Join(dir, entry.Name())
	}
	return files, nil
}

// FindArchives walks every location for files ending in one of exts. A
// location or subdirectory that cannot be read is logged and skipped.
func FindArchives(locations, exts []string, reporter utils.Reporter) []string {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var archives []string
	for _, location := range locations {
		filepath.WalkDir(location, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				reporter.Printf("Skipping %s: %v", path, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !d.IsDir() && utils.HasExtension(d.Name(), exts) {
				archives = append(archives, path)
			}
			return nil
		})
	}
	return archives
}

// GroupByDirectory buckets inventories by the directory holding the archive.
func GroupByDirectory(inventories map[string]*models.ArchiveInventory) map[string][]*models.ArchiveInventory {
	groups := make(map[string][]*models.ArchiveInventory)
	for path, inv := range inventories {
		dir := filepath.Dir(path)
		groups[dir] = append(groups[dir], inv)
	}
	return groups
}
