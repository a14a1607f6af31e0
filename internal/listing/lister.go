package listing

import (
	"bytes"
	"fmt"
	"os/exec"

	"romcat/internal/utils"
	"romcat/pkg/models"
)

// Lister returns the raw table listing of an archive's contents.
type Lister interface {
	List(archivePath string) (string, error)
}

// SevenZipLister shells out to the 7-Zip command line tool.
type SevenZipLister struct {
	Binary string
}

func NewSevenZipLister(binary string) *SevenZipLister {
	if binary == "" {
		binary = "7z"
	}
	return &SevenZipLister{Binary: binary}
}

func (l *SevenZipLister) List(archivePath string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(l.Binary, "l", archivePath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to list %s: %w: %s", archivePath, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.String(), nil
}

// ScanArchive lists and parses a single archive.
func ScanArchive(lister Lister, archivePath string, reporter utils.Reporter) (*models.ArchiveInventory, error) {
	output, err := lister.List(archivePath)
	if err != nil {
		return nil, err
	}
	inv, err := ParseListing(archivePath, output, reporter)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing of %s: %w", archivePath, err)
	}
	return inv, nil
}

// ScanArchives builds an inventory per archive, in input order. Archives
// that cannot be listed or parsed are logged and left out.
func ScanArchives(lister Lister, archivePaths []string, reporter utils.Reporter) map[string]*models.ArchiveInventory {
	inventories := make(map[string]*models.ArchiveInventory, len(archivePaths))
	for i, path := range archivePaths {
		reporter.Printf("[%d/%d] Scanning %s...", i+1, len(archivePaths), path)

		inv, err := ScanArchive(lister, path, reporter)
		if err != nil {
			reporter.Printf("Skipping %s: %v", path, err)
			continue
		}
		inventories[path] = inv
	}
	return inventories
}
