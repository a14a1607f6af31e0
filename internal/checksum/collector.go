package checksum

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"romcat/internal/utils"
	"romcat/pkg/models"
)

// Collector extracts archives into scratch directories and hashes what
// comes out.
type Collector struct {
	extractor Extractor
	tempRoot  string
	reporter  utils.Reporter
}

// NewCollector creates scratch directories under tempRoot, or the system
// temp directory when tempRoot is empty.
func NewCollector(extractor Extractor, tempRoot string, reporter utils.Reporter) *Collector {
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	return &Collector{
		extractor: extractor,
		tempRoot:  tempRoot,
		reporter:  reporter,
	}
}

// Collect checksums every archive in order. Failed archives are logged and
// omitted.
func (c *Collector) Collect(archivePaths []string) map[string]*models.ChecksumReport {
	reports := make(map[string]*models.ChecksumReport, len(archivePaths))
	for i, path := range archivePaths {
		c.reporter.Printf("[%d/%d] Verifying %s...", i+1, len(archivePaths), path)

		report, err := c.CollectOne(path)
		if err != nil {
			c.reporter.Printf("Skipping %s: %v", path, err)
			continue
		}
		reports[path] = report
	}
	return reports
}

// CollectOne extracts one archive and hashes every regular file in it. The
// scratch directory is removed before returning.
func (c *Collector) CollectOne(archivePath string) (*models.ChecksumReport, error) {
	scratch, err := c.makeScratchDir()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			c.reporter.Printf("Warning: failed to remove %s: %v", scratch, err)
		}
	}()

	if err := c.extractor.Extract(archivePath, scratch); err != nil {
		return nil, err
	}

	report := &models.ChecksumReport{
		ArchivePath: archivePath,
		Files:       make(map[string]models.FileChecksum),
	}

	err = filepath.WalkDir(scratch, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		sum, err := checksumFile(path)
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(scratch, path)
		if err != nil {
			return err
		}
		report.Files[filepath.ToSlash(relPath)] = sum
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to checksum contents of %s: %w", archivePath, err)
	}

	return report, nil
}

func (c *Collector) makeScratchDir() (string, error) {
	if err := utils.EnsureDirectoryExists(c.tempRoot); err != nil {
		return "", fmt.Errorf("failed to prepare %s: %w", c.tempRoot, err)
	}
	dir := filepath.Join(c.tempRoot, "romcat-"+uuid.NewString())
	if err := os.Mkdir(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return dir, nil
}

func checksumFile(path string) (models.FileChecksum, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.FileChecksum{}, err
	}
	crc, err := utils.CalculateFileHash(path, utils.AlgoCRC32)
	if err != nil {
		return models.FileChecksum{}, err
	}
	sha, err := utils.CalculateFileHash(path, utils.AlgoSHA1)
	if err != nil {
		return models.FileChecksum{}, err
	}
	return models.FileChecksum{Size: info.Size(), CRC32: crc, SHA1: sha}, nil
}
