package checksum

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Extractor unpacks every entry of an archive into targetDir.
type Extractor interface {
	Extract(archivePath, targetDir string) error
}

// ZipExtractor unpacks .zip files without any external tool.
type ZipExtractor struct{}

func (ZipExtractor) Extract(archivePath, targetDir string) error {
	zipReader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open zip file %s: %w", archivePath, err)
	}
	defer zipReader.Close()

	root := filepath.Clean(targetDir) + string(os.PathSeparator)
	for _, zf := range zipReader.File {
		dest := filepath.Join(targetDir, zf.Name)
		if !strings.HasPrefix(dest, root) {
			return fmt.Errorf("entry %q escapes the extraction directory", zf.Name)
		}

		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return err
			}
			continue
		}
		if err := extractZipFile(zf, dest); err != nil {
			return fmt.Errorf("failed to extract %s from %s: %w", zf.Name, archivePath, err)
		}
	}
	return nil
}

func extractZipFile(zf *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	src, err := zf.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// SevenZipExtractor shells out to the 7-Zip command line tool.
type SevenZipExtractor struct {
	Binary string
}

func (s SevenZipExtractor) Extract(archivePath, targetDir string) error {
	binary := s.Binary
	if binary == "" {
		binary = "7z"
	}

	var stderr bytes.Buffer
	cmd := exec.Command(binary, "x", "-y", "-o"+targetDir, archivePath)
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to extract %s: %w: %s", archivePath, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}

// AutoExtractor handles zip archives natively and hands everything else
// to 7-Zip.
type AutoExtractor struct {
	Zip      Extractor
	SevenZip Extractor
}

func NewAutoExtractor(sevenZipBinary string) *AutoExtractor {
	return &AutoExtractor{
		Zip:      ZipExtractor{},
		SevenZip: SevenZipExtractor{Binary: sevenZipBinary},
	}
}

func (a *AutoExtractor) Extract(archivePath, targetDir string) error {
	if strings.EqualFold(filepath.Ext(archivePath), ".zip") {
		return a.Zip.Extract(archivePath, targetDir)
	}
	return a.SevenZip.Extract(archivePath, targetDir)
}
