package utils

import (
	"crypto/sha1"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"
)

const (
	AlgoCRC32 = "crc32"
	AlgoSHA1  = "sha1"
)

func newHasher(algo string) (hash.Hash, error) {
	switch algo {
	case AlgoCRC32:
		return crc32.NewIEEE(), nil
	case AlgoSHA1:
		return sha1.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", algo)
	}
}

// CalculateFileHash returns the lowercase hex digest of the file's contents.
// A CRC32 digest is the big-endian checksum, eight hex characters.
func CalculateFileHash(filePath, algo string) (string, error) {
	hasher, err := newHasher(algo)
	if err != nil {
		return "", err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to calculate %s for %s: %w", algo, filePath, err)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
