package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"romcat/internal/utils"
	"romcat/pkg/models"
)

const (
	CatalogsFile  = "catalogs.json"
	ArchivesFile  = "archives.json"
	ChecksumsFile = "checksums.json"
)

// ErrIncompatibleDocument is returned when a state document carries fields
// this version does not know about.
var ErrIncompatibleDocument = errors.New("incompatible state document")

// Manager reads and writes the three JSON state documents kept in one
// directory.
type Manager struct {
	statePath string
	mu        sync.Mutex
}

func NewManager(statePath string) *Manager {
	return &Manager{statePath: statePath}
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.statePath, name)
}

func (m *Manager) SaveCatalogs(catalogs map[string]*models.Catalog) error {
	return m.save(CatalogsFile, catalogs)
}

// LoadCatalogs returns an empty batch when no document has been written yet.
func (m *Manager) LoadCatalogs() (map[string]*models.Catalog, error) {
	catalogs := make(map[string]*models.Catalog)
	return catalogs, m.load(CatalogsFile, &catalogs)
}

func (m *Manager) SaveInventories(inventories map[string]*models.ArchiveInventory) error {
	return m.save(ArchivesFile, inventories)
}

func (m *Manager) LoadInventories() (map[string]*models.ArchiveInventory, error) {
	inventories := make(map[string]*models.ArchiveInventory)
	return inventories, m.load(ArchivesFile, &inventories)
}

func (m *Manager) SaveChecksums(reports map[string]*models.ChecksumReport) error {
	return m.save(ChecksumsFile, reports)
}

func (m *Manager) LoadChecksums() (map[string]*models.ChecksumReport, error) {
	reports := make(map[string]*models.ChecksumReport)
	return reports, m.load(ChecksumsFile, &reports)
}

func (m *Manager) load(name string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIncompatibleDocument, name, err)
	}
	return nil
}

func (m *Manager) save(name string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := utils.EnsureDirectoryExists(m.statePath); err != nil {
		return err
	}

	// Map keys are written in sorted order.
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	docPath := m.path(name)
	tempPath := docPath + ".tmp"

	// Write to temp file first
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}

	// Atomic rename
	return os.Rename(tempPath, docPath)
}
