package inventory

import (
	"fmt"
	"sync"

	"romcat/internal/listing"
	"romcat/internal/metadata"
	"romcat/internal/scanner"
	"romcat/internal/utils"
	"romcat/pkg/models"
)

/*
Engine keeps the archive inventory document in step with the disk.
 1. Initialize() - load the saved inventory
 2. PerformFullScan() - rebuild it from every archive under the locations
 3. HandleEvent() - rescan or drop one archive as it changes
*/
type Engine struct {
	locations   []string
	extensions  []string
	lister      listing.Lister
	metadata    *metadata.Manager
	reporter    utils.Reporter
	inventories map[string]*models.ArchiveInventory
	mu          sync.Mutex
}

func NewEngine(locations, extensions []string, lister listing.Lister, manager *metadata.Manager, reporter utils.Reporter) *Engine {
	return &Engine{
		locations:   locations,
		extensions:  extensions,
		lister:      lister,
		metadata:    manager,
		reporter:    reporter,
		inventories: make(map[string]*models.ArchiveInventory),
	}
}

func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	inventories, err := e.metadata.LoadInventories()
	if err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}
	e.inventories = inventories
	return nil
}

// PerformFullScan replaces the inventory with a fresh scan of all locations.
func (e *Engine) PerformFullScan() error {
	archives := scanner.FindArchives(e.locations, e.extensions, e.reporter)
	e.reporter.Printf("Found %d archives", len(archives))

	inventories := listing.ScanArchives(e.lister, archives, e.reporter)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inventories = inventories
	return e.metadata.SaveInventories(e.inventories)
}

func (e *Engine) HandleEvent(event models.FileEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch event.Operation {
	case "CREATE", "MODIFY", "SCAN":
		inv, err := listing.ScanArchive(e.lister, event.Path, e.reporter)
		if err != nil {
			e.reporter.Printf("Skipping %s: %v", event.Path, err)
			delete(e.inventories, event.Path)
		} else {
			e.inventories[event.Path] = inv
			e.reporter.Printf("Updated %s (%d files)", event.Path, len(inv.Files))
		}
	case "DELETE":
		if _, ok := e.inventories[event.Path]; !ok {
			return nil
		}
		delete(e.inventories, event.Path)
		e.reporter.Printf("Removed %s", event.Path)
	default:
		return nil
	}

	return e.metadata.SaveInventories(e.inventories)
}

// Inventories returns a copy of the current inventory map.
func (e *Engine) Inventories() map[string]*models.ArchiveInventory {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]*models.ArchiveInventory, len(e.inventories))
	for k, v := range e.inventories {
		out[k] = v
	}
	return out
}
