package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"romcat/internal/catalog"
	"romcat/internal/checksum"
	"romcat/internal/index"
	"romcat/internal/inventory"
	"romcat/internal/listing"
	"romcat/internal/metadata"
	"romcat/internal/report"
	"romcat/internal/scanner"
	"romcat/internal/watcher"
)

var (
	datsPath    string
	locations   []string
	extensions  []string
	statePath   string
	indexPath   string
	sevenZip    string
	refreshRate int
	listMode    bool
	scanMode    bool
	verifyMode  bool
	matchMode   bool
	watchMode   bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "romcat",
		Short: "Inventory ROM catalogs and archive collections",
		Long:  "Builds an inventory of DAT catalogs and of the archives found on disk, and checksums archive contents",
		RunE:  runApp,
	}

	rootCmd.Flags().StringVar(&datsPath, "dats", ".", "Directory holding [dat-<platform>]*.dat files")
	rootCmd.Flags().StringSliceVar(&locations, "locations", []string{"."}, "Directories to search for archives")
	rootCmd.Flags().StringSliceVar(&extensions, "ext", scanner.DefaultExtensions, "Archive extensions to look for")
	rootCmd.Flags().StringVar(&statePath, "state", ".", "Directory for the JSON state documents")
	rootCmd.Flags().StringVar(&indexPath, "index", "", "Also write the catalogs to this sqlite file (list mode only)")
	rootCmd.Flags().StringVar(&sevenZip, "seven-zip", "7z", "7-Zip command line binary")
	rootCmd.Flags().IntVar(&refreshRate, "refresh", 3600, "Full rescan interval in seconds (watch mode only)")
	rootCmd.Flags().BoolVar(&listMode, "list", false, "Parse DAT catalogs")
	rootCmd.Flags().BoolVar(&scanMode, "scan", false, "List the contents of every archive")
	rootCmd.Flags().BoolVar(&verifyMode, "verify", false, "Extract scanned archives and checksum their contents")
	rootCmd.Flags().BoolVar(&matchMode, "match", false, "Cross-reference archives against catalogs")
	rootCmd.Flags().BoolVar(&watchMode, "watch", false, "Scan archives, then keep the inventory updated as files change")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runApp(cmd *cobra.Command, args []string) error {
	modeCount := 0
	for _, on := range []bool{listMode, scanMode, verifyMode, matchMode, watchMode} {
		if on {
			modeCount++
		}
	}

	if modeCount == 0 {
		printUsageExamples()
		return fmt.Errorf("you must specify one operation mode")
	}
	if modeCount > 1 {
		printUsageExamples()
		return fmt.Errorf("only one operation mode can be specified at a time")
	}

	cmd.SilenceUsage = true
	manager := metadata.NewManager(statePath)

	switch {
	case listMode:
		return listCatalogs(manager)
	case scanMode:
		return scanArchives(manager)
	case verifyMode:
		return verifyArchives(manager)
	case matchMode:
		log.Println("Cross-referencing archives against catalogs is not implemented")
		return nil
	default:
		return watchArchives(manager)
	}
}

func printUsageExamples() {
	fmt.Fprintf(os.Stderr, `
Usage Examples:
===============

1. Parse the DAT files in the current directory:
   %s --list --index catalogs.sqlite

2. Scan archive collections:
   %s --scan --locations /roms/SNES,/roms/NES

3. Checksum the contents of scanned archives:
   %s --verify

4. Keep the archive inventory updated:
   %s --watch --locations /roms --refresh 600

`, os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func listCatalogs(manager *metadata.Manager) error {
	files, err := scanner.FindCatalogFiles(datsPath)
	if err != nil {
		return err
	}
	log.Printf("Found %d DAT files", len(files))

	catalogs := catalog.LoadCatalogs(files, log.Default())
	if err := manager.SaveCatalogs(catalogs); err != nil {
		return fmt.Errorf("failed to save catalogs: %w", err)
	}

	platforms := make([]string, 0, len(catalogs))
	for platform := range catalogs {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)
	for _, platform := range platforms {
		report.PrintCatalogSummary(os.Stdout, catalogs[platform])
	}

	if indexPath != "" {
		if err := index.Export(indexPath, catalogs); err != nil {
			return fmt.Errorf("failed to write index: %w", err)
		}
		log.Printf("Wrote catalog index to %s", indexPath)
	}
	return nil
}

func newEngine(manager *metadata.Manager) *inventory.Engine {
	return inventory.NewEngine(locations, extensions, listing.NewSevenZipLister(sevenZip), manager, log.Default())
}

func scanArchives(manager *metadata.Manager) error {
	engine := newEngine(manager)
	if err := engine.PerformFullScan(); err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	report.PrintDirectorySummaries(os.Stdout, report.SummarizeDirectories(engine.Inventories()))
	return nil
}

func verifyArchives(manager *metadata.Manager) error {
	inventories, err := manager.LoadInventories()
	if err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}
	if len(inventories) == 0 {
		return fmt.Errorf("no scanned archives in %s, run --scan first", statePath)
	}

	paths := make([]string, 0, len(inventories))
	for path := range inventories {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	collector := checksum.NewCollector(checksum.NewAutoExtractor(sevenZip), "", log.Default())
	reports := collector.Collect(paths)
	if err := manager.SaveChecksums(reports); err != nil {
		return fmt.Errorf("failed to save checksums: %w", err)
	}

	report.PrintChecksumSummary(os.Stdout, reports)
	return nil
}

func watchArchives(manager *metadata.Manager) error {
	log.Printf("Starting archive watch...")
	log.Printf("Locations: %v", locations)
	log.Printf("Refresh rate: %d seconds", refreshRate)

	engine := newEngine(manager)
	if err := engine.Initialize(); err != nil {
		return err
	}

	w, err := watcher.NewWatcher(extensions)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	for _, location := range locations {
		if err := w.AddWatch(location); err != nil {
			return fmt.Errorf("failed to add watch path: %w", err)
		}
	}
	w.Start()

	log.Println("Performing initial scan...")
	if err := engine.PerformFullScan(); err != nil {
		log.Printf("Warning: initial scan failed: %v", err)
	}

	refreshTicker := time.NewTicker(time.Duration(refreshRate) * time.Second)
	defer refreshTicker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Println("Watching for archive changes. Press Ctrl+C to stop.")

	for {
		select {
		case <-sigChan:
			log.Println("Shutdown signal received...")
			return nil

		case event := <-w.Changes():
			if err := engine.HandleEvent(event); err != nil {
				log.Printf("Error handling %s: %v", event.Path, err)
			}

		case err := <-w.Errors():
			log.Printf("Watcher error: %v", err)

		case <-refreshTicker.C:
			log.Println("Performing periodic full scan...")
			if err := engine.PerformFullScan(); err != nil {
				log.Printf("Periodic scan failed: %v", err)
			}
		}
	}
}
