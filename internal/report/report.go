package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"romcat/internal/scanner"
	"romcat/internal/utils"
	"romcat/pkg/models"
)

// DirectorySummary aggregates the archives found in one directory.
type DirectorySummary struct {
	Dir         string
	Archives    int
	Files       int
	TotalSize   uint64
	AverageSize uint64
}

// SummarizeDirectories groups inventories by directory, sorted by name.
// AverageSize is the mean listed size per archive.
func SummarizeDirectories(inventories map[string]*models.ArchiveInventory) []DirectorySummary {
	groups := scanner.GroupByDirectory(inventories)

	summaries := make([]DirectorySummary, 0, len(groups))
	for dir, invs := range groups {
		s := DirectorySummary{Dir: dir, Archives: len(invs)}
		for _, inv := range invs {
			s.Files += len(inv.Files)
			s.TotalSize += inv.TotalSize()
		}
		if s.Archives > 0 {
			s.AverageSize = s.TotalSize / uint64(s.Archives)
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Dir < summaries[j].Dir
	})
	return summaries
}

func PrintDirectorySummaries(w io.Writer, summaries []DirectorySummary) {
	fmt.Fprintln(w, "Archives by directory:")
	fmt.Fprintln(w, "======================")
	var archives int
	var total uint64
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\n  archives: %d  files: %d  total: %s  average: %s\n",
			s.Dir, s.Archives, s.Files, utils.FormatSize(s.TotalSize), utils.FormatSize(s.AverageSize))
		archives += s.Archives
		total += s.TotalSize
	}
	fmt.Fprintf(w, "\nSummary: %d archives in %d directories, %s\n", archives, len(summaries), utils.FormatSize(total))
}

func PrintCatalogSummary(w io.Writer, cat *models.Catalog) {
	var roms int
	for _, game := range cat.Games {
		roms += len(game.Roms())
	}

	fmt.Fprintf(w, "[%s] %s\n", cat.Platform, cat.SourcePath)
	if desc := cat.Header["description"]; desc != "" {
		fmt.Fprintf(w, "  description: %s\n", desc)
	}
	if version := cat.Header["version"]; version != "" {
		fmt.Fprintf(w, "  version: %s\n", version)
	}
	fmt.Fprintf(w, "  games: %d  roms: %d\n", len(cat.Games), roms)
	fmt.Fprintf(w, "  attributes: %s\n", strings.Join(cat.ObservedAttributeKeys, ", "))
	fmt.Fprintf(w, "  child tags: %s\n", strings.Join(cat.ObservedChildTags, ", "))
}

func PrintChecksumSummary(w io.Writer, reports map[string]*models.ChecksumReport) {
	paths := make([]string, 0, len(reports))
	for path := range reports {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		var total uint64
		for _, f := range reports[path].Files {
			total += uint64(f.Size)
		}
		fmt.Fprintf(w, "%-10s %6d files  %s\n", utils.FormatSize(total), len(reports[path].Files), path)
	}
	fmt.Fprintf(w, "\nSummary: %d archives verified\n", len(reports))
}
