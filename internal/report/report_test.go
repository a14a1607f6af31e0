package report

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"romcat/pkg/models"
)

func sized(path string, sizes ...int64) *models.ArchiveInventory {
	inv := &models.ArchiveInventory{ArchivePath: path, Files: make(map[string]models.FileRecord)}
	for i, size := range sizes {
		size := size
		name := path + string(rune('a'+i))
		inv.Files[name] = models.FileRecord{Name: name, Size: &size}
	}
	return inv
}

func TestSummarizeDirectories(t *testing.T) {
	Convey("SummarizeDirectories", t, func() {
		inventories := map[string]*models.ArchiveInventory{
			"SNES/a.7z": sized("SNES/a.7z", 100),
			"SNES/b.7z": sized("SNES/b.7z", 200, 100),
			"NES/c.zip": sized("NES/c.zip", 10),
		}
		// A directory row without a size counts as zero.
		inventories["NES/c.zip"].Files["dir"] = models.FileRecord{Name: "dir", Attr: "D...."}

		summaries := SummarizeDirectories(inventories)
		So(summaries, ShouldHaveLength, 2)
		So(summaries[0], ShouldResemble, DirectorySummary{Dir: "NES", Archives: 1, Files: 2, TotalSize: 10, AverageSize: 10})
		So(summaries[1], ShouldResemble, DirectorySummary{Dir: "SNES", Archives: 2, Files: 3, TotalSize: 400, AverageSize: 200})

		Convey("prints human-readable sizes", func() {
			var buf bytes.Buffer
			PrintDirectorySummaries(&buf, summaries)
			So(buf.String(), ShouldContainSubstring, "total: 400 B  average: 200 B")
			So(buf.String(), ShouldContainSubstring, "Summary: 3 archives in 2 directories, 410 B")
		})
	})
}

func TestPrintCatalogSummary(t *testing.T) {
	Convey("PrintCatalogSummary", t, func() {
		cat := &models.Catalog{
			SourcePath: "[dat-snes].dat",
			Platform:   "snes",
			Header:     map[string]string{"description": "SNES set"},
			Games: map[string]*models.GameEntry{
				"Foo": {
					Attributes: map[string]string{"name": "Foo"},
					Parts: map[string]map[string]models.Part{
						"roms": {"foo.sfc": {"type": "rom", "name": "foo.sfc"}},
					},
				},
			},
			ObservedAttributeKeys: []string{"name"},
			ObservedChildTags:     []string{"rom"},
		}

		var buf bytes.Buffer
		PrintCatalogSummary(&buf, cat)
		So(buf.String(), ShouldContainSubstring, "[snes] [dat-snes].dat")
		So(buf.String(), ShouldContainSubstring, "description: SNES set")
		So(buf.String(), ShouldContainSubstring, "games: 1  roms: 1")
		So(buf.String(), ShouldNotContainSubstring, "version:")
	})
}

func TestPrintChecksumSummary(t *testing.T) {
	Convey("PrintChecksumSummary", t, func() {
		var buf bytes.Buffer
		PrintChecksumSummary(&buf, map[string]*models.ChecksumReport{
			"a.zip": {ArchivePath: "a.zip", Files: map[string]models.FileChecksum{
				"a.txt": {Size: 12, CRC32: "00000000", SHA1: "x"},
			}},
		})
		So(buf.String(), ShouldContainSubstring, "1 files  a.zip")
		So(buf.String(), ShouldContainSubstring, "1 archives verified")
	})
}
