package models

import "time"

// Catalog is one parsed DAT file.
type Catalog struct {
	SourcePath            string                `json:"source_path"`
	Platform              string                `json:"platform"`
	Header                map[string]string     `json:"header"`
	Games                 map[string]*GameEntry `json:"games"`
	ObservedAttributeKeys []string              `json:"observed_attribute_keys"`
	ObservedChildTags     []string              `json:"observed_child_tags"`
}

// GameEntry holds one game or machine. Attribute and field sets differ
// between DAT providers, so everything is kept as string maps.
type GameEntry struct {
	Attributes map[string]string          `json:"attributes"`
	Fields     map[string]string          `json:"fields,omitempty"`
	Parts      map[string]map[string]Part `json:"parts,omitempty"` // "roms" -> rom name -> part
}

// Part is a named constituent of a game (rom, disk, sample...). It carries
// every attribute of the element plus "type" set to the element's tag.
type Part map[string]string

func (g *GameEntry) Name() string {
	return g.Attributes["name"]
}

// Roms is a shortcut for Parts["roms"].
func (g *GameEntry) Roms() map[string]Part {
	return g.Parts["roms"]
}

type ArchiveInventory struct {
	ArchivePath string                `json:"archive_path"`
	Files       map[string]FileRecord `json:"files"`
}

// TotalSize sums the listed uncompressed sizes. Rows without a size
// (directories) count as zero.
func (a *ArchiveInventory) TotalSize() uint64 {
	var total uint64
	for _, f := range a.Files {
		if f.Size != nil && *f.Size > 0 {
			total += uint64(*f.Size)
		}
	}
	return total
}

// FileRecord is one data row of an archive listing table. Blank columns
// are left unset.
type FileRecord struct {
	Date       string `json:"Date,omitempty"`
	Time       string `json:"Time,omitempty"`
	Attr       string `json:"Attr,omitempty"`
	Size       *int64 `json:"Size,omitempty"`
	Compressed *int64 `json:"Compressed,omitempty"`
	Name       string `json:"Name,omitempty"`
}

type ChecksumReport struct {
	ArchivePath string                  `json:"archive_path"`
	Files       map[string]FileChecksum `json:"files"`
}

type FileChecksum struct {
	Size  int64  `json:"size"`
	CRC32 string `json:"crc32"`
	SHA1  string `json:"sha1"`
}

type FileEvent struct {
	Path      string
	Operation string // CREATE, MODIFY, DELETE, SCAN
	Timestamp time.Time
}
