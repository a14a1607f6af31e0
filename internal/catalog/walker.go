package catalog

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/net/html/charset"

	"romcat/internal/utils"
	"romcat/pkg/models"
)

// ErrSchemaViolation aborts ingestion of a whole DAT file.
var ErrSchemaViolation = errors.New("catalog schema violation")

// partTags maps part-like child tags to the collection they are gathered in.
var partTags = map[string]string{
	"rom":        "roms",
	"release":    "releases",
	"device_ref": "device_refs",
	"sample":     "samples",
	"biosset":    "biossets",
	"disk":       "disks",
}

type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []element  `xml:",any"`
}

func (e *element) tag() string {
	return e.XMLName.Local
}

func (e *element) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *element) childrenNamed(tag string) []element {
	var out []element
	for _, c := range e.Children {
		if c.tag() == tag {
			out = append(out, c)
		}
	}
	return out
}

// walker accumulates schema observations over one document.
type walker struct {
	source    string
	reporter  utils.Reporter
	attrKeys  map[string]struct{}
	childTags map[string]struct{}
}

// ParseCatalog reads one DAT document. Entries are taken from <game>
// elements, or from <machine> elements when there are no games.
func ParseCatalog(r io.Reader, sourcePath, platform string, reporter utils.Reporter) (*models.Catalog, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var root element
	if err := decoder.Decode(&root); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", sourcePath, err)
	}

	cat := &models.Catalog{
		SourcePath: sourcePath,
		Platform:   platform,
		Header:     make(map[string]string),
		Games:      make(map[string]*models.GameEntry),
	}

	for _, header := range root.childrenNamed("header") {
		for _, c := range header.Children {
			cat.Header[c.tag()] = strings.TrimSpace(c.Text)
		}
	}

	kind := "game"
	entries := root.childrenNamed(kind)
	if len(entries) == 0 {
		kind = "machine"
		entries = root.childrenNamed(kind)
	}

	w := &walker{
		source:    sourcePath,
		reporter:  reporter,
		attrKeys:  make(map[string]struct{}),
		childTags: make(map[string]struct{}),
	}

	for i := range entries {
		game, err := w.walkEntry(&entries[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sourcePath, err)
		}

		name := game.Name()
		if name == "" {
			reporter.Printf("Skipping %s #%d in %s: missing name attribute", kind, i+1, sourcePath)
			continue
		}
		if _, exists := cat.Games[name]; exists {
			reporter.Printf("Duplicate %s %q in %s, later entry replaces the earlier one", kind, name, sourcePath)
		}
		cat.Games[name] = game
	}

	cat.ObservedAttributeKeys = sortedKeys(w.attrKeys)
	cat.ObservedChildTags = sortedKeys(w.childTags)
	return cat, nil
}

func (w *walker) walkEntry(el *element) (*models.GameEntry, error) {
	game := &models.GameEntry{
		Attributes: make(map[string]string, len(el.Attrs)),
		Fields:     make(map[string]string),
		Parts:      make(map[string]map[string]models.Part),
	}
	for _, a := range el.Attrs {
		game.Attributes[a.Name.Local] = a.Value
		w.attrKeys[a.Name.Local] = struct{}{}
	}

	for i := range el.Children {
		child := &el.Children[i]
		tag := child.tag()
		w.childTags[tag] = struct{}{}

		if collection, ok := partTags[tag]; ok {
			name, ok := child.attr("name")
			if !ok {
				return nil, fmt.Errorf("%w: <%s> in %q has no name attribute", ErrSchemaViolation, tag, game.Name())
			}

			part := make(models.Part, len(child.Attrs)+1)
			for _, a := range child.Attrs {
				part[a.Name.Local] = a.Value
			}
			part["type"] = tag

			if game.Parts[collection] == nil {
				game.Parts[collection] = make(map[string]models.Part)
			}
			if _, exists := game.Parts[collection][name]; exists {
				w.reporter.Printf("Duplicate %s %q in %q (%s)", tag, name, game.Name(), w.source)
			}
			game.Parts[collection][name] = part
			continue
		}

		if text := strings.TrimSpace(child.Text); text != "" {
			game.Fields[tag] = text
		} else if status, ok := child.attr("status"); ok {
			game.Fields[tag+"status"] = status
		}
	}

	return game, nil
}

// LoadCatalog parses the DAT file at path.
func LoadCatalog(path, platform string, reporter utils.Reporter) (*models.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ParseCatalog(bufio.NewReader(f), path, platform, reporter)
}

// LoadCatalogs parses every platform -> path entry in platform order. A file
// that fails is logged and left out of the result.
func LoadCatalogs(files map[string]string, reporter utils.Reporter) map[string]*models.Catalog {
	catalogs := make(map[string]*models.Catalog, len(files))

	platforms := make([]string, 0, len(files))
	for platform := range files {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)

	for _, platform := range platforms {
		path := files[platform]
		reporter.Printf("Processing %s...", path)

		cat, err := LoadCatalog(path, platform, reporter)
		if err != nil {
			reporter.Printf("Error parsing %s: %v", path, err)
			continue
		}

		reporter.Printf("Parsed %d games from %s", len(cat.Games), path)
		catalogs[platform] = cat
	}
	return catalogs
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

