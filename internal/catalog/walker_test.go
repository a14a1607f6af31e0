package catalog

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"romcat/internal/utils"
	"romcat/pkg/models"
)

const snesDAT = `<?xml version="1.0"?>
<!DOCTYPE datafile PUBLIC "-//Logiqx//DTD ROM Management Datafile//EN" "http://www.logiqx.com/dtds/datafile.dtd">
<datafile>
	<header>
		<name>Nintendo - Super Nintendo Entertainment System</name>
		<description>SNES set</description>
		<version>20240101</version>
		<clrmamepro forcenodump="required"/>
	</header>
	<game name="Foo">
		<rom name="foo.sfc" size="1048576"/>
	</game>
</datafile>
`

const mameDAT = `<?xml version="1.0" encoding="UTF-8"?>
<mame build="0.250">
	<machine name="pacman" sourcefile="pacman.cpp" cloneof="puckman">
		<description>Pac-Man (Midway)</description>
		<year>1980</year>
		<manufacturer>Namco (Midway license)</manufacturer>
		<biosset name="default" description="default"/>
		<rom name="pacman.6e" size="4096" crc="c1e6ab10" sha1="e87e059c5be45753f7e9f33dff851f16d6751181"/>
		<rom name="pacman.6f" size="4096" crc="1a6fb2d4"/>
		<device_ref name="z80"/>
		<sample name="fire"/>
		<driver status="good"/>
		<sound channels="1"/>
	</machine>
	<machine name="z80" isdevice="yes">
		<description>Zilog Z80</description>
	</machine>
</mame>
`

func parse(doc string) (*models.Catalog, error) {
	return ParseCatalog(strings.NewReader(doc), "test.dat", "test", utils.DiscardReporter())
}

func TestParseCatalog(t *testing.T) {
	Convey("ParseCatalog", t, func() {
		Convey("parses a single game with one rom", func() {
			cat, err := ParseCatalog(strings.NewReader(snesDAT), "[dat-snes].dat", "snes", utils.DiscardReporter())
			So(err, ShouldBeNil)
			So(cat.Platform, ShouldEqual, "snes")
			So(cat.Games, ShouldHaveLength, 1)

			foo := cat.Games["Foo"]
			So(foo, ShouldNotBeNil)
			So(foo.Name(), ShouldEqual, "Foo")
			So(foo.Roms(), ShouldResemble, map[string]models.Part{
				"foo.sfc": {"type": "rom", "name": "foo.sfc", "size": "1048576"},
			})
		})

		Convey("keeps every header child", func() {
			cat, err := parse(snesDAT)
			So(err, ShouldBeNil)
			So(cat.Header, ShouldResemble, map[string]string{
				"name":        "Nintendo - Super Nintendo Entertainment System",
				"description": "SNES set",
				"version":     "20240101",
				"clrmamepro":  "",
			})
		})

		Convey("falls back to machine elements", func() {
			cat, err := parse(mameDAT)
			So(err, ShouldBeNil)
			So(cat.Games, ShouldHaveLength, 2)

			pacman := cat.Games["pacman"]
			So(pacman.Attributes, ShouldResemble, map[string]string{
				"name": "pacman", "sourcefile": "pacman.cpp", "cloneof": "puckman",
			})
			So(pacman.Fields["description"], ShouldEqual, "Pac-Man (Midway)")
			So(pacman.Fields["year"], ShouldEqual, "1980")
			So(pacman.Roms(), ShouldHaveLength, 2)
			So(pacman.Roms()["pacman.6e"]["crc"], ShouldEqual, "c1e6ab10")
			So(pacman.Parts["biossets"]["default"]["type"], ShouldEqual, "biosset")
			So(pacman.Parts["device_refs"], ShouldContainKey, "z80")
			So(pacman.Parts["samples"], ShouldContainKey, "fire")
		})

		Convey("stores a text-less status attribute under <tag>status", func() {
			cat, err := parse(mameDAT)
			So(err, ShouldBeNil)
			fields := cat.Games["pacman"].Fields
			So(fields["driverstatus"], ShouldEqual, "good")
			So(fields, ShouldNotContainKey, "driver")
			So(fields, ShouldNotContainKey, "sound")
		})

		Convey("collects observed attribute keys and child tags", func() {
			cat, err := parse(mameDAT)
			So(err, ShouldBeNil)
			So(cat.ObservedAttributeKeys, ShouldResemble, []string{"cloneof", "isdevice", "name", "sourcefile"})
			So(cat.ObservedChildTags, ShouldResemble, []string{
				"biosset", "description", "device_ref", "driver", "manufacturer", "rom", "sample", "sound", "year",
			})
		})

		Convey("returns an empty catalog when there are no entries", func() {
			cat, err := parse(`<datafile><header><description>empty</description></header></datafile>`)
			So(err, ShouldBeNil)
			So(cat.Games, ShouldBeEmpty)
			So(cat.Header["description"], ShouldEqual, "empty")
		})

		Convey("fails the whole document when a part has no name", func() {
			_, err := parse(`<datafile>
				<game name="Ok"><rom name="ok.bin"/></game>
				<game name="Bad"><rom size="12"/></game>
			</datafile>`)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrSchemaViolation), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Bad")
		})

		Convey("drops entries without a name and says so", func() {
			var buf bytes.Buffer
			cat, err := ParseCatalog(strings.NewReader(`<datafile>
				<game><description>anonymous</description></game>
				<game name="Named"/>
			</datafile>`), "test.dat", "test", log.New(&buf, "", 0))
			So(err, ShouldBeNil)
			So(cat.Games, ShouldHaveLength, 1)
			So(cat.Games, ShouldContainKey, "Named")
			So(buf.String(), ShouldContainSubstring, "missing name")
		})

		Convey("lets a later duplicate replace the earlier entry", func() {
			var buf bytes.Buffer
			cat, err := ParseCatalog(strings.NewReader(`<datafile>
				<game name="Dup"><year>1990</year></game>
				<game name="Dup"><year>1991</year></game>
			</datafile>`), "test.dat", "test", log.New(&buf, "", 0))
			So(err, ShouldBeNil)
			So(cat.Games, ShouldHaveLength, 1)
			So(cat.Games["Dup"].Fields["year"], ShouldEqual, "1991")
			So(buf.String(), ShouldContainSubstring, `Duplicate game "Dup"`)
		})

		Convey("is deterministic", func() {
			first, err := parse(mameDAT)
			So(err, ShouldBeNil)
			second, err := parse(mameDAT)
			So(err, ShouldBeNil)
			So(second, ShouldResemble, first)
		})

		Convey("decodes latin-1 documents", func() {
			doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><datafile><game name=\"Caf\xe9\"/></datafile>"
			cat, err := parse(doc)
			So(err, ShouldBeNil)
			So(cat.Games, ShouldContainKey, "Café")
		})

		Convey("decodes windows-1252 punctuation", func() {
			doc := "<?xml version=\"1.0\" encoding=\"windows-1252\"?><datafile><game name=\"Tetris\x99 \x93Deluxe\x94\"/></datafile>"
			cat, err := parse(doc)
			So(err, ShouldBeNil)
			So(cat.Games, ShouldContainKey, "Tetris\u2122 \u201cDeluxe\u201d")
		})

		Convey("decodes other declared single-byte charsets", func() {
			doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-15\"?><datafile><game name=\"Price \xa4\"/></datafile>"
			cat, err := parse(doc)
			So(err, ShouldBeNil)
			So(cat.Games, ShouldContainKey, "Price \u20ac")
		})

		Convey("accepts a part whose name attribute is empty", func() {
			cat, err := parse(`<datafile><game name="Blank"><rom name="" size="1"/></game></datafile>`)
			So(err, ShouldBeNil)
			So(cat.Games["Blank"].Roms(), ShouldContainKey, "")
		})

		Convey("rejects malformed XML", func() {
			_, err := parse(`<datafile><game name="x">`)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestLoadCatalogs(t *testing.T) {
	Convey("LoadCatalogs keeps going past a broken file", t, func() {
		dir := t.TempDir()
		good := filepath.Join(dir, "[dat-snes].dat")
		bad := filepath.Join(dir, "[dat-nes].dat")
		So(os.WriteFile(good, []byte(snesDAT), 0644), ShouldBeNil)
		So(os.WriteFile(bad, []byte(`<datafile><game name="x"><disk/></game></datafile>`), 0644), ShouldBeNil)

		var buf bytes.Buffer
		catalogs := LoadCatalogs(map[string]string{
			"snes":    good,
			"nes":     bad,
			"missing": filepath.Join(dir, "nope.dat"),
		}, log.New(&buf, "", 0))

		So(catalogs, ShouldHaveLength, 1)
		So(catalogs["snes"].Games, ShouldContainKey, "Foo")
		So(buf.String(), ShouldContainSubstring, "Error parsing "+bad)
		So(buf.String(), ShouldContainSubstring, "nope.dat")
	})
}
