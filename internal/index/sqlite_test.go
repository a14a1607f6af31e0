package index

import (
	"database/sql"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"romcat/pkg/models"
)

func TestExport(t *testing.T) {
	Convey("Export", t, func() {
		path := filepath.Join(t.TempDir(), "index.sqlite")
		catalogs := map[string]*models.Catalog{
			"snes": {
				Platform: "snes",
				Games: map[string]*models.GameEntry{
					"Foo": {
						Attributes: map[string]string{"name": "Foo"},
						Fields:     map[string]string{"year": "1992"},
						Parts: map[string]map[string]models.Part{
							"roms": {
								"foo.sfc": {"type": "rom", "name": "foo.sfc", "size": "1048576", "crc": "deadbeef"},
							},
							"releases": {
								"Foo": {"type": "release", "name": "Foo", "region": "USA"},
							},
						},
					},
				},
			},
		}

		So(Export(path, catalogs), ShouldBeNil)
		// A second export replaces the file instead of failing on the schema.
		So(Export(path, catalogs), ShouldBeNil)

		db, err := sql.Open("sqlite3", path)
		So(err, ShouldBeNil)
		defer db.Close()

		var year string
		So(db.QueryRow(`SELECT year FROM games WHERE platform = ? AND name = ?`, "snes", "Foo").Scan(&year), ShouldBeNil)
		So(year, ShouldEqual, "1992")

		var game string
		var size int64
		So(db.QueryRow(`SELECT game, size FROM parts WHERE crc = ?`, "deadbeef").Scan(&game, &size), ShouldBeNil)
		So(game, ShouldEqual, "Foo")
		So(size, ShouldEqual, int64(1048576))

		var count int
		So(db.QueryRow(`SELECT COUNT(*) FROM parts`).Scan(&count), ShouldBeNil)
		So(count, ShouldEqual, 2)
	})
}
