package pg

import (
	"io/fs"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

// Migrate applies goose migrations. When dir is empty the embedded set
// passed in fsys is used instead of the filesystem.
func Migrate(cfg Config, fsys fs.FS, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "goose dialect")
	}

	db, err := newSqlConnection(cfg)
	if err != nil {
		return errors.Wrap(err, "open postgres")
	}
	defer db.Close()

	if dir == "" {
		goose.SetBaseFS(fsys)
		dir = "."
	} else {
		goose.SetBaseFS(nil)
	}

	if err = goose.Up(db, dir); err != nil {
		return errors.Wrap(err, "goose up")
	}
	return nil
}
