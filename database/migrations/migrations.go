package migrations

import (
	"embed"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/net/context"
)

//go:embed *.sql
var files embed.FS

// Up applies every *.up.sql file in name order. Statements are idempotent.
func Up(ctx context.Context, db *sqlx.DB) error {
	entries, err := files.ReadDir(".")
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		stmt, err := files.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(stmt)); err != nil {
			return err
		}
	}

	return nil
}
