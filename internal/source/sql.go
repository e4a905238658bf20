package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens the SQLite database at path for reading entries.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return db, nil
}

// SQLSource reads entries from a query. Result columns are matched by name: loc is required,
// priority, changefreq and lastmod are optional. A NULL priority suppresses the element.
type SQLSource struct {
	DB    *sql.DB
	Query string
	Args  []any
}

func (s SQLSource) Each(ctx context.Context, yield func(Entry) error) error {
	rows, err := s.DB.QueryContext(ctx, s.Query, s.Args...)
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("read columns: %w", err)
	}

	var (
		loc        sql.NullString
		priority   sql.NullFloat64
		changeFreq sql.NullString
		lastMod    sql.NullString
		ignored    any
	)
	dest := make([]any, len(columns))
	hasLoc, hasPriority := false, false
	for i, name := range columns {
		switch strings.ToLower(name) {
		case "loc":
			dest[i] = &loc
			hasLoc = true
		case "priority":
			dest[i] = &priority
			hasPriority = true
		case "changefreq":
			dest[i] = &changeFreq
		case "lastmod":
			dest[i] = &lastMod
		default:
			dest[i] = &ignored
		}
	}
	if !hasLoc {
		return fmt.Errorf("query entries: result has no loc column")
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scan entry: %w", err)
		}
		if !loc.Valid || loc.String == "" {
			continue
		}
		entry := Entry{Loc: loc.String, ChangeFreq: changeFreq.String, LastMod: lastMod.String}
		if hasPriority {
			if priority.Valid {
				p := priority.Float64
				entry.Priority = &p
			} else {
				entry.OmitPriority = true
			}
		}
		if err := yield(entry); err != nil {
			return err
		}
	}
	return rows.Err()
}
