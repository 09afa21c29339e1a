// Package seeders fills an empty database with starter data. Seeders
// register themselves from init and run in registration order, each in its
// own transaction:
//
//	furnivision seed
package seeders

import (
	"fmt"
	"io"

	"gorm.io/gorm"
)

// Seeder inserts rows and reports how many it wrote. A seeder that finds its
// data already present writes nothing and returns 0.
type Seeder func(tx *gorm.DB) (int, error)

type named struct {
	name string
	run  Seeder
}

var registry []named

// Register adds s under name. Registering a name twice panics.
func Register(name string, s Seeder) {
	for _, n := range registry {
		if n.name == name {
			panic(fmt.Sprintf("seeders: %s registered twice", name))
		}
	}
	registry = append(registry, named{name: name, run: s})
}

// RunAll runs every seeder and prints one line each to out.
// The first failure rolls back that seeder and stops the run.
func RunAll(db *gorm.DB, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if len(registry) == 0 {
		fmt.Fprintln(out, "Nothing to seed.")
		return nil
	}

	for _, n := range registry {
		var rows int
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			rows, err = n.run(tx)
			return err
		})
		if err != nil {
			fmt.Fprintf(out, "  ✗ Seeding: %s\n", n.name)
			return fmt.Errorf("seeders: %s: %w", n.name, err)
		}
		if rows == 0 {
			fmt.Fprintf(out, "  - Skipped: %s (already seeded)\n", n.name)
			continue
		}
		fmt.Fprintf(out, "  ✅ Seeded:  %s (%d rows)\n", n.name, rows)
	}
	return nil
}
