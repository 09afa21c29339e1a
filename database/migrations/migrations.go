// Package migrations holds the schema migrations. Each file registers its
// migrations from init(); cmd/furnivision imports the package for effect.
package migrations
