package category

import (
	"github.com/gosimple/slug"
)

// Slugify derives the URL-safe identifier for a category name: lowercase,
// whitespace collapsed to hyphens, everything else stripped. Idempotent, so
// renames can re-derive without drift.
func Slugify(name string) string {
	return slug.Make(name)
}
