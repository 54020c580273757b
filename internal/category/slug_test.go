package category_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/dairydock/catalog-service/internal/category"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases", in: "Milk", want: "milk"},
		{name: "whitespace to hyphens", in: "Flavoured  Milk", want: "flavoured-milk"},
		{name: "strips punctuation", in: "Ghee & Butter!", want: "ghee-and-butter"},
		{name: "trims edges", in: "  Paneer  ", want: "paneer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(category.Slugify(tt.in), qt.Equals, tt.want)
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	c := qt.New(t)

	once := category.Slugify("Full Cream Milk")
	c.Assert(category.Slugify(once), qt.Equals, once)
}
