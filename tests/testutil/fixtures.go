package testutil

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
)

// Fixtures produces deterministic request payloads for API tests. A fixed
// seed keeps failures reproducible.
type Fixtures struct {
	faker *gofakeit.Faker
}

// NewFixtures returns a generator seeded with seed
func NewFixtures(seed uint64) *Fixtures {
	return &Fixtures{faker: gofakeit.New(seed)}
}

var tileSizes = []string{"1x1", "1x2", "2x2", "2x4", "4x4"}

// Customer returns a body accepted by POST /customers
func (f *Fixtures) Customer() map[string]any {
	addr := f.faker.Address()
	return map[string]any{
		"name":    f.faker.Name(),
		"phone":   f.faker.Numerify("9#########"),
		"address": fmt.Sprintf("%s, %s", addr.Street, addr.City),
	}
}

// TileSize picks one of the sizes the shop stocks
func (f *Fixtures) TileSize() string {
	return tileSizes[f.faker.IntN(len(tileSizes))]
}

// LineItem returns a single invoice line for the given size
func (f *Fixtures) LineItem(size string) map[string]any {
	return map[string]any{
		"location":      f.faker.RandomString([]string{"Hall", "Kitchen", "Bedroom", "Bathroom", "Balcony"}),
		"tile_name":     f.faker.Color() + " " + f.faker.RandomString([]string{"Matt", "Gloss", "Rustic"}),
		"size":          size,
		"box_qty":       f.faker.IntRange(1, 12),
		"coverage":      16,
		"rate_per_sqft": f.faker.IntRange(30, 120),
	}
}
