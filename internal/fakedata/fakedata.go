// Package fakedata generates reproducible fake row content for row-data
// differ tests, standing in for the
// hand-typed literal fixtures most unit tests use. Grounded on the
// teacher's cmd/faker_test, which seeds go-faker/faker/v4's crypto source
// with a deterministic math/rand.Rand so UUID/text generation is
// reproducible across runs — this package reuses pkg/prng's deterministic
// reader for the same purpose instead of constructing a fresh
// math/rand.Rand inline at every call site.
package fakedata

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/go-faker/faker/v4"

	"github.com/oss-tools/pgdbcompare/internal/catalogrow"
	"github.com/oss-tools/pgdbcompare/pkg/prng"
)

// Seed sets faker's crypto source (the one its UUID generators read) to a
// deterministic reader for the given seed, mirroring cmd/faker_test's
// faker.SetCryptoSource(rand.New(rand.NewSource(seed))). Generator.Row
// reseeds faker per value, so its output does not depend on this call.
func Seed(seed int64) {
	faker.SetCryptoSource(prng.New(seed))
}

// Generator produces fake catalogrow.Row values for a fixed column/type
// shape, used to build varied source/target row pairs for row-data differ
// tests without hand-authoring every literal.
type Generator struct {
	cols  []string
	types map[string]string
}

// NewGenerator builds a Generator for a table with the given columns and
// per-column SQL types (the same shape internal/rowdiscovery.TableSpec
// carries), seeded deterministically.
func NewGenerator(seed int64, cols []string, types map[string]string) *Generator {
	Seed(seed)
	return &Generator{cols: cols, types: types}
}

// Row produces one fake row keyed by rowID, the same rowID producing the
// same row every time for a given seed — callers diffing two sides can
// call Row with matching rowIDs to get identical rows, then mutate one
// field to simulate an UPDATE.
func (g *Generator) Row(rowID int) catalogrow.Row {
	values := make([]catalogrow.Value, len(g.cols))
	for i, c := range g.cols {
		values[i] = g.value(rowID, i, g.types[c])
	}
	return catalogrow.NewRow(g.cols, values)
}

func (g *Generator) value(rowID, col int, sqlType string) catalogrow.Value {
	r := rand.New(rand.NewSource(int64(rowID)*1_000_003 + int64(col)))
	switch {
	case strings.HasPrefix(sqlType, "integer"), strings.HasPrefix(sqlType, "bigint"), strings.HasPrefix(sqlType, "smallint"):
		return catalogrow.FromAny(int64(r.Intn(1_000_000)))

	case strings.HasPrefix(sqlType, "numeric"), strings.HasPrefix(sqlType, "double"), strings.HasPrefix(sqlType, "real"):
		return catalogrow.FromAny(r.Float64() * 1_000)

	case strings.HasPrefix(sqlType, "boolean"):
		return catalogrow.FromAny(r.Intn(2) == 0)

	case strings.HasPrefix(sqlType, "timestamp"), strings.HasPrefix(sqlType, "date"):
		base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		return catalogrow.FromAny(base.Add(time.Duration(r.Intn(1_000_000)) * time.Minute))

	case strings.HasPrefix(sqlType, "uuid"):
		faker.SetCryptoSource(prng.New(r.Int63()))
		return catalogrow.FromAny(faker.UUIDHyphenated())

	default: // character varying, text, and anything else defaults to fake prose
		faker.SetRandomSource(rand.NewSource(r.Int63()))
		return catalogrow.FromAny(fmt.Sprintf("%s %d", faker.Name(), rowID))
	}
}
