// Package rowkey provides the tuple-wise key comparator used by the
// row-data differ (spec section 4.4 / C6) as an alternative to the generic
// underscore-joined string key (internal/catalogrow.KeyString).
//
// The string-joined key the generic differ uses is vulnerable to a
// collision: two different primary-key tuples can stringify to the same
// joined key if a value itself contains the "_" separator (spec section 9's
// closing note). Row data is the one category where primary keys are
// arbitrary user data rather than catalog-controlled identifiers, so it is
// the one category where that risk is worth paying for a real tuple
// comparator instead of accepting it.
package rowkey

import "github.com/oss-tools/pgdbcompare/internal/catalogrow"

// Compare orders two rows by their key columns, column by column, using
// each value's string form as the per-column comparator. It returns -1, 0,
// or 1 exactly as bytes.Compare / strings.Compare would, so callers can
// plug it directly into the same lock-step merge loop that the generic
// differ uses with its string keys.
func Compare(a, b catalogrow.Row, keyCols []string) int {
	for _, c := range keyCols {
		av := a.MustGet(c).String()
		bv := b.MustGet(c).String()
		if av == bv {
			continue
		}
		if av < bv {
			return -1
		}
		return 1
	}
	return 0
}

// Equal reports whether two rows carry the same key tuple.
func Equal(a, b catalogrow.Row, keyCols []string) bool {
	return Compare(a, b, keyCols) == 0
}
