package coltype

import lru "github.com/hashicorp/golang-lru/v2"

// typeCacheSize bounds memory held by previously-parsed type strings. A
// single session rarely sees more than a few hundred distinct column
// types across its lifetime, so this is generous headroom rather than a
// tuned limit.
const typeCacheSize = 4096

var typeCache = newCache()

func newCache() *lru.ARCCache[string, *Type] {
	c, err := lru.NewARC[string, *Type](typeCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which is a
		// programmer error in the constant above, not a runtime condition.
		panic(err)
	}
	return c
}
