package algorithm

import (
	"reflect"

	"github.com/on-the-ground/physio_ive_go/cache"
)

// CacheHash derives the cache key of a: its Go type identity followed by the
// canonical form of its parameters, e.g.
//
//	github.com/on-the-ground/physio_ive_go/tools.Diff{degree:1}
func CacheHash(a Algorithm) cache.Key {
	return cache.NewKey(typeIdentity(a) + a.Params().String())
}

func typeIdentity(a Algorithm) string {
	t := reflect.TypeOf(a)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
