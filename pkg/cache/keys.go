package cache

import (
	"fmt"
	"reflect"
	"strings"
)

const (
	keySeparator   = ":"
	paramSeparator = "_"
	regionSep      = "::"
)

// Key derives the cache key for a resource operation as
// resource:operation:p1_p2_..._pN. Nil parameters are skipped and no trailing
// separator is ever emitted.
func Key(resource, operation string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(resource)
	b.WriteString(keySeparator)
	b.WriteString(operation)

	written := 0
	for _, param := range params {
		s, ok := canonical(param)
		if !ok {
			continue
		}
		if written == 0 {
			b.WriteString(keySeparator)
		} else {
			b.WriteString(paramSeparator)
		}
		b.WriteString(s)
		written++
	}
	return b.String()
}

// StorageKey namespaces a key under its region in the backend keyspace.
func StorageKey(region, key string) string {
	return region + regionSep + key
}

// RegionPattern matches every backend key stored under region.
func RegionPattern(region string) string {
	return region + regionSep + "*"
}

func canonical(param interface{}) (string, bool) {
	if param == nil {
		return "", false
	}
	v := reflect.ValueOf(param)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "", false
		}
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return s.String(), true
		}
		v = v.Elem()
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String(), true
	}
	return fmt.Sprintf("%v", v.Interface()), true
}
