package cache

import (
	"fmt"
	"reflect"

	"kvcache/internal/models"
)

// validateValue rejects opaque values that cannot safely round-trip through a
// storage backend. Allowed are nil, booleans, strings, numbers, and plain
// containers of such. The check is shallow: only the top-level value is
// inspected, nested containers are not recursed into. Deep validation would
// defeat the purpose of a cheap save path; callers nesting an opaque value
// inside a container get whatever the backend's serialization does to it.
func validateValue(value interface{}) error {
	if value == nil {
		return nil
	}

	switch reflect.TypeOf(value).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Map, reflect.Slice, reflect.Array:
		return nil
	}

	return models.NewArgumentError(fmt.Sprintf("%T", value), "cannot cache value of unsupported type")
}
