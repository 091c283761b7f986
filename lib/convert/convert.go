package convert

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"time"
)

// ConverterFunc turns one domain value into its stored byte representation.
type ConverterFunc func(v any) ([]byte, error)

// ConversionError is returned when a value's type has no registered
// converter. It is a usage error of the data-access layer: the caller tried
// to index a value keydex does not know how to represent.
type ConversionError struct {
	Type reflect.Type
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("no converter registered for type %s", e.Type)
}

// Registry maps value types to their byte converters. A registry is an
// explicit collaborator of the index writer and the keyspace codec; there is
// no process-wide registry instance.
type Registry struct {
	mu         sync.RWMutex
	converters map[reflect.Type]ConverterFunc
}

// NewRegistry creates a registry pre-populated with converters for the
// common scalar types (strings, byte slices, booleans, all integer widths,
// floats and time.Time).
func NewRegistry() *Registry {
	r := &Registry{converters: map[reflect.Type]ConverterFunc{}}

	r.Register("", func(v any) ([]byte, error) {
		return []byte(v.(string)), nil
	})
	r.Register([]byte(nil), func(v any) ([]byte, error) {
		return v.([]byte), nil
	})
	r.Register(false, func(v any) ([]byte, error) {
		return []byte(strconv.FormatBool(v.(bool))), nil
	})
	r.Register(float64(0), func(v any) ([]byte, error) {
		return []byte(strconv.FormatFloat(v.(float64), 'f', -1, 64)), nil
	})
	r.Register(float32(0), func(v any) ([]byte, error) {
		return []byte(strconv.FormatFloat(float64(v.(float32)), 'f', -1, 32)), nil
	})
	r.Register(time.Time{}, func(v any) ([]byte, error) {
		return []byte(v.(time.Time).UTC().Format(time.RFC3339Nano)), nil
	})

	registerInts(r)

	return r
}

// Register adds a converter for the type of the given example value,
// replacing any previous converter for that type. Safe for concurrent use.
func (r *Registry) Register(example any, fn ConverterFunc) {
	r.mu.Lock()
	r.converters[reflect.TypeOf(example)] = fn
	r.mu.Unlock()
}

// Convert returns the byte representation of v, or a *ConversionError if no
// converter is registered for v's type.
func (r *Registry) Convert(v any) ([]byte, error) {
	t := reflect.TypeOf(v)

	r.mu.RLock()
	fn, ok := r.converters[t]
	r.mu.RUnlock()

	if !ok {
		return nil, &ConversionError{Type: t}
	}
	return fn(v)
}

// CanConvert reports whether a converter is registered for v's type.
func (r *Registry) CanConvert(v any) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.converters[reflect.TypeOf(v)]
	return ok
}

func registerInts(r *Registry) {
	r.Register(int(0), func(v any) ([]byte, error) {
		return []byte(strconv.FormatInt(int64(v.(int)), 10)), nil
	})
	r.Register(int8(0), func(v any) ([]byte, error) {
		return []byte(strconv.FormatInt(int64(v.(int8)), 10)), nil
	})
	r.Register(int16(0), func(v any) ([]byte, error) {
		return []byte(strconv.FormatInt(int64(v.(int16)), 10)), nil
	})
	r.Register(int32(0), func(v any) ([]byte, error) {
		return []byte(strconv.FormatInt(int64(v.(int32)), 10)), nil
	})
	r.Register(int64(0), func(v any) ([]byte, error) {
		return []byte(strconv.FormatInt(v.(int64), 10)), nil
	})
	r.Register(uint(0), func(v any) ([]byte, error) {
		return []byte(strconv.FormatUint(uint64(v.(uint)), 10)), nil
	})
	r.Register(uint8(0), func(v any) ([]byte, error) {
		return []byte(strconv.FormatUint(uint64(v.(uint8)), 10)), nil
	})
	r.Register(uint16(0), func(v any) ([]byte, error) {
		return []byte(strconv.FormatUint(uint64(v.(uint16)), 10)), nil
	})
	r.Register(uint32(0), func(v any) ([]byte, error) {
		return []byte(strconv.FormatUint(uint64(v.(uint32)), 10)), nil
	})
	r.Register(uint64(0), func(v any) ([]byte, error) {
		return []byte(strconv.FormatUint(v.(uint64), 10)), nil
	})
}
