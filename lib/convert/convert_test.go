package convert

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDefaults(t *testing.T) {
	r := NewRegistry()

	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"String", "Rand", "Rand"},
		{"Bytes", []byte("raw"), "raw"},
		{"Bool", true, "true"},
		{"Int", 42, "42"},
		{"Int64", int64(-7), "-7"},
		{"Uint32", uint32(7), "7"},
		{"Float64", 2.5, "2.5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Convert(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}
}

func TestRegistryTime(t *testing.T) {
	r := NewRegistry()

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	got, err := r.Convert(ts)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T12:00:00Z", string(got))
}

func TestRegistryUnregisteredType(t *testing.T) {
	type dummy struct{}
	r := NewRegistry()

	_, err := r.Convert(dummy{})
	require.Error(t, err)

	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Contains(t, convErr.Error(), "no converter registered")
	assert.False(t, r.CanConvert(dummy{}))
}

func TestRegistryCustomConverter(t *testing.T) {
	type dummy struct{ name string }
	r := NewRegistry()

	r.Register(dummy{}, func(v any) ([]byte, error) {
		return []byte(v.(dummy).name), nil
	})

	got, err := r.Convert(dummy{name: "custom"})
	require.NoError(t, err)
	assert.Equal(t, "custom", string(got))
	assert.True(t, r.CanConvert(dummy{}))
}
