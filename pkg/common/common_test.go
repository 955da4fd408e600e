package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Corner Shop", "corner-shop"},
		{"  Corner   Shop  ", "corner-shop"},
		{"Café Crème", "cafe-creme"},
		{"Tom's Tools!", "toms-tools"},
		{"snake_case-name", "snake-case-name"},
		{"ABC 123", "abc-123"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestUniqueSlug(t *testing.T) {
	used := map[string]bool{"shop": true, "shop-1": true}
	slug, err := UniqueSlug("shop", func(s string) (bool, error) { return used[s], nil })
	require.NoError(t, err)
	assert.Equal(t, "shop-2", slug)

	slug, err = UniqueSlug("fresh", func(s string) (bool, error) { return used[s], nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", slug)
}

func TestUUIDint64Ordered(t *testing.T) {
	a := UUIDint64()
	b := UUIDint64()
	assert.Less(t, a, b)
}

func TestUniqueInt64s(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, UniqueInt64s([]int64{3, 1, 3, 2, 1}))
}
