package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_VALUE", "  console ")
	require.Equal(t, "console", Get("STOREFRONT_TEST_VALUE", "json"))

	t.Setenv("STOREFRONT_TEST_VALUE", "   ")
	require.Equal(t, "json", Get("STOREFRONT_TEST_VALUE", "json"))
}

func TestDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{raw: "", want: 15 * time.Second},
		{raw: "3s", want: 3 * time.Second},
		{raw: "soon", want: 15 * time.Second},
		{raw: "-1s", want: 15 * time.Second},
	}
	for _, tc := range cases {
		t.Setenv("STOREFRONT_TEST_TIMEOUT", tc.raw)
		require.Equal(t, tc.want, Duration("STOREFRONT_TEST_TIMEOUT", 15*time.Second), tc.raw)
	}
}
