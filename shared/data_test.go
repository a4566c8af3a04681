package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunks(t *testing.T) {
	require.Nil(t, Chunks([]int{}, 2))
	require.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Chunks([]int{1, 2, 3, 4, 5}, 2))
	require.Equal(t, [][]int{{1, 2, 3}}, Chunks([]int{1, 2, 3}, 10))
}

func TestUsageRowDisplayHelpers(t *testing.T) {
	row := UsageRow{AppName: "YouTube"}
	require.Equal(t, "YouTube", row.DisplayName())
	require.Equal(t, DefaultCategory, row.EffectiveCategory())

	row.Alias = "YT"
	row.Category = "Entertainment"
	require.Equal(t, "YT", row.DisplayName())
	require.Equal(t, "Entertainment", row.EffectiveCategory())
}
