package airquality

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyDocumentedIndexes(t *testing.T) {
	expected := map[int]string{
		1: "Good (0-50)",
		2: "Moderate (51-100)",
		3: "Unhealthy for Sensitive Groups (101-150)",
		4: "Unhealthy (151-200)",
		5: "Very Unhealthy (201-300)",
	}
	for index, label := range expected {
		category := Classify(index)
		require.True(t, category.Known(), "index %d", index)
		require.Equal(t, label, category.Label())
	}
}

func TestClassifyOutOfRangeIsUnknown(t *testing.T) {
	for _, index := range []int{-1, 0, 6, 42} {
		category := Classify(index)
		require.Equal(t, CategoryUnknown, category)
		require.False(t, category.Known())
		require.Equal(t, "Unknown", category.Label())
	}
}

func TestParseCondition(t *testing.T) {
	c, ok := ParseCondition("")
	require.True(t, ok)
	require.Equal(t, ConditionNone, c)

	c, ok = ParseCondition("  asthma ")
	require.True(t, ok)
	require.Equal(t, ConditionAsthma, c)

	_, ok = ParseCondition("Influenza")
	require.False(t, ok)

	require.Len(t, Conditions(), 8)
	require.Equal(t, ConditionNone, Conditions()[0])
}
