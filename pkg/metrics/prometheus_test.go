package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveUpstreamSplitsOutcome(t *testing.T) {
	okBefore := testutil.ToFloat64(upstreamCallsTotal.WithLabelValues("geocode_test", "ok"))
	errBefore := testutil.ToFloat64(upstreamCallsTotal.WithLabelValues("geocode_test", "error"))

	ObserveUpstream("geocode_test", nil)
	ObserveUpstream("geocode_test", errors.New("timeout"))
	ObserveUpstream("geocode_test", errors.New("timeout"))

	require.Equal(t, okBefore+1, testutil.ToFloat64(upstreamCallsTotal.WithLabelValues("geocode_test", "ok")))
	require.Equal(t, errBefore+2, testutil.ToFloat64(upstreamCallsTotal.WithLabelValues("geocode_test", "error")))
}

func TestTokenUsageIsZero(t *testing.T) {
	require.True(t, TokenUsage{}.IsZero())
	require.False(t, TokenUsage{PromptTokens: 3, TotalTokens: 3}.IsZero())
}

func TestNewTokenUsageFillsTotalAndCounts(t *testing.T) {
	promptBefore := testutil.ToFloat64(llmTokensTotal.WithLabelValues("prompt", UsageEstimated))

	usage := NewTokenUsage(12, 5, 0, UsageEstimated)

	require.Equal(t, 17, usage.TotalTokens)
	require.Equal(t, UsageEstimated, usage.Source)
	require.Equal(t, promptBefore+12, testutil.ToFloat64(llmTokensTotal.WithLabelValues("prompt", UsageEstimated)))

	reported := NewTokenUsage(90, 10, 100, UsageReported)
	require.Equal(t, 100, reported.TotalTokens)
}
