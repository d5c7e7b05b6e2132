package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, categories map[string]bool) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	Initialize(zap.New(core), categories)
	t.Cleanup(func() { Initialize(nil, nil) })
	return logs
}

func TestAllCategoriesLog(t *testing.T) {
	logs := observe(t, nil)

	for _, cat := range Categories() {
		require.True(t, IsCategoryEnabled(cat), "category %s should be enabled", cat)
		l := Get(cat)
		l.Debug("debug %s", cat)
		l.Info("info %s", cat)
		l.Warn("warn %s", cat)
		l.Error("error %s", cat)
	}

	assert.Equal(t, 4*len(Categories()), logs.Len())
	for _, e := range logs.All() {
		assert.NotEmpty(t, e.LoggerName)
	}
}

func TestConvenienceFunctionsUseCategoryNames(t *testing.T) {
	logs := observe(t, nil)

	Boot("boot")
	RoutingDebug("routing")
	AgentsWarn("agents")
	StoreError("store")
	Reports("reports")
	APIDebug("api")
	ServerWarn("server")
	EventsError("events")

	want := []string{"boot", "routing", "agents", "store", "reports", "api", "server", "events"}
	entries := logs.All()
	require.Len(t, entries, len(want))
	for i, e := range entries {
		assert.Equal(t, want[i], e.LoggerName)
		assert.Equal(t, want[i], e.Message)
	}
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestDisabledCategoryIsSilent(t *testing.T) {
	logs := observe(t, map[string]bool{"store": false, "routing": true})

	assert.False(t, IsCategoryEnabled(CategoryStore))
	assert.True(t, IsCategoryEnabled(CategoryRouting))

	Store("dropped")
	Routing("kept %d", 1)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept 1", logs.All()[0].Message)
}

func TestUninitializedIsNoop(t *testing.T) {
	Initialize(nil, nil)

	assert.False(t, IsCategoryEnabled(CategoryBoot))
	assert.NotPanics(t, func() {
		Boot("nothing")
		Get(CategoryStore).With("k", "v").Error("nothing")
		StartTimer(CategoryReports, "op").Stop()
		Sync()
	})
}

func TestWithAndStructuredLog(t *testing.T) {
	logs := observe(t, nil)

	Get(CategoryServer).With("request_id", "abc").Info("handled")
	Get(CategoryReports).StructuredLog("warn", "slow build", map[string]interface{}{"kind": "sales"})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "abc", entries[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "sales", entries[1].ContextMap()["kind"])
}

func TestTimer(t *testing.T) {
	logs := observe(t, nil)

	elapsed := StartTimer(CategoryStore, "query").Stop()
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))

	StartTimer(CategoryStore, "slow query").StopWithThreshold(-time.Second)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Contains(t, entries[0].Message, "query completed in")
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Contains(t, entries[1].Message, "slow query took")
}

func TestNew(t *testing.T) {
	l, err := New("debug", "json")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("warn", "console")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))

	_, err = New("loud", "json")
	assert.Error(t, err)
}
