package repo

import (
	"testing"
	"time"

	"oncallbot/internal/platform/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_PerDialect(t *testing.T) {
	assert.Contains(t, Schema(store.DriverPostgres), "TIMESTAMPTZ")
	assert.NotContains(t, Schema(store.DriverSQLite), "TIMESTAMPTZ")
	assert.Equal(t, Schema(store.DriverSQLite), Schema(""))
}

func TestScanTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	cases := []any{
		want,
		want.In(time.FixedZone("x", 3600)),
		"2024-05-01 10:30:00+00:00",
		"2024-05-01T10:30:00Z",
		[]byte("2024-05-01 10:30:00"),
	}
	for _, src := range cases {
		var got time.Time
		require.NoError(t, (&scanTime{&got}).Scan(src), "src %v", src)
		assert.True(t, want.Equal(got), "src %v => %v", src, got)
	}

	var got time.Time
	require.NoError(t, (&scanTime{&got}).Scan(nil))
	assert.True(t, got.IsZero())
	assert.Error(t, (&scanTime{&got}).Scan(42))
	assert.Error(t, (&scanTime{&got}).Scan("yesterday"))
}
