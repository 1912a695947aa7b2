package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaselad/leaselad/internal/config"
	"github.com/leaselad/leaselad/internal/model"
	"github.com/leaselad/leaselad/internal/pipeline"
)

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"daemon", "--detach", "--addr", ":9000", "--detach=true", "--demo"})
	assert.Equal(t, []string{"daemon", "--addr", ":9000", "--demo"}, got)
}

func TestPIDRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaselad.pid")
	require.NoError(t, writePID(path, 4242))

	pid, err := readPID(path)
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)
}

func TestEnsureDaemonNotRunningClearsStalePID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaselad.pid")
	require.NoError(t, writePID(path, 1<<30))

	require.NoError(t, ensureDaemonNotRunning(path))
	_, err := readPID(path)
	assert.Error(t, err)
}

func TestStateRoundTrip(t *testing.T) {
	path := statePath(filepath.Join(t.TempDir(), "leaselad.pid"))
	want := daemonRuntimeState{PID: 7, Addr: "127.0.0.1:9999", Schedule: "@every 1m", StartedAt: time.Unix(100, 0).UTC()}
	require.NoError(t, writeState(path, want))

	got, err := readState(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDaemonConfigFlagsOverrideFile(t *testing.T) {
	defer func() { flagDaemonAddr, flagDaemonSchedule = "", "" }()

	cfg := config.DefaultConfig()
	got := daemonConfig(cfg)
	assert.Equal(t, cfg.Daemon.Addr, got.Addr)
	assert.Equal(t, cfg.Daemon.Schedule, got.Schedule)

	flagDaemonAddr = ":1234"
	flagDaemonSchedule = "@every 1m"
	got = daemonConfig(cfg)
	assert.Equal(t, ":1234", got.Addr)
	assert.Equal(t, "@every 1m", got.Schedule)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "abcdef...wxyz", maskToken("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "ab...", maskToken("abcdef"))
	assert.Equal(t, "****", maskToken("abc"))
}

func TestReferenceClock(t *testing.T) {
	defer func() { flagAsOf = "" }()

	flagAsOf = "2025-12-31"
	now, err := referenceClock()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.December, 31, 12, 0, 0, 0, time.Local), now())

	flagAsOf = "12/31/2025"
	_, err = referenceClock()
	assert.Error(t, err)
}

func TestReadingRowsNewestFirst(t *testing.T) {
	base := time.Date(2025, time.August, 1, 9, 0, 0, 0, time.Local)
	readings := []model.Reading{
		{Odometer: 1200, Source: "tessie", FetchedAt: base.Add(48 * time.Hour)},
		{Odometer: 1100, Source: "tessie", FetchedAt: base.Add(24 * time.Hour)},
		{Odometer: 1000, Source: "demo", FetchedAt: base},
	}

	rows := readingRows(readings, 2)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2025-08-03 09:00", "1,200", "tessie"}, rows[0])
	assert.Equal(t, "1,100", rows[1][1])

	assert.Len(t, readingRows(readings, 0), 3)
}

func TestDemoSessionLeavesCacheAlone(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("TESSIE_API_TOKEN", "")
	t.Setenv("TESSIE_VIN", "")
	defer func() { flagDemo = false }()

	flagDemo = true
	s, err := openSession()
	require.NoError(t, err)
	defer s.Close()
	assert.Nil(t, s.cache)
	assert.Nil(t, s.syncer.Store)
	_, statErr := os.Stat(pipeline.CachePath())
	assert.True(t, os.IsNotExist(statErr))

	flagDemo = false
	live, err := openSession()
	require.NoError(t, err)
	defer live.Close()
	assert.NotNil(t, live.cache)
	assert.Nil(t, live.syncer.Provider)
}
