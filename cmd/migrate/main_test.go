package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pos-backend/pkg/config"
)

func TestLoggerOptionsHonorsFormat(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{LogLevel: "debug", LogFormat: "console", LogWarnStack: true}}
	opts := loggerOptions(cfg)
	assert.Equal(t, "migrate", opts.ServiceName)
	assert.Equal(t, "console", opts.Format)
	assert.True(t, opts.WarnStack)
}

func TestRunOfflineCreateAndValidate(t *testing.T) {
	dir := t.TempDir()

	handled, err := runOffline(options{command: "create", dir: dir})
	assert.True(t, handled)
	require.Error(t, err)

	handled, err = runOffline(options{command: "create", dir: dir, name: "add refunds"})
	require.True(t, handled)
	require.NoError(t, err)
	files, err := filepath.Glob(filepath.Join(dir, "*_add_refunds.sql"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	handled, err = runOffline(options{command: "validate", dir: dir})
	assert.True(t, handled)
	assert.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.sql"), []byte("select 1;"), 0o644))
	_, err = runOffline(options{command: "validate", dir: dir})
	assert.Error(t, err)
}

func TestRunOfflineLeavesDatabaseCommands(t *testing.T) {
	for _, cmd := range []string{"up", "down", "status", "version"} {
		handled, err := runOffline(options{command: cmd})
		assert.False(t, handled, cmd)
		assert.NoError(t, err, cmd)
	}
}

func TestRunOnlineRejectsBadInput(t *testing.T) {
	err := runOnline(context.Background(), nil, options{command: "version"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-version")

	err = runOnline(context.Background(), nil, options{command: "redo"})
	assert.ErrorIs(t, err, errUnknownCommand)
}
