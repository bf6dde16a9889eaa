package server

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("MP4EDTS_ADDR", "")
	t.Setenv("MP4EDTS_WORKERS", "")
	t.Setenv("MP4EDTS_QUEUE", "")
	t.Setenv("MP4EDTS_LOG_LEVEL", "")

	require.Equal(t, Config{
		Addr:      defaultAddr,
		Workers:   defaultWorkers,
		QueueSize: defaultQueueSize,
		LogLevel:  logrus.InfoLevel,
	}, ConfigFromEnv())

	t.Setenv("MP4EDTS_ADDR", "127.0.0.1:9000")
	t.Setenv("MP4EDTS_WORKERS", "8")
	t.Setenv("MP4EDTS_QUEUE", "-3")
	t.Setenv("MP4EDTS_LOG_LEVEL", "debug")

	cfg := ConfigFromEnv()
	require.Equal(t, "127.0.0.1:9000", cfg.Addr)
	require.Equal(t, 8, cfg.Workers)
	require.Equal(t, defaultQueueSize, cfg.QueueSize)
	require.Equal(t, logrus.DebugLevel, cfg.LogLevel)
}

func TestPositiveInt(t *testing.T) {
	t.Parallel()
	for val, want := range map[string]int{"": -1, "x": -1, "0": -1, "-2": -1, "7": 7} {
		require.Equal(t, want, positiveInt(val), val)
	}
}
