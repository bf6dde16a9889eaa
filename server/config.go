package server

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Config holds the service settings read from the environment.
type Config struct {
	Addr      string
	Workers   int
	QueueSize int
	LogLevel  logrus.Level
}

const (
	defaultAddr      = "0.0.0.0:8080"
	defaultWorkers   = 4
	defaultQueueSize = 100
)

// ConfigFromEnv reads MP4EDTS_ADDR, MP4EDTS_WORKERS, MP4EDTS_QUEUE and
// MP4EDTS_LOG_LEVEL, falling back to defaults for unset or invalid values.
func ConfigFromEnv() Config {
	cfg := Config{
		Addr:      defaultAddr,
		Workers:   defaultWorkers,
		QueueSize: defaultQueueSize,
		LogLevel:  logrus.InfoLevel,
	}
	if v := os.Getenv("MP4EDTS_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := positiveInt(os.Getenv("MP4EDTS_WORKERS")); v > 0 {
		cfg.Workers = v
	}
	if v := positiveInt(os.Getenv("MP4EDTS_QUEUE")); v > 0 {
		cfg.QueueSize = v
	}
	if lvl, err := logrus.ParseLevel(os.Getenv("MP4EDTS_LOG_LEVEL")); err == nil {
		cfg.LogLevel = lvl
	}
	return cfg
}

func positiveInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return -1
	}
	return i
}
