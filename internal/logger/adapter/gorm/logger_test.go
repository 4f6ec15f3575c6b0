package gorm_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/castboard/castboard/internal/logger"
	adapter "github.com/castboard/castboard/internal/logger/adapter/gorm"
)

func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer

	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()

	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	return &buf
}

func TestTrace(t *testing.T) {
	fc := func() (string, int64) { return "SELECT 1", 1 }

	tests := []struct {
		name    string
		level   glogger.LogLevel
		begin   time.Time
		err     error
		contain string
	}{
		{"error is logged", glogger.Warn, time.Now(), errors.New("boom"), "query failed"},
		{"not found is quiet", glogger.Warn, time.Now(), gorm.ErrRecordNotFound, ""},
		{"slow query warns", glogger.Warn, time.Now().Add(-time.Second), nil, "slow query"},
		{"info traces statements", glogger.Info, time.Now(), nil, "SELECT 1"},
		{"silent logs nothing", glogger.Silent, time.Now(), errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureGlobal(t)

			l := adapter.New(logger.Log{}).LogMode(tt.level)
			l.Trace(context.Background(), tt.begin, fc, tt.err)

			if tt.contain == "" {
				assert.Empty(t, buf.String())
			} else {
				assert.Contains(t, buf.String(), tt.contain)
			}
		})
	}
}

func TestMessages(t *testing.T) {
	buf := captureGlobal(t)

	l := adapter.New(logger.Log{}).LogMode(glogger.Warn)
	l.Info(context.Background(), "hidden %d", 1)
	l.Warn(context.Background(), "shown %d", 2)
	l.Error(context.Background(), "shown %d", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "shown 3")
}
