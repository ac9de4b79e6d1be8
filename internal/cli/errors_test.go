package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/ma595/ffcx"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitGeneral},
		{"config", ConfigError("loading config", errors.New("bad yaml")), ExitConfig},
		{"wrapped exit error", fmt.Errorf("outer: %w", InputError("reading", nil)), ExitInput},
		{"invalid input", fmt.Errorf("perm: %w", ffcx.ErrInvalidInput), ExitInput},
		{"dimension", fmt.Errorf("rows: %w", ffcx.ErrDimensionMismatch), ExitInput},
		{"option", fmt.Errorf("cursor: %w", ffcx.ErrUnsupportedOption), ExitInput},
		{"explicit code wins", GeneralError("emit", ffcx.ErrInvalidInput), ExitGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExitErrorMessage(t *testing.T) {
	assert.Equal(t, "loading config: bad yaml", ConfigError("loading config", errors.New("bad yaml")).Error())
	assert.Equal(t, "no input", InputError("no input", nil).Error())

	err := InputError("parsing", ffcx.ErrInvalidInput)
	assert.ErrorIs(t, err, ffcx.ErrInvalidInput)
}

func TestLevel(t *testing.T) {
	assert.Equal(t, log.InfoLevel, Level(false, false))
	assert.Equal(t, log.DebugLevel, Level(true, false))
	assert.Equal(t, log.ErrorLevel, Level(false, true))
	assert.Equal(t, log.ErrorLevel, Level(true, true))
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, log.DebugLevel)

	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, LoggerFromContext(ctx))
	assert.Same(t, log.Default(), LoggerFromContext(context.Background()))

	NewProgress(l).Done("wrote headers", "count", 2)
	assert.Contains(t, buf.String(), "wrote headers")
	assert.Contains(t, buf.String(), "count=2")
}
