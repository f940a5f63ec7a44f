package sl_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := sl.Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.Panics(t, func() {
		_ = sl.Err(nil)
	})
}

func TestSetupLogger_Levels(t *testing.T) {
	tests := []struct {
		env     string
		debugOn bool
	}{
		{env: "local", debugOn: true},
		{env: "dev", debugOn: true},
		{env: "prod", debugOn: false},
		{env: "unknown", debugOn: false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			log := sl.SetupLogger(tt.env)
			assert.Equal(t, tt.debugOn, log.Enabled(t.Context(), slog.LevelDebug))
		})
	}
}
