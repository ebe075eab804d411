package conf

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefaults(t *testing.T) *Settings {
	t.Helper()
	viper.Reset()
	// make sure no stray config.yaml is picked up
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	s, err := Load()
	require.NoError(t, err)
	return s
}

func TestLoadDefaults(t *testing.T) {
	s := loadDefaults(t)

	assert.Equal(t, "wavecraft", s.Main.Name)
	assert.Equal(t, 48000, s.Engine.SampleRate)
	assert.Equal(t, 0, s.Engine.MIDIChannels)
	assert.Equal(t, 2, s.Engine.AudioChannels)
	assert.InDelta(t, 13.3, s.Metering.FalloffDB, 0.001)
	assert.InDelta(t, 100.0, s.Scene.InterSceneGapMs, 0.001)
	assert.Equal(t, "Scene ", s.Scene.MarkerPrefix)
	assert.False(t, s.Telemetry.Enabled)
}

func TestValidateRejectsBadValues(t *testing.T) {
	s := loadDefaults(t)

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero sample rate", func(s *Settings) { s.Engine.SampleRate = 0 }},
		{"negative audio channels", func(s *Settings) { s.Engine.AudioChannels = -1 }},
		{"negative falloff", func(s *Settings) { s.Metering.FalloffDB = -1 }},
		{"negative gap", func(s *Settings) { s.Scene.InterSceneGapMs = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := *s
			tt.mutate(&cp)
			assert.Error(t, cp.Validate())
		})
	}
}
