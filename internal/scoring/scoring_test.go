package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nighthawk/adaptive-load/internal/model"
	"github.com/nighthawk/adaptive-load/internal/registry"
	"github.com/nighthawk/adaptive-load/internal/status"
)

func TestBinary_LowerThreshold(t *testing.T) {
	sf, st := registry.LoadScoringFunction(model.PluginSpec{
		PluginName: "nighthawk.binary_scoring",
		Config:     map[string]interface{}{"lower_threshold": 0.9},
	})
	require.True(t, st.Ok())
	assert.Equal(t, 1.0, sf.Evaluate(0.95))
	assert.Equal(t, -1.0, sf.Evaluate(0.5))
}

func TestBinary_UpperThreshold(t *testing.T) {
	sf, st := registry.LoadScoringFunction(model.PluginSpec{
		PluginName: "nighthawk.binary_scoring",
		Config:     map[string]interface{}{"upper_threshold": 100.0},
	})
	require.True(t, st.Ok())
	assert.Equal(t, 1.0, sf.Evaluate(50))
	assert.Equal(t, -1.0, sf.Evaluate(150))
}

func TestBinary_RejectsBothThresholds(t *testing.T) {
	_, st := registry.LoadScoringFunction(model.PluginSpec{
		PluginName: "nighthawk.binary_scoring",
		Config: map[string]interface{}{
			"lower_threshold": 1.0,
			"upper_threshold": 2.0,
		},
	})
	require.False(t, st.Ok())
	assert.Equal(t, status.InvalidArgument, st.Code)
}

func TestBinary_RejectsNeitherThreshold(t *testing.T) {
	_, st := registry.LoadScoringFunction(model.PluginSpec{
		PluginName: "nighthawk.binary_scoring",
		Config:     map[string]interface{}{},
	})
	require.False(t, st.Ok())
}

func TestLinear_Clamped(t *testing.T) {
	sf, st := registry.LoadScoringFunction(model.PluginSpec{
		PluginName: "nighthawk.linear_scoring",
		Config: map[string]interface{}{
			"threshold":        100.0,
			"scaling_constant": 0.01,
		},
	})
	require.True(t, st.Ok())
	assert.InDelta(t, 1.0, sf.Evaluate(0), 1e-9)
	assert.InDelta(t, -1.0, sf.Evaluate(300), 1e-9)
	assert.InDelta(t, 0.5, sf.Evaluate(50), 1e-9)
}

func TestLinear_RequiresScalingConstant(t *testing.T) {
	_, st := registry.LoadScoringFunction(model.PluginSpec{
		PluginName: "nighthawk.linear_scoring",
		Config:     map[string]interface{}{"threshold": 100.0},
	})
	require.False(t, st.Ok())
}
