package loadtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mood-diary/internal/pkg/config"
)

func TestStages(t *testing.T) {
	stages := []config.Stage{
		{Duration: 10 * time.Second, Target: 10},
		{Duration: 10 * time.Second, Target: 10},
		{Duration: 10 * time.Second, Target: 0},
	}

	t.Run("total duration and peak", func(t *testing.T) {
		assert.Equal(t, 30*time.Second, TotalDuration(stages))
		assert.Equal(t, 10, MaxVUs(stages))
		assert.Equal(t, 20, MaxVUs(config.DefaultStages()))
		assert.Equal(t, 16*time.Minute, TotalDuration(config.DefaultStages()))
	})

	t.Run("linear ramp from zero", func(t *testing.T) {
		assert.Equal(t, 0, TargetVUs(stages, 0))
		assert.Equal(t, 5, TargetVUs(stages, 5*time.Second))
		assert.Equal(t, 9, TargetVUs(stages, 9*time.Second))
	})

	t.Run("plateau and ramp down", func(t *testing.T) {
		assert.Equal(t, 10, TargetVUs(stages, 15*time.Second))
		assert.Equal(t, 5, TargetVUs(stages, 25*time.Second))
	})

	t.Run("last target holds after profile", func(t *testing.T) {
		assert.Equal(t, 0, TargetVUs(stages, time.Minute))
		assert.Equal(t, 0, TargetVUs(nil, time.Second))
	})
}
