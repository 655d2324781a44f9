package steps

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayer_AdvancesAndStopsAtEnd(t *testing.T) {
	nav := NewNavigator(navSteps(3))
	var advances atomic.Int32
	p := NewPlayer(nav, func(Step) { advances.Add(1) })
	p.SetSpeed(10 * time.Millisecond)

	p.Play()
	require.True(t, p.Playing())

	require.Eventually(t, func() bool {
		return !p.Playing()
	}, 2*time.Second, 5*time.Millisecond, "player should stop at the last step")

	assert.Equal(t, int32(2), advances.Load())
	assert.True(t, nav.AtEnd())
}

func TestPlayer_StopClearsTimer(t *testing.T) {
	nav := NewNavigator(navSteps(100))
	var advances atomic.Int32
	p := NewPlayer(nav, func(Step) { advances.Add(1) })
	p.SetSpeed(5 * time.Millisecond)

	p.Play()
	require.Eventually(t, func() bool {
		return advances.Load() > 0
	}, 2*time.Second, time.Millisecond)

	p.Stop()
	assert.False(t, p.Playing())

	seen := advances.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, seen, advances.Load(), "no callbacks after Stop")
}

func TestPlayer_Toggle(t *testing.T) {
	p := NewPlayer(NewNavigator(navSteps(10)), nil)

	assert.True(t, p.Toggle())
	assert.True(t, p.Playing())

	assert.False(t, p.Toggle())
	assert.False(t, p.Playing())
}

func TestPlayer_SetSpeedRestartsWhileRunning(t *testing.T) {
	nav := NewNavigator(navSteps(1000))
	var advances atomic.Int32
	p := NewPlayer(nav, func(Step) { advances.Add(1) })

	p.Play()
	// Default interval is 2s; switching to a fast interval must take
	// effect without an explicit stop/start.
	p.SetSpeed(5 * time.Millisecond)

	require.Eventually(t, func() bool {
		return advances.Load() >= 3
	}, 2*time.Second, time.Millisecond)

	p.Stop()
}

func TestPlayer_DefaultInterval(t *testing.T) {
	p := NewPlayer(NewNavigator(nil), nil)
	assert.Equal(t, 2000*time.Millisecond, p.Interval())

	p.SetSpeed(-1)
	assert.Equal(t, 2000*time.Millisecond, p.Interval(), "non-positive intervals ignored")
}

func TestPlayer_PlayOnEmptyNavigatorStops(t *testing.T) {
	p := NewPlayer(NewNavigator(nil), nil)
	p.SetSpeed(5 * time.Millisecond)
	p.Play()

	require.Eventually(t, func() bool {
		return !p.Playing()
	}, 2*time.Second, time.Millisecond)
}
