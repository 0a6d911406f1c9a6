package connectivity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualMonitorStartsOffline(t *testing.T) {
	m := NewMonitor(nil)
	require.False(t, m.IsOnline())

	m.SetOnline(true)
	require.True(t, m.IsOnline())
}

func TestMonitorProbesFreshPerCall(t *testing.T) {
	online := false
	m := NewMonitor(func() bool { return online })
	require.False(t, m.IsOnline())

	online = true
	require.True(t, m.IsOnline(), "each check must take a fresh snapshot")

	online = false
	require.False(t, m.IsOnline())
}

func TestSubscribersFireOnTransitionsOnly(t *testing.T) {
	m := NewMonitor(nil)

	var events []bool
	m.Subscribe(func(online bool) { events = append(events, online) })

	m.SetOnline(true)
	m.SetOnline(true) // repeated same-state check, no event
	m.SetOnline(false)
	m.SetOnline(false)
	m.SetOnline(true)

	require.Equal(t, []bool{true, false, true}, events)
}

func TestRefreshNotifiesOnFlip(t *testing.T) {
	online := true
	m := NewMonitor(func() bool { return online })
	require.True(t, m.IsOnline())

	flips := 0
	m.Subscribe(func(bool) { flips++ })

	online = false
	require.False(t, m.Refresh())
	require.False(t, m.Refresh())
	require.Equal(t, 1, flips)
}

func TestDialCheckerUnreachableAddress(t *testing.T) {
	// Reserved TEST-NET-1 address, nothing listens there.
	check := DialChecker("192.0.2.1:1", 50*time.Millisecond)
	require.False(t, check())
}
