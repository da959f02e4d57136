package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReminderJanitor_Fires(t *testing.T) {
	j := newReminderJanitor()
	defer j.Stop()

	fired := make(chan struct{})
	j.Schedule(1, 10, 10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}

	require.False(t, j.Cancel(1, 10), "fired timer is forgotten")
}

func TestReminderJanitor_Cancel(t *testing.T) {
	j := newReminderJanitor()
	defer j.Stop()

	fired := make(chan struct{})
	j.Schedule(1, 10, 20*time.Millisecond, func() { close(fired) })
	require.True(t, j.Cancel(1, 10))

	select {
	case <-fired:
		t.Fatal("cancelled timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestReminderJanitor_ReplaceSameKey(t *testing.T) {
	j := newReminderJanitor()
	defer j.Stop()

	first := make(chan struct{})
	second := make(chan struct{})
	j.Schedule(1, 10, 20*time.Millisecond, func() { close(first) })
	j.Schedule(1, 10, 20*time.Millisecond, func() { close(second) })

	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("replacement timer did not fire")
	}

	select {
	case <-first:
		t.Fatal("replaced timer fired")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestReminderJanitor_StopCancelsAll(t *testing.T) {
	j := newReminderJanitor()

	fired := make(chan struct{}, 2)
	j.Schedule(1, 10, 20*time.Millisecond, func() { fired <- struct{}{} })
	j.Schedule(2, 20, 20*time.Millisecond, func() { fired <- struct{}{} })
	j.Stop()

	// New schedules are rejected after Stop.
	j.Schedule(3, 30, time.Millisecond, func() { fired <- struct{}{} })

	select {
	case <-fired:
		t.Fatal("timer fired after Stop")
	case <-time.After(100 * time.Millisecond):
	}
}
