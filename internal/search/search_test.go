package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan string, within time.Duration) (string, bool) {
	t.Helper()
	select {
	case v, ok := <-ch:
		return v, ok
	case <-time.After(within):
		return "", false
	}
}

func TestDebouncer(t *testing.T) {
	t.Run("Emits Only The Last Value Of A Burst", func(t *testing.T) {
		d := NewDebouncer(60 * time.Millisecond)
		defer d.Stop()

		for _, v := range []string{"m", "mi", "mil", "milk"} {
			d.Push(v)
			time.Sleep(5 * time.Millisecond)
		}

		v, ok := receive(t, d.C(), time.Second)
		require.True(t, ok, "expected a settled value")
		assert.Equal(t, "milk", v)

		_, ok = receive(t, d.C(), 150*time.Millisecond)
		assert.False(t, ok, "expected exactly one emission")
	})

	t.Run("Separate Pauses Emit Separately", func(t *testing.T) {
		d := NewDebouncer(20 * time.Millisecond)
		defer d.Stop()

		d.Push("a")
		v, ok := receive(t, d.C(), time.Second)
		require.True(t, ok)
		assert.Equal(t, "a", v)

		d.Push("b")
		v, ok = receive(t, d.C(), time.Second)
		require.True(t, ok)
		assert.Equal(t, "b", v)
	})

	t.Run("Flush Emits Immediately", func(t *testing.T) {
		d := NewDebouncer(time.Hour)
		defer d.Stop()

		d.Push("now")
		d.Flush()

		v, ok := receive(t, d.C(), time.Second)
		require.True(t, ok)
		assert.Equal(t, "now", v)
	})

	t.Run("Stop Cancels Pending", func(t *testing.T) {
		d := NewDebouncer(20 * time.Millisecond)
		d.Push("never")
		d.Stop()
		d.Push("ignored")

		_, ok := receive(t, d.C(), 80*time.Millisecond)
		assert.False(t, ok)
	})

	t.Run("Default Quiet", func(t *testing.T) {
		d := NewDebouncer(0)
		assert.Equal(t, DefaultQuiet, d.quiet)
	})
}

func TestDebounce(t *testing.T) {
	t.Run("Collapses Bursts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		in := make(chan string)
		out := Debounce(ctx, in, 30*time.Millisecond)

		in <- "n"
		in <- "no"
		in <- "not"

		v, ok := receive(t, out, time.Second)
		require.True(t, ok)
		assert.Equal(t, "not", v)
	})

	t.Run("Delivers Pending On Close", func(t *testing.T) {
		in := make(chan string, 1)
		out := Debounce(context.Background(), in, time.Hour)

		in <- "last"
		close(in)

		v, ok := receive(t, out, time.Second)
		require.True(t, ok)
		assert.Equal(t, "last", v)

		_, ok = receive(t, out, time.Second)
		assert.False(t, ok, "expected output to close")
	})

	t.Run("Closes On Cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		in := make(chan string)
		out := Debounce(ctx, in, time.Hour)

		cancel()

		select {
		case _, ok := <-out:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("expected output to close after cancel")
		}
	})
}
