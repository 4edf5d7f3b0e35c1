package console

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChildLinePrefix(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	c.ChildLine("  [Server] Done (3.2s)!  ")

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "[Server] Done (3.2s)!\n"))
	assert.Contains(t, out, "| ")
}

func TestStatusLines(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	c.Info("starting %s", "server")
	c.Warn("slow disk")
	c.Error("boom")

	out := buf.String()
	assert.Contains(t, out, "starting server")
	assert.Contains(t, out, "slow disk")
	assert.Contains(t, out, "boom")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestConcurrentWritesNeverInterleave(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.ChildLine("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Info("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
		}()
	}
	wg.Wait()

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		ok := strings.Contains(line, "aaaaaaaa") != strings.Contains(line, "bbbbbbbb")
		assert.True(t, ok, "interleaved line: %q", line)
	}
}

func TestSuspendHoldsLock(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	c.Suspend(func(w io.Writer) {
		w.Write([]byte("progress frame\n"))
	})

	assert.Contains(t, buf.String(), "progress frame")
}
