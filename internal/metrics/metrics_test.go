package metrics

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Sessions(t *testing.T) {
	c := New()

	c.SessionOpened()
	c.SessionOpened()
	assert.EqualValues(t, 2, c.ActiveSessions())
	assert.EqualValues(t, 2, c.TotalSessions())

	c.SessionClosed()
	assert.EqualValues(t, 1, c.ActiveSessions())
	assert.EqualValues(t, 2, c.TotalSessions(), "total should not drop on close")
}

func TestCollector_Commands(t *testing.T) {
	c := New()

	c.CommandExecuted(false)
	c.CommandExecuted(true)
	c.CommandExecuted(false)
	c.DirectoryChanged()

	assert.EqualValues(t, 3, c.TotalCommands())
	assert.EqualValues(t, 1, c.FailedCommands())
	assert.EqualValues(t, 1, c.DirectoryChanges())
}

func TestCollector_Bytes(t *testing.T) {
	c := New()

	c.BytesReceived(1024)
	c.BytesSent(512)
	c.BytesReceived(100)

	assert.EqualValues(t, 1124, c.TotalBytesIn())
	assert.EqualValues(t, 512, c.TotalBytesOut())
}

func TestCollector_Errors(t *testing.T) {
	c := New()

	c.RecordError("accept: too many open files")
	c.RecordError("write: broken pipe")

	assert.EqualValues(t, 2, c.ErrorCount())
	s := c.Snapshot()
	assert.Equal(t, "write: broken pipe", s.LastErrorMessage)
	assert.NotEmpty(t, s.LastError)
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector

	c.SessionOpened()
	c.SessionClosed()
	c.CommandExecuted(true)
	c.DirectoryChanged()
	c.BytesReceived(10)
	c.BytesSent(10)
	c.RecordError("x")

	assert.Zero(t, c.ActiveSessions())
	assert.Zero(t, c.TotalCommands())
	assert.Equal(t, Snapshot{}, c.Snapshot())
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.SessionOpened()
	c.CommandExecuted(false)

	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(c.JSON()), &s))
	assert.EqualValues(t, 1, s.SessionsActive)
	assert.EqualValues(t, 1, s.CommandsTotal)
	assert.Empty(t, s.LastErrorMessage)
}

func TestCollector_Concurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.SessionOpened()
			c.CommandExecuted(false)
			c.SessionClosed()
		}()
	}
	wg.Wait()

	assert.Zero(t, c.ActiveSessions())
	assert.EqualValues(t, 50, c.TotalSessions())
	assert.EqualValues(t, 50, c.TotalCommands())
}
