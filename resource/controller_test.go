package resource

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	// Acquire 50
	require.NoError(t, c.AcquireMemory(context.Background(), 50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	// Acquire 40
	require.NoError(t, c.AcquireMemory(context.Background(), 40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// TryAcquire 20 (should fail)
	assert.False(t, c.TryAcquireMemory(20))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Acquire 20 (should block/timeout)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireMemory(ctx, 20), context.DeadlineExceeded)

	// Release 50
	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	// Now Acquire 20 should succeed
	require.NoError(t, c.AcquireMemory(context.Background(), 20))
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_OversizedRequestIsClamped(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(context.Background(), 500))
	assert.Equal(t, int64(500), c.MemoryUsage())
	assert.False(t, c.TryAcquireMemory(1))

	c.ReleaseMemory(500)
	assert.Zero(t, c.MemoryUsage())
	assert.True(t, c.TryAcquireMemory(100))
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 0})

	require.NoError(t, c.AcquireMemory(context.Background(), 1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	require.NoError(t, c.AcquireMemory(context.Background(), 10))
	assert.True(t, c.TryAcquireMemory(10))
	c.ReleaseMemory(10)
	require.NoError(t, c.AcquireIO(context.Background(), 10))
	assert.Zero(t, c.MemoryUsage())
	assert.Zero(t, c.IOBytes())

	r := strings.NewReader("x")
	assert.Same(t, r, c.WrapReader(context.Background(), r))
}

func TestController_IOLargerThanBurst(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	// Exceeds the burst, so it must be split rather than rejected.
	require.NoError(t, c.AcquireIO(context.Background(), 1<<20+1))
	assert.Equal(t, int64(1<<20+1), c.IOBytes())
}

func TestController_IOCanceled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 10})
	require.NoError(t, c.AcquireIO(context.Background(), 10)) // drain the burst

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.AcquireIO(ctx, 10))
}

func TestRateLimitedReaderWriter(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	ctx := context.Background()

	var buf bytes.Buffer
	w := c.WrapWriter(ctx, &buf)
	_, err := io.WriteString(w, "hello world")
	require.NoError(t, err)

	got, err := io.ReadAll(c.WrapReader(ctx, &buf))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
	assert.Equal(t, int64(22), c.IOBytes())
}

func TestRateLimitedReaderAt(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	r := c.WrapReaderAt(context.Background(), strings.NewReader("0123456789"))
	buf := make([]byte, 4)
	n, err := r.ReadAt(buf, 3)
	require.NoError(t, err)
	assert.Equal(t, "3456", string(buf[:n]))
	assert.Equal(t, int64(4), c.IOBytes())
}
