// SPDX-License-Identifier: EPL-2.0

package loop

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_WriteRead(t *testing.T) {
	t.Parallel()

	f := NewFeed(64)
	n, err := f.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, 8, f.Buffered())

	buf := make([]byte, 16)
	n, err = f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, buf[:n])
}

func TestFeed_WriteWaitsForRoom(t *testing.T) {
	t.Parallel()

	f := NewFeed(8)
	data := []byte("0123456789abcdef")

	written := make(chan error, 1)
	go func() {
		_, err := f.Write(data)
		f.CloseWrite()
		written <- err
	}()

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, <-written)
	assert.Equal(t, data, got)
}

func TestFeed_TryReadWholeFrames(t *testing.T) {
	t.Parallel()

	f := NewFeed(64)
	_, err := f.Write([]byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	buf := make([]byte, 16)
	n, err := f.TryRead(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = f.TryRead(buf)
	require.NoError(t, err)
	assert.Zero(t, n, "half a frame stays buffered")

	f.CloseWrite()
	_, err = f.Write([]byte{7, 8})
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestFeed_TryReadEOF(t *testing.T) {
	t.Parallel()

	f := NewFeed(64)
	f.CloseWrite()

	n, err := f.TryRead(make([]byte, 8))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestFeed_Pause(t *testing.T) {
	t.Parallel()

	f := NewFeed(64)
	_, err := f.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)

	f.SetPaused(true)
	assert.True(t, f.Paused())

	n, err := f.TryRead(make([]byte, 8))
	require.NoError(t, err)
	assert.Zero(t, n)

	read := make(chan int, 1)
	go func() {
		n, _ := f.Read(make([]byte, 8))
		read <- n
	}()

	select {
	case <-read:
		t.Fatal("Read returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	f.SetPaused(false)
	select {
	case n := <-read:
		assert.Equal(t, 4, n)
	case <-time.After(time.Second):
		t.Fatal("Read did not resume")
	}
}

func TestFeed_Flush(t *testing.T) {
	t.Parallel()

	f := NewFeed(64)
	_, err := f.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)

	f.Flush()
	assert.Zero(t, f.Buffered())
}

func TestFeed_StopUnblocks(t *testing.T) {
	t.Parallel()

	f := NewFeed(4)

	writeErr := make(chan error, 1)
	go func() {
		_, err := f.Write(make([]byte, 16))
		writeErr <- err
	}()

	readErr := make(chan error, 1)
	g := NewFeed(4)
	go func() {
		_, err := g.Read(make([]byte, 4))
		readErr <- err
	}()

	time.Sleep(20 * time.Millisecond)
	f.Stop()
	g.Stop()

	select {
	case err := <-writeErr:
		assert.ErrorIs(t, err, io.ErrClosedPipe)
	case <-time.After(time.Second):
		t.Fatal("Write still blocked after Stop")
	}

	select {
	case err := <-readErr:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(time.Second):
		t.Fatal("Read still blocked after Stop")
	}
}

func TestFeed_FlushDropsStaleEpoch(t *testing.T) {
	t.Parallel()

	f := NewFeed(64)
	stale := f.Epoch()

	_, err := f.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	f.Flush()
	assert.Equal(t, stale+1, f.Epoch())

	n, err := f.WriteEpoch([]byte{9, 9, 9, 9}, stale)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Zero(t, f.Buffered())

	_, err = f.WriteEpoch([]byte{5, 6, 7, 8}, f.Epoch())
	require.NoError(t, err)
	assert.Equal(t, 4, f.Buffered())
}

func TestFeed_ReadWaitsForWholeFrame(t *testing.T) {
	t.Parallel()

	f := NewFeed(64)
	_, err := f.Write([]byte{1, 2})
	require.NoError(t, err)

	read := make(chan int, 1)
	go func() {
		n, _ := f.Read(make([]byte, 16))
		read <- n
	}()

	select {
	case <-read:
		t.Fatal("Read returned half a frame")
	case <-time.After(50 * time.Millisecond):
	}

	_, err = f.Write([]byte{3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, 4, <-read)
}
