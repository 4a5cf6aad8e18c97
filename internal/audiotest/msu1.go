// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// MSU1Bytes builds an MSU1 container holding frames stereo frames. Frame i
// carries the value i (truncated to int16) on the left channel and -i on the
// right, so tests can tell frames apart after a read.
func MSU1Bytes(loop int32, frames int) []byte {
	b := make([]byte, 8+4*frames)
	copy(b, "MSU1")
	binary.LittleEndian.PutUint32(b[4:8], uint32(loop))

	for i := range frames {
		off := 8 + 4*i
		binary.LittleEndian.PutUint16(b[off:], uint16(int16(i)))
		binary.LittleEndian.PutUint16(b[off+2:], uint16(-int16(i)))
	}

	return b
}

// PCMBytes builds an MSU1 container from interleaved stereo samples.
func PCMBytes(loop int32, samples []int16) []byte {
	b := make([]byte, 8+2*len(samples))
	copy(b, "MSU1")
	binary.LittleEndian.PutUint32(b[4:8], uint32(loop))

	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[8+2*i:], uint16(s))
	}

	return b
}

// FrameValue decodes the left channel of the frame at byte offset off in
// data produced by MSU1Bytes.
func FrameValue(data []byte, off int) int16 {
	return int16(binary.LittleEndian.Uint16(data[off:]))
}

// WriteFile writes data into a file named name under a fresh temp dir.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}
