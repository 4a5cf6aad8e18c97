// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/msukit/config"
	"github.com/ik5/msukit/formats/msu1"
	"github.com/ik5/msukit/internal/audiotest"
)

func isolate(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("MSUKIT_CONFIG", "")
	t.Setenv("MSUKIT_CACHE_DIR", filepath.Join(dir, "cache"))
	t.Setenv("MSUKIT_TEMP_DIR", filepath.Join(dir, "tmp"))
	t.Setenv("MSUKIT_PLAYER", "null")
}

func TestRun_Usage(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	assert.Equal(t, 2, run(nil, &out))
	assert.Equal(t, 2, run([]string{"bogus"}, &out))
}

func TestRun_Validate(t *testing.T) {
	isolate(t)

	good := audiotest.WriteFile(t, "good.pcm", audiotest.MSU1Bytes(3, 10))
	bad := audiotest.WriteFile(t, "bad.pcm", audiotest.MSU1Bytes(30, 10))

	var out bytes.Buffer
	assert.Equal(t, 0, run([]string{"validate", good}, &out))
	assert.Contains(t, out.String(), "ok, 10 samples, loop at 3")

	out.Reset()
	assert.Equal(t, 1, run([]string{"validate", good, bad}, &out))
	assert.Contains(t, out.String(), bad)
}

func TestRun_GainAndExport(t *testing.T) {
	isolate(t)

	path := audiotest.WriteFile(t, "track.pcm", audiotest.PCMBytes(0, []int16{1000, -1000, 2000, -2000}))

	var out bytes.Buffer
	assert.Equal(t, 1, run([]string{"gain", path}, &out), "needs -db or -percent")
	assert.Equal(t, 1, run([]string{"gain", "-db", "1", "-percent", "50", path}, &out))

	require.Equal(t, 0, run([]string{"gain", "-percent", "50", path}, &out))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int16(500), audiotest.FrameValue(data, 8))

	wavPath := filepath.Join(filepath.Dir(path), "track.wav")
	require.Equal(t, 0, run([]string{"export-wav", path, wavPath}, &out))
	assert.FileExists(t, wavPath)
}

func TestRun_AnalyzeAndEncode(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	pcm := audiotest.WriteFile(t, "loud.pcm", audiotest.PCMBytes(0, []int16{16384, 16384, -16384, -16384}))

	var out bytes.Buffer
	require.Equal(t, 0, run([]string{"analyze", "-bounds", pcm}, &out))
	assert.Contains(t, out.String(), "peak -6.02 dB")
	assert.Contains(t, out.String(), "audible from sample 0 to 2")

	wavPath := filepath.Join(dir, "loud.wav")
	require.Equal(t, 0, run([]string{"export-wav", pcm, wavPath}, &out))

	encoded := filepath.Join(dir, "encoded.pcm")
	require.Equal(t, 0, run([]string{"encode", "-loop", "1", wavPath, encoded}, &out))

	h, err := msu1.ReadFileHeader(encoded)
	require.NoError(t, err)
	assert.Equal(t, int32(1), h.LoopPoint)
	assert.Equal(t, int64(2), h.TotalSamples)
}

func TestRun_Info(t *testing.T) {
	isolate(t)

	pcm := audiotest.WriteFile(t, "theme.pcm", audiotest.MSU1Bytes(0, 16))
	wavPath := filepath.Join(t.TempDir(), "Boss Theme.wav")

	var out bytes.Buffer
	require.Equal(t, 0, run([]string{"export-wav", pcm, wavPath}, &out))

	out.Reset()
	require.Equal(t, 0, run([]string{"info", wavPath}, &out))
	assert.Contains(t, out.String(), "44100 Hz, 2 channels")
	assert.Contains(t, out.String(), "title: Boss Theme")
	assert.NotContains(t, out.String(), "duration:")
}

func TestRun_Empty(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "pack-7.pcm")

	var out bytes.Buffer
	require.Equal(t, 0, run([]string{"empty", path}, &out))
	require.NoError(t, msu1.Validate(path))
	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.LessOrEqual(t, st.Size(), int64(44500))

	assert.Equal(t, 1, run([]string{"empty", path}, &out), "refuses to replace without -force")
	assert.Equal(t, 0, run([]string{"empty", "-force", path}, &out))
}

func TestLoadPack(t *testing.T) {
	isolate(t)
	t.Setenv("MSUKIT_GAME", "Configured Game")
	t.Setenv("MSUKIT_ARTIST", "Configured Artist")

	cfg, err := config.Load()
	require.NoError(t, err)

	dir := t.TempDir()
	tracks := filepath.Join(dir, "tracks.json")
	require.NoError(t, os.WriteFile(tracks, []byte(`{
  "pack": "My Pack",
  "artist": "Pack Artist",
  "output_prefix": "out/game",
  "tracks": [
    {"track_number": 1, "file": "music/a.wav"},
    {"track_number": 2, "file": "music/b.wav"}
  ]
}`), 0o644))

	a := &app{cfg: cfg, logger: log.New(io.Discard, "", 0)}
	got, msu, pack, err := a.loadPack(tracks, "")
	require.NoError(t, err)

	assert.Len(t, got, 2)
	assert.Equal(t, filepath.Join(dir, "out", "game.msu"), msu)
	assert.Equal(t, filepath.Join(dir, "out", "game-2.pcm"), got[1].Output)
	assert.Equal(t, "Configured Game", pack.Game)
	assert.Equal(t, "My Pack", pack.Name)
	assert.Equal(t, "Pack Artist", pack.Artist)

	_, _, _, err = a.loadPack("", "")
	assert.Error(t, err)
}
