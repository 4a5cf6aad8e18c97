// SPDX-License-Identifier: EPL-2.0

package cache

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestHashString(t *testing.T) {
	t.Parallel()

	if got, want := HashString("abc"), "A9993E364706816ABA3E25717850C26C9CD0D89D"; got != want {
		t.Errorf("HashString(abc) = %s, want %s", got, want)
	}
	if got := Key("out.pcm"); got != HashString("out.pcm") {
		t.Errorf("Key() = %s, want hash of the path", got)
	}
}

func TestHashFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "f")
	writeFile(t, path, "abc")

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}
	if got != HashString("abc") {
		t.Errorf("HashFile() = %s, want %s", got, HashString("abc"))
	}

	if _, err := HashFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("HashFile(missing) error = nil, want error")
	}
}

func TestValue_Order(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	desc, out, a, b := filepath.Join(dir, "d.json"), filepath.Join(dir, "o.pcm"), filepath.Join(dir, "a"), filepath.Join(dir, "b")
	writeFile(t, desc, "{}")
	writeFile(t, out, "MSU1")
	writeFile(t, a, "first")
	writeFile(t, b, "second")

	v, err := Value(desc, out, []string{a, b})
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}

	parts := strings.Split(v, Separator)
	want := []string{HashString("{}"), HashString("MSU1"), HashString("first"), HashString("second")}
	if len(parts) != len(want) {
		t.Fatalf("Value() has %d parts, want %d", len(parts), len(want))
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Errorf("part %d = %s, want %s", i, parts[i], want[i])
		}
	}

	swapped, _ := Value(desc, out, []string{b, a})
	if swapped == v {
		t.Error("Value() ignores input order")
	}
}

type fixture struct {
	cache  *Cache
	desc   string
	out    string
	inputs []string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	dir := t.TempDir()
	f := fixture{
		cache:  New(filepath.Join(dir, "cache"), log.New(io.Discard, "", 0)),
		desc:   filepath.Join(dir, "job.json"),
		out:    filepath.Join(dir, "pack-1.pcm"),
		inputs: []string{filepath.Join(dir, "intro.wav"), filepath.Join(dir, "loop.wav")},
	}
	writeFile(t, f.desc, `{"tracks":[]}`)
	writeFile(t, f.out, "MSU1data")
	writeFile(t, f.inputs[0], "intro")
	writeFile(t, f.inputs[1], "loop")

	return f
}

func TestCache_StoreThenHit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	if f.cache.IsCached(f.out, f.desc, f.inputs) {
		t.Fatal("IsCached() = true before Store")
	}
	if err := f.cache.Store(f.out, f.desc, f.inputs); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if !f.cache.IsCached(f.out, f.desc, f.inputs) {
		t.Fatal("IsCached() = false after Store")
	}

	if _, err := os.Stat(filepath.Join(f.cache.Dir(), Key(f.out))); err != nil {
		t.Errorf("record file: %v", err)
	}
}

func TestCache_Invalidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(t *testing.T, f fixture)
	}{
		{"input changed", func(t *testing.T, f fixture) { writeFile(t, f.inputs[1], "loop v2") }},
		{"descriptor changed", func(t *testing.T, f fixture) { writeFile(t, f.desc, `{"tracks":[1]}`) }},
		{"output changed", func(t *testing.T, f fixture) { writeFile(t, f.out, "MSU1other") }},
		{"output removed", func(t *testing.T, f fixture) {
			if err := os.Remove(f.out); err != nil {
				t.Fatal(err)
			}
		}},
		{"input removed", func(t *testing.T, f fixture) {
			if err := os.Remove(f.inputs[0]); err != nil {
				t.Fatal(err)
			}
		}},
		{"record removed", func(t *testing.T, f fixture) {
			if err := f.cache.Remove(f.out); err != nil {
				t.Fatal(err)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			if err := f.cache.Store(f.out, f.desc, f.inputs); err != nil {
				t.Fatal(err)
			}

			tt.mutate(t, f)

			if f.cache.IsCached(f.out, f.desc, f.inputs) {
				t.Error("IsCached() = true after mutation")
			}
		})
	}
}

func TestCache_StoreMissingInput(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if err := f.cache.Store(f.out, f.desc, append(f.inputs, "/does/not/exist.wav")); err == nil {
		t.Error("Store() error = nil, want error")
	}
}

func TestCache_Sweep(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if err := f.cache.Store(f.out, f.desc, f.inputs); err != nil {
		t.Fatal(err)
	}

	fresh := filepath.Join(f.cache.Dir(), "FRESH")
	stale := filepath.Join(f.cache.Dir(), "STALE")
	writeFile(t, fresh, "x")
	writeFile(t, stale, "x")

	old := time.Now().Add(-40 * 24 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	removed, err := f.cache.Sweep(DefaultRetention)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale record still present: %v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh record removed: %v", err)
	}
	if !f.cache.IsCached(f.out, f.desc, f.inputs) {
		t.Error("Sweep() dropped a current record")
	}
}

func TestCache_SweepMissingDir(t *testing.T) {
	t.Parallel()

	c := New(filepath.Join(t.TempDir(), "never-created"), nil)
	if n, err := c.Sweep(time.Hour); n != 0 || err != nil {
		t.Errorf("Sweep() = %d, %v, want 0, nil", n, err)
	}
}
