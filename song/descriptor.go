// SPDX-License-Identifier: EPL-2.0

package song

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Verbosity is the msupcm++ log level requested in every descriptor.
const Verbosity = 2

// Track is a top-level song: a Spec tree plus its number and output file.
type Track struct {
	Number int    `json:"track_number"`
	Title  string `json:"title,omitempty"`
	Output string `json:"output,omitempty"`
	Spec
}

// Pack carries the pack-wide values copied into every descriptor.
type Pack struct {
	Game          string
	Name          string
	Artist        string
	URL           string
	Normalization *float64
	Dither        *bool
	KeepTemps     bool
}

// Descriptor is the msupcm++ job file.
type Descriptor struct {
	Game          string   `json:"game,omitempty"`
	Pack          string   `json:"pack,omitempty"`
	Artist        string   `json:"artist,omitempty"`
	URL           string   `json:"url,omitempty"`
	OutputPrefix  string   `json:"output_prefix,omitempty"`
	Normalization *float64 `json:"normalization,omitempty"`
	Dither        *bool    `json:"dither,omitempty"`
	Verbosity     int      `json:"verbosity"`
	KeepTemps     bool     `json:"keep_temps"`
	FirstTrack    int      `json:"first_track,omitempty"`
	LastTrack     int      `json:"last_track,omitempty"`
	Tracks        []Track  `json:"tracks"`
}

// NewDescriptor builds the job file for tracks. The first/last track range
// covers the given tracks.
func NewDescriptor(p Pack, outputPrefix string, tracks ...Track) Descriptor {
	d := Descriptor{
		Game:          p.Game,
		Pack:          p.Name,
		Artist:        p.Artist,
		URL:           p.URL,
		OutputPrefix:  outputPrefix,
		Normalization: p.Normalization,
		Dither:        p.Dither,
		Verbosity:     Verbosity,
		KeepTemps:     p.KeepTemps,
		Tracks:        tracks,
	}

	for i, t := range tracks {
		if i == 0 || t.Number < d.FirstTrack {
			d.FirstTrack = t.Number
		}
		if i == 0 || t.Number > d.LastTrack {
			d.LastTrack = t.Number
		}
	}

	return d
}

// Marshal renders the descriptor as indented JSON. The output depends only
// on the descriptor's values.
func (d Descriptor) Marshal() ([]byte, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("song: %w", err)
	}
	return b, nil
}

// WriteFile writes the descriptor to path, creating parent directories.
func (d Descriptor) WriteFile(path string) error {
	b, err := d.Marshal()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("song: %w", err)
	}

	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("song: %w", err)
	}

	return nil
}

// PackInfo extracts the pack-wide values.
func (d Descriptor) PackInfo() Pack {
	return Pack{
		Game:          d.Game,
		Name:          d.Pack,
		Artist:        d.Artist,
		URL:           d.URL,
		Normalization: d.Normalization,
		Dither:        d.Dither,
		KeepTemps:     d.KeepTemps,
	}
}

// LoadTracks reads an msupcm++ tracks file. Relative input and output paths
// are resolved against the file's directory.
func LoadTracks(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("song: %w", err)
	}

	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("song: parsing %s: %w", path, err)
	}
	if len(d.Tracks) == 0 {
		return Descriptor{}, ErrNoTracks
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return Descriptor{}, fmt.Errorf("song: %w", err)
	}
	resolve := func(p string) string { return Resolve(base, p) }

	for i := range d.Tracks {
		t := &d.Tracks[i]
		t.Spec = t.Spec.Map(resolve)
		if t.Output == "" && d.OutputPrefix != "" {
			t.Output = fmt.Sprintf("%s-%d.pcm", d.OutputPrefix, t.Number)
		}
		if t.Output != "" {
			t.Output = resolve(t.Output)
		}
	}

	return d, nil
}

// Resolve makes p absolute relative to base unless it already is.
func Resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
