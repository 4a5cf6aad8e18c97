// SPDX-License-Identifier: EPL-2.0

package song

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Spec is one node of a song. A leaf names a single source File; a
// composite concatenates SubTracks or layers SubChannels, never both. Sample
// counts are relative to the node's own audio. Nil options inherit the
// converter's defaults.
type Spec struct {
	File          string   `json:"file,omitempty"`
	Loop          *int     `json:"loop,omitempty"`
	TrimStart     *int     `json:"trim_start,omitempty"`
	TrimEnd       *int     `json:"trim_end,omitempty"`
	FadeIn        *int     `json:"fade_in,omitempty"`
	FadeOut       *int     `json:"fade_out,omitempty"`
	CrossFade     *int     `json:"cross_fade,omitempty"`
	PadStart      *int     `json:"pad_start,omitempty"`
	PadEnd        *int     `json:"pad_end,omitempty"`
	Tempo         *float64 `json:"tempo,omitempty"`
	Normalization *float64 `json:"normalization,omitempty"`
	Compression   *bool    `json:"compression,omitempty"`

	SubTracks   []Spec `json:"sub_tracks,omitempty"`
	SubChannels []Spec `json:"sub_channels,omitempty"`
}

// IsLeaf reports whether the node has no children.
func (s Spec) IsLeaf() bool {
	return len(s.SubTracks) == 0 && len(s.SubChannels) == 0
}

// Mixed reports whether this node or any node below it has both
// sub-tracks and sub-channels.
func (s Spec) Mixed() bool {
	if len(s.SubTracks) > 0 && len(s.SubChannels) > 0 {
		return true
	}

	for _, c := range s.SubTracks {
		if c.Mixed() {
			return true
		}
	}
	for _, c := range s.SubChannels {
		if c.Mixed() {
			return true
		}
	}

	return false
}

// Inputs lists every source file in depth-first order: the node's own file,
// then its sub-tracks, then its sub-channels. The order is stable for a
// given tree and feeds the build cache.
func (s Spec) Inputs() []string {
	var files []string
	s.walk(func(n Spec) {
		if n.File != "" {
			files = append(files, n.File)
		}
	})
	return files
}

func (s Spec) walk(fn func(Spec)) {
	fn(s)
	for _, c := range s.SubTracks {
		c.walk(fn)
	}
	for _, c := range s.SubChannels {
		c.walk(fn)
	}
}

// Validate checks that every named file exists, in Inputs order, and
// returns how many there are. The first missing file is reported as a
// *MissingInputError.
func (s Spec) Validate() (int, error) {
	if s.Mixed() {
		return 0, ErrMixedComposition
	}

	inputs := s.Inputs()
	for _, path := range inputs {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return 0, &MissingInputError{Path: path}
			}
			return 0, fmt.Errorf("song: %w", err)
		}
	}

	return len(inputs), nil
}

// Map returns a copy of the tree with fn applied to every File.
func (s Spec) Map(fn func(string) string) Spec {
	out := s
	if out.File != "" {
		out.File = fn(out.File)
	}

	if s.SubTracks != nil {
		out.SubTracks = make([]Spec, len(s.SubTracks))
		for i, c := range s.SubTracks {
			out.SubTracks[i] = c.Map(fn)
		}
	}
	if s.SubChannels != nil {
		out.SubChannels = make([]Spec, len(s.SubChannels))
		for i, c := range s.SubChannels {
			out.SubChannels[i] = c.Map(fn)
		}
	}

	return out
}
