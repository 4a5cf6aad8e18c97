// SPDX-License-Identifier: EPL-2.0

package metadata

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"
)

// Info is what the tags of an input file say about it.
type Info struct {
	Title  string
	Artist string
	Album  string
	URL    string
}

// Read returns the tag metadata of the audio file at path. Missing or
// unreadable tags are not an error: Title falls back to the file name
// without its extension and the other fields stay empty. A missing file
// yields an empty Info.
func Read(path string) Info {
	if _, err := os.Stat(path); err != nil {
		return Info{}
	}

	info := readTags(path)
	if info.Title == "" {
		info.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return info
}

func readTags(path string) Info {
	f, err := os.Open(path)
	if err != nil {
		return Info{}
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return Info{}
	}

	info := Info{
		Title:  strings.TrimSpace(meta.Title()),
		Artist: strings.TrimSpace(meta.Artist()),
		Album:  strings.TrimSpace(meta.Album()),
	}

	if raw := meta.Raw(); raw != nil {
		for _, key := range []string{"WOAR", "WCOP", "URL"} {
			if v, ok := raw[key].(string); ok && strings.TrimSpace(v) != "" {
				info.URL = strings.TrimSpace(v)
				break
			}
		}
	}

	return info
}

// IsMP3 reports whether Duration can measure path.
func IsMP3(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mp3")
}

// Duration walks the MP3 frames of path and sums their lengths in seconds.
// A truncated last frame ends the walk.
func Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	decoder := mp3.NewDecoder(f)
	var frame mp3.Frame
	var skipped int
	var total float64

	for {
		err := decoder.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return 0, err
		}
		total += frame.Duration().Seconds()
	}

	return total, nil
}
