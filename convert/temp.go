// SPDX-License-Identifier: EPL-2.0

package convert

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ik5/msukit/song"
)

// DefaultTempNormalization is the loudness used for preview renders.
const DefaultTempNormalization = -25.0

// TempPcmCap is the number of preview renders kept around.
const TempPcmCap = 10

// TempRequest describes a single-input preview render. Nil fields are
// omitted from the job. A nil Normalization uses DefaultTempNormalization.
type TempRequest struct {
	Input         string
	Loop          *int
	TrimStart     *int
	TrimEnd       *int
	Normalization *float64
	// TrackNumber only appears in messages and the descriptor.
	TrackNumber int
	// SkipCleanup keeps older preview renders.
	SkipCleanup bool
}

// CreateTempPcm renders req.Input into a fresh PCM under the temp dir.
// Older renders are pruned first so that at most TempPcmCap remain.
func (o *Orchestrator) CreateTempPcm(ctx context.Context, req TempRequest) Outcome {
	if !req.SkipCleanup {
		o.DeleteTempPcms(TempPcmCap)
	}

	norm := DefaultTempNormalization
	if req.Normalization != nil {
		norm = *req.Normalization
	}

	output := filepath.Join(o.opts.TempDir, guid()+".pcm")
	_ = os.Remove(output)

	t := song.Track{
		Number: req.TrackNumber,
		Output: output,
		Spec: song.Spec{
			File:          req.Input,
			Loop:          req.Loop,
			TrimStart:     req.TrimStart,
			TrimEnd:       req.TrimEnd,
			Normalization: &norm,
		},
	}

	// Preview messages never carry track details.
	preview := *o
	preview.opts.TrackDetails = false
	preview.opts.Cache = nil

	out := preview.Generate(ctx, t, false)
	switch out.Kind {
	case Success:
		o.logger.Printf("temp PCM %s created successfully", output)
	case Warning:
		o.logger.Printf("temp PCM %s created with warning: %s", output, out.Message)
	default:
		o.logger.Printf("temp PCM %s had an error: %s", output, out.Message)
	}
	return out
}

// DeleteTempPcms removes preview renders under the temp dir. A cap of zero
// or less removes all of them. Otherwise nothing happens while fewer than
// limit exist, and the oldest are removed so that limit-1 remain.
func (o *Orchestrator) DeleteTempPcms(limit int) int {
	type pcm struct {
		path string
		mod  time.Time
	}

	var files []pcm
	_ = filepath.WalkDir(o.opts.TempDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pcm") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, pcm{path: path, mod: info.ModTime()})
		return nil
	})

	if limit > 0 {
		if len(files) < limit {
			return 0
		}
		sort.Slice(files, func(i, j int) bool { return files[i].mod.Before(files[j].mod) })
		files = files[:len(files)-limit+1]
	}

	removed := 0
	for _, f := range files {
		if err := os.Remove(f.path); err != nil {
			o.logger.Printf("could not delete %s: %v", f.path, err)
			continue
		}
		removed++
	}
	return removed
}

// DeleteTempDescriptors removes job descriptors left behind by interrupted
// runs.
func (o *Orchestrator) DeleteTempDescriptors() int {
	matches, _ := filepath.Glob(filepath.Join(o.opts.TempDir, DescriptorDir, "*.json"))

	removed := 0
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			o.logger.Printf("could not delete %s: %v", m, err)
			continue
		}
		removed++
	}
	return removed
}
