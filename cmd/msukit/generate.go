// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/ik5/msukit/batch"
	"github.com/ik5/msukit/cache"
	"github.com/ik5/msukit/convert"
	"github.com/ik5/msukit/song"
)

var errFailedTracks = errors.New("some tracks failed")

// loadPack reads a tracks file and returns its tracks with the .msu path
// they belong to. Pack values from the file win over configured defaults.
func (a *app) loadPack(tracksPath, msuPath string) ([]song.Track, string, song.Pack, error) {
	if tracksPath == "" {
		return nil, "", song.Pack{}, errors.New("-tracks is required")
	}

	d, err := song.LoadTracks(tracksPath)
	if err != nil {
		return nil, "", song.Pack{}, err
	}

	if msuPath == "" {
		if d.OutputPrefix != "" {
			msuPath = song.Resolve(filepath.Dir(tracksPath), d.OutputPrefix+".msu")
		} else {
			msuPath = filepath.Join(filepath.Dir(tracksPath), "msukit.msu")
		}
	}
	msuPath, err = filepath.Abs(msuPath)
	if err != nil {
		return nil, "", song.Pack{}, err
	}

	pack := a.cfg.SongPack()
	fromFile := d.PackInfo()
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&pack.Game, fromFile.Game},
		{&pack.Name, fromFile.Name},
		{&pack.Artist, fromFile.Artist},
		{&pack.URL, fromFile.URL},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
	if fromFile.Normalization != nil {
		pack.Normalization = fromFile.Normalization
	}
	if fromFile.Dither != nil {
		pack.Dither = fromFile.Dither
	}
	pack.KeepTemps = pack.KeepTemps || fromFile.KeepTemps

	return d.Tracks, msuPath, pack, nil
}

func (a *app) orchestrator(msuPath string, pack song.Pack, useCache bool) *convert.Orchestrator {
	var c *cache.Cache
	if useCache {
		c = cache.New(a.cfg.BuildCacheDir(), a.logger)
	}

	return convert.New(convert.Options{
		ToolPath:     a.cfg.MsuPcmPath,
		TempDir:      a.cfg.TempDir,
		MsuPath:      msuPath,
		Pack:         pack,
		Cache:        c,
		Logger:       a.logger,
		TrackDetails: true,
		FillTitles:   true,
	})
}

func runGenerate(a *app, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	tracksPath := fs.String("tracks", "", "msupcm++ tracks file")
	msuPath := fs.String("msu", "", ".msu file of the pack (default: output prefix + .msu)")
	only := fs.Int("track", 0, "generate only this track number")
	workers := fs.Int("workers", a.cfg.Workers, "concurrent msupcm++ runs")
	noCache := fs.Bool("no-cache", false, "regenerate even when inputs are unchanged")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tracks, msu, pack, err := a.loadPack(*tracksPath, *msuPath)
	if err != nil {
		return err
	}

	if *only > 0 {
		var picked []song.Track
		for _, t := range tracks {
			if t.Number == *only {
				picked = append(picked, t)
			}
		}
		if len(picked) == 0 {
			return fmt.Errorf("track #%d not found in %s", *only, *tracksPath)
		}
		tracks = picked
	}

	orch := a.orchestrator(msu, pack, !*noCache)
	if err := orch.VerifyInstalled(); err != nil {
		return err
	}
	defer orch.DeleteTempDescriptors()

	p := mpb.New(mpb.WithWidth(64), mpb.WithOutput(a.stdout))
	bar := p.AddBar(int64(len(tracks)),
		mpb.PrependDecorators(
			decor.Name("Generating: "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.EwmaETA(decor.ET_STYLE_GO, 60),
		),
	)

	sched := batch.New(orch, a.logger)
	sched.Workers = *workers
	sched.Progress = func(_, _ int, _ batch.JobResult) { bar.Increment() }

	report := sched.Run(a.ctx, tracks)
	if report.Cancelled {
		bar.Abort(false)
	}
	p.Wait()

	for _, r := range report.Results {
		if r.Skipped || r.Outcome.Kind == convert.Success {
			continue
		}
		fmt.Fprintf(a.stdout, "%s: %s\n", r.Outcome.Kind, r.Outcome.UserMessage())
	}

	fmt.Fprintf(a.stdout, "%d tracks in %s, %d warnings\n", len(tracks), report.Duration.Round(time.Millisecond), report.Warnings)
	if s := report.Summary(); s != "" {
		fmt.Fprintln(a.stdout, s)
		return errFailedTracks
	}
	if report.Cancelled {
		return a.ctx.Err()
	}
	return nil
}

func runPreview(a *app, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	loopPoint := fs.Int("loop", -1, "loop point in samples")
	trimStart := fs.Int("trim-start", -1, "trim start in samples")
	trimEnd := fs.Int("trim-end", -1, "trim end in samples")
	normalization := fs.Float64("normalization", convert.DefaultTempNormalization, "target loudness in dB")
	play := fs.Bool("play", false, "play the render once it is ready")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected one input file")
	}

	input, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		return err
	}

	req := convert.TempRequest{Input: input, Normalization: normalization}
	for _, f := range []struct {
		v   *int
		dst **int
	}{{loopPoint, &req.Loop}, {trimStart, &req.TrimStart}, {trimEnd, &req.TrimEnd}} {
		if *f.v >= 0 {
			*f.dst = f.v
		}
	}

	orch := a.orchestrator("", a.cfg.SongPack(), false)
	out := orch.CreateTempPcm(a.ctx, req)
	if !out.Generated() {
		return errors.New(out.UserMessage())
	}
	fmt.Fprintln(a.stdout, out.Path)

	if *play {
		return a.play(out.Path, false, 1)
	}
	return nil
}
