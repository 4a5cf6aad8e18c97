// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/ik5/msukit/cache"
	"github.com/ik5/msukit/looper"
	"github.com/ik5/msukit/watch"
)

func (a *app) detector() *looper.Detector {
	return looper.New(looper.Options{
		Path:     a.cfg.LooperPath,
		CacheDir: a.cfg.LooperCacheDir(),
		Logger:   a.logger,
	})
}

func runDetectLoop(a *app, args []string) error {
	fs := flag.NewFlagSet("detect-loop", flag.ContinueOnError)
	multiplier := fs.Float64("multiplier", looper.DefaultMinDurationMultiplier, "minimum loop length as a fraction of the song")
	minLen := fs.Int("min", 0, "minimum loop length in seconds")
	maxLen := fs.Int("max", 0, "maximum loop length in seconds")
	approxStart := fs.Int("approx-start", -1, "approximate loop start in seconds")
	approxEnd := fs.Int("approx-end", -1, "approximate loop end in seconds")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected one input file")
	}

	p := looper.Params{MinDurationMultiplier: *multiplier}
	if *minLen > 0 {
		p.MinLoopDuration = minLen
	}
	if *maxLen > 0 {
		p.MaxLoopDuration = maxLen
	}
	if *approxStart >= 0 && *approxEnd >= 0 {
		p.ApproxStart, p.ApproxEnd = approxStart, approxEnd
	}

	points, err := a.detector().Detect(fs.Arg(0), p)
	if err != nil {
		return err
	}

	for i, pt := range points {
		fmt.Fprintf(a.stdout, "%2d. start %d, end %d, score %.4f\n", i+1, pt.Start, pt.End, pt.Score)
	}
	return nil
}

func runWatch(a *app, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	tracksPath := fs.String("tracks", "", "msupcm++ tracks file")
	msuPath := fs.String("msu", "", ".msu file of the pack")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tracks, msu, pack, err := a.loadPack(*tracksPath, *msuPath)
	if err != nil {
		return err
	}

	orch := a.orchestrator(msu, pack, true)
	if err := orch.VerifyInstalled(); err != nil {
		return err
	}
	defer orch.DeleteTempDescriptors()

	w, err := watch.New(orch, tracks, a.cfg.WatchDebounce, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			a.logger.Printf("error closing watcher: %v", err)
		}
	}()

	a.logger.Printf("watching %d inputs of %d tracks", len(w.Inputs()), len(tracks))
	<-a.ctx.Done()
	return nil
}

func runSweep(a *app, _ []string) error {
	builds, err := cache.New(a.cfg.BuildCacheDir(), a.logger).Sweep(a.cfg.CacheRetention)
	if err != nil {
		return err
	}
	loops := a.detector().ClearCache(a.cfg.CacheRetention)

	orch := a.orchestrator("", a.cfg.SongPack(), false)
	pcms := orch.DeleteTempPcms(0)
	descriptors := orch.DeleteTempDescriptors()

	fmt.Fprintf(a.stdout, "removed %d build records, %d loop results, %d preview files, %d job files\n",
		builds, loops, pcms, descriptors)
	return nil
}
