// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ik5/msukit"
	"github.com/ik5/msukit/analysis"
	"github.com/ik5/msukit/batch"
	"github.com/ik5/msukit/formats/msu1"
	"github.com/ik5/msukit/formats/wav"
	"github.com/ik5/msukit/metadata"
)

var errInvalidFiles = errors.New("some files are invalid")

func runValidate(a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("expected at least one .pcm file")
	}

	bad := 0
	for _, path := range args {
		if err := msu1.Validate(path); err != nil {
			fmt.Fprintf(a.stdout, "%s: %v\n", path, err)
			bad++
			continue
		}
		h, _ := msu1.ReadFileHeader(path)
		fmt.Fprintf(a.stdout, "%s: ok, %d samples, loop at %d\n", path, h.TotalSamples, h.LoopPoint)
	}

	if bad > 0 {
		return errInvalidFiles
	}
	return nil
}

func runAnalyze(a *app, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	workers := fs.Int("workers", a.cfg.Workers, "files analyzed at once")
	bounds := fs.Bool("bounds", false, "also report the first and last audible samples")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("expected at least one .pcm file")
	}

	failed := 0
	for _, r := range batch.Analyze(a.ctx, fs.Args(), *workers) {
		if r.Err != nil {
			fmt.Fprintf(a.stdout, "%s: %v\n", r.Path, r.Err)
			failed++
			continue
		}
		fmt.Fprintf(a.stdout, "%s: average %.2f dB, peak %.2f dB\n", r.Path, r.Result.AverageDB, r.Result.PeakDB)

		if *bounds {
			first, err := analysis.FirstAudibleSampleFile(r.Path)
			if err != nil {
				return err
			}
			last, err := analysis.LastAudibleSampleFile(r.Path)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "  audible from sample %d to %d\n", first, last)
		}
	}

	if failed > 0 {
		return errInvalidFiles
	}
	return nil
}

func runInfo(a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("expected at least one input file")
	}

	for _, path := range args {
		info, err := analysis.InputInfo(path)
		if err != nil {
			fmt.Fprintf(a.stdout, "%s: %v\n", path, err)
			continue
		}
		line := fmt.Sprintf("%s: %d Hz, %d channels", path, info.SampleRate, info.Channels)
		if info.Warning != "" {
			line += " (" + info.Warning + ")"
		}
		fmt.Fprintln(a.stdout, line)

		tags := metadata.Read(path)
		fmt.Fprintf(a.stdout, "  title: %s\n", tags.Title)
		for _, f := range []struct{ name, value string }{
			{"artist", tags.Artist},
			{"album", tags.Album},
			{"url", tags.URL},
		} {
			if f.value != "" {
				fmt.Fprintf(a.stdout, "  %s: %s\n", f.name, f.value)
			}
		}

		if metadata.IsMP3(path) {
			dur, err := metadata.Duration(path)
			if err != nil {
				a.logger.Printf("reading duration of %s: %v", path, err)
				continue
			}
			fmt.Fprintf(a.stdout, "  duration: %.2fs\n", dur)
		}
	}
	return nil
}

func runEmpty(a *app, args []string) error {
	fs := flag.NewFlagSet("empty", flag.ContinueOnError)
	force := fs.Bool("force", false, "replace existing files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("expected at least one .pcm file")
	}

	for _, path := range fs.Args() {
		if _, err := os.Stat(path); err == nil && !*force {
			return fmt.Errorf("%s already exists, use -force to replace it", path)
		}
		if err := msu1.WriteEmpty(path); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "wrote empty track %s\n", path)
	}
	return nil
}

func runEncode(a *app, args []string) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	loopPoint := fs.Int("loop", 0, "loop point in samples")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("expected an input and an output file")
	}

	frames, err := msukit.EncodeFile(fs.Arg(0), fs.Arg(1), int32(*loopPoint))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "wrote %s, %d samples\n", fs.Arg(1), frames)
	return nil
}

func runExportWav(a *app, args []string) error {
	if len(args) != 2 {
		return errors.New("expected a .pcm file and an output .wav file")
	}

	src, err := msu1.Open(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	if err := wav.ExportFile(args[1], src); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "wrote %s\n", args[1])
	return nil
}

func runGain(a *app, args []string) error {
	fs := flag.NewFlagSet("gain", flag.ContinueOnError)
	db := fs.Float64("db", 0, "gain in decibels")
	percent := fs.Float64("percent", 0, "volume in percent")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("expected at least one .pcm file")
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["db"] == set["percent"] {
		return errors.New("use exactly one of -db and -percent")
	}

	for _, path := range fs.Args() {
		var err error
		if set["db"] {
			err = msu1.ApplyGain(path, *db)
		} else {
			err = msu1.ApplyVolume(path, *percent)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintf(a.stdout, "adjusted %s\n", path)
	}
	return nil
}

func runVersion(a *app, _ []string) error {
	fmt.Fprintf(a.stdout, "msukit %s\n", Version)

	orch := a.orchestrator("", a.cfg.SongPack(), false)
	if err := orch.VerifyInstalled(); err != nil {
		fmt.Fprintf(a.stdout, "msupcm++: %v\n", err)
	} else {
		fmt.Fprintf(a.stdout, "msupcm++: installed at %s\n", a.cfg.MsuPcmPath)
	}

	if v, err := a.detector().Probe(); err != nil {
		fmt.Fprintf(a.stdout, "pymusiclooper: %v\n", strings.TrimSpace(err.Error()))
	} else {
		fmt.Fprintf(a.stdout, "pymusiclooper: %s\n", v)
	}
	return nil
}
