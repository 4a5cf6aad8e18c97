// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ik5/msukit/loop"
)

func runPlay(a *app, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fromEnd := fs.Bool("from-end", false, "start shortly before the end to hear the loop")
	volume := fs.Float64("volume", 1, "volume between 0 and 1")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected one .pcm file")
	}

	return a.play(fs.Arg(0), *fromEnd, *volume)
}

// play runs an interactive session until the file ends, the user quits,
// or the process is interrupted.
func (a *app) play(path string, fromEnd bool, volume float64) error {
	sink, err := loop.SelectSink(a.cfg.Player, a.cfg.PlayerCommand, a.logger)
	if err != nil {
		return err
	}

	engine := loop.NewEngine(sink, a.logger)
	engine.PreviewSeconds = a.cfg.PreviewSeconds
	engine.SetVolume(volume)
	defer func() {
		if err := engine.Close(); err != nil {
			a.logger.Printf("error closing player: %v", err)
		}
	}()

	session, err := engine.Play(path, fromEnd)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "playing %s (%.1fs), commands: p pause/resume, s <0-1> seek, j <seconds> jump, v <0-1> volume, q quit\n",
		path, session.LengthSeconds())

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-a.ctx.Done():
			return nil
		case <-session.Done():
			return session.Err()
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if quit := a.control(engine, session, line); quit {
				return nil
			}
		}
	}
}

func (a *app) control(engine *loop.Engine, s *loop.PlaybackSession, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		fmt.Fprintf(a.stdout, "%s %.2fs / %.2fs\n", s.State(), s.PositionSeconds(), s.LengthSeconds())
		return false
	}

	arg := func() (float64, bool) {
		if len(fields) < 2 {
			fmt.Fprintln(a.stdout, "missing value")
			return 0, false
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			fmt.Fprintf(a.stdout, "bad value %q\n", fields[1])
			return 0, false
		}
		return v, true
	}

	switch fields[0] {
	case "q", "quit":
		return true
	case "p", "pause":
		s.Toggle()
	case "s", "seek":
		if v, ok := arg(); ok {
			if err := s.Seek(v); err != nil {
				fmt.Fprintln(a.stdout, err)
			}
		}
	case "j", "jump":
		if v, ok := arg(); ok {
			if err := s.JumpTo(v); err != nil {
				fmt.Fprintln(a.stdout, err)
			}
		}
	case "v", "volume":
		if v, ok := arg(); ok {
			engine.SetVolume(v)
		}
	default:
		fmt.Fprintf(a.stdout, "unknown command %q\n", fields[0])
	}
	return false
}
