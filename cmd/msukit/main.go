// SPDX-License-Identifier: EPL-2.0

// Command msukit builds and auditions MSU-1 audio packs.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/ik5/msukit/config"
)

// Version of the command line tool.
const Version = "0.1.0"

type command struct {
	usage string
	run   func(app *app, args []string) error
}

var commands = map[string]command{
	"generate":    {"generate -tracks tracks.json [-msu pack.msu] [-track n] [-workers n]", runGenerate},
	"preview":     {"preview [-loop n] [-trim-start n] [-trim-end n] [-normalization db] [-play] input", runPreview},
	"validate":    {"validate file.pcm...", runValidate},
	"analyze":     {"analyze [-workers n] [-bounds] file.pcm...", runAnalyze},
	"info":        {"info input...", runInfo},
	"empty":       {"empty [-force] file.pcm...", runEmpty},
	"play":        {"play [-from-end] [-volume v] file.pcm", runPlay},
	"detect-loop": {"detect-loop [-multiplier m] [-min s] [-max s] [-approx-start s -approx-end s] input", runDetectLoop},
	"watch":       {"watch -tracks tracks.json [-msu pack.msu]", runWatch},
	"sweep":       {"sweep", runSweep},
	"encode":      {"encode [-loop n] input output.pcm", runEncode},
	"export-wav":  {"export-wav file.pcm output.wav", runExportWav},
	"gain":        {"gain (-db x | -percent p) file.pcm", runGain},
	"version":     {"version", runVersion},
}

type app struct {
	cfg    config.Config
	logger *log.Logger
	ctx    context.Context
	stdout io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	logger := log.New(os.Stderr, "msukit ", log.LstdFlags|log.Lmsgprefix)

	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		usage()
		return 2
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Printf("load configuration: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, logger: logger, ctx: ctx, stdout: stdout}
	if err := cmd.run(a, args[1:]); err != nil {
		logger.Printf("%s: %v", args[0], err)
		return 1
	}
	return 0
}

func usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(os.Stderr, "usage: msukit <command> [flags]")
	fmt.Fprintln(os.Stderr)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  msukit %s\n", commands[name].usage)
	}
}
