// SPDX-License-Identifier: EPL-2.0

package convert

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ik5/msukit/cache"
	"github.com/ik5/msukit/formats/msu1"
	"github.com/ik5/msukit/metadata"
	"github.com/ik5/msukit/song"
	"github.com/ik5/msukit/tool"
)

// DescriptorDir is the directory under the temp dir holding job descriptors.
const DescriptorDir = "msupcm"

// Options configures an Orchestrator.
type Options struct {
	// ToolPath is the msupcm++ executable.
	ToolPath string
	// TempDir holds job descriptors and preview PCMs.
	TempDir string
	// MsuPath is the pack's .msu file. Its directory anchors relative
	// paths in messages and its name prefixes descriptor files.
	MsuPath string
	Pack    song.Pack
	// Cache skips unchanged builds. Nil disables caching.
	Cache *cache.Cache
	// Classifier marks transient first-attempt failures. Nil uses
	// SoxTempPermissionClassifier.
	Classifier TransientClassifier
	Executor   tool.Executor
	Logger     *log.Logger
	// TrackDetails prefixes messages with the track number and output path.
	TrackDetails bool
	// FillTitles reads the title tag of a track's input when it has none.
	FillTitles bool
}

// Orchestrator turns songs into MSU1 files through msupcm++.
type Orchestrator struct {
	opts       Options
	runner     *tool.Runner
	classifier TransientClassifier
	logger     *log.Logger
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	classifier := opts.Classifier
	if classifier == nil {
		classifier = SoxTempPermissionClassifier{}
	}

	if opts.TempDir == "" {
		opts.TempDir = filepath.Join(os.TempDir(), "msukit")
	}

	runner := tool.NewRunner(opts.ToolPath)
	if opts.Executor != nil {
		runner.Executor = opts.Executor
	}

	return &Orchestrator{
		opts:       opts,
		runner:     runner,
		classifier: classifier,
		logger:     logger,
	}
}

// TempDir returns the scratch directory in use.
func (o *Orchestrator) TempDir() string { return o.opts.TempDir }

// Generate builds t.Output from t's spec. It never fails with a Go error:
// every path resolves into an Outcome. firstAttempt enables the transient
// failure classification used by batch retries.
func (o *Orchestrator) Generate(ctx context.Context, t song.Track, firstAttempt bool) (out Outcome) {
	var descriptorPath string

	defer func() {
		if r := recover(); r != nil {
			o.logger.Printf("error creating PCM file for track #%d - %s: %v", t.Number, t.Output, r)
			msg := MsgUnknown
			if o.opts.TrackDetails {
				msg = trackPrefix(t.Number, t.Output, msg)
			}
			out = failed(msg)
		}
		if descriptorPath != "" {
			if err := os.Remove(descriptorPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				o.logger.Printf("could not delete %s: %v", descriptorPath, err)
			}
		}
	}()

	if t.Output == "" {
		return failed(fmt.Sprintf("Track #%d - %s", t.Number, MsgMissingOutput))
	}
	if t.Mixed() {
		return failed(fmt.Sprintf("Track #%d - %s", t.Number, MsgMixedComposition))
	}
	if err := ctx.Err(); err != nil {
		return failed(o.message(t, MsgCancelled))
	}

	if o.opts.FillTitles && t.Title == "" && t.File != "" {
		t.Title = metadata.Read(t.File).Title
	}

	descriptorPath = o.descriptorPath()
	d := song.NewDescriptor(o.opts.Pack, o.outputPrefix(), t)
	if err := d.WriteFile(descriptorPath); err != nil {
		o.logger.Printf("writing %s: %v", descriptorPath, err)
	}
	if _, err := os.Stat(descriptorPath); err != nil {
		return failed(o.message(t, MsgInvalidJSON))
	}

	count, err := t.Validate()
	if err != nil {
		return failed(o.message(t, err.Error()))
	}
	if count == 0 {
		return failed(o.message(t, MsgNoInputs))
	}

	inputs := t.Inputs()
	if o.opts.Cache != nil && o.opts.Cache.IsCached(t.Output, descriptorPath, inputs) {
		o.logger.Printf("song %s matches cached data", t.Output)
		return succeeded(t.Output, o.message(t, MsgSuccess))
	}

	if err := ctx.Err(); err != nil {
		return failed(o.message(t, MsgCancelled))
	}

	res, toolErr := o.run(descriptorPath, t.Output)
	if toolErr == "" {
		if err := msu1.Validate(t.Output); err != nil {
			return failed(o.message(t, validationMessage(err)))
		}
		if o.opts.Cache != nil {
			if err := o.opts.Cache.Store(t.Output, descriptorPath, inputs); err != nil {
				o.logger.Printf("caching %s: %v", t.Output, err)
			}
		}
		o.logger.Printf("generated PCM file %s successfully", t.Output)
		return succeeded(t.Output, o.message(t, MsgSuccess))
	}

	if res.OutputAdvanced {
		msg := o.message(t, warningPrefix+CleanMessage(toolErr))
		o.logger.Print(msg)
		return warned(t.Output, msg)
	}

	msg := o.message(t, CleanMessage(toolErr))
	o.logger.Print(msg)
	out = failed(msg)
	out.Retryable = firstAttempt && o.classifier.Transient(toolErr)
	return out
}

// run invokes msupcm++ on the descriptor. The returned text is empty when
// the run succeeded and produced a fresh output.
func (o *Orchestrator) run(descriptorPath, output string) (tool.Result, string) {
	res, err := o.runner.Run([]string{descriptorPath}, output)
	switch {
	case errors.Is(err, tool.ErrNotFound):
		return res, MsgToolMissing
	case err != nil:
		o.logger.Printf("unknown error running msupcm++: %v", err)
		return res, MsgToolCrashed
	}

	if res.Failed() {
		o.logger.Printf("error running msupcm++: %s", res.Stderr)
		return res, res.Stderr
	}

	if !res.OutputAdvanced {
		msg := MsgSilentNoOutput
		if res.Stdout != "" {
			msg = noOutputPrefix + res.Stdout
		}
		o.logger.Printf("error running msupcm++: %s", msg)
		return res, msg
	}

	return res, ""
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, msu1.ErrNotCreated):
		return MsgNotCreated
	case errors.Is(err, msu1.ErrBadHeader):
		return MsgBadHeader
	case errors.Is(err, msu1.ErrBadLoopPoint):
		return MsgBadLoopPoint
	default:
		return err.Error()
	}
}

// VerifyInstalled runs the converter with -v and checks its banner.
func (o *Orchestrator) VerifyInstalled() error {
	res, err := o.runner.Run([]string{"-v"}, "")
	if err != nil {
		return fmt.Errorf("msupcm++ could not be validated at %s: %w", o.opts.ToolPath, err)
	}
	if res.Failed() {
		if strings.Contains(res.Stderr, "error while loading shared libraries") {
			return fmt.Errorf("%w: %s", ErrMissingSharedLibraries, res.Stderr)
		}
		return fmt.Errorf("%w: %s", ErrNotInstalled, res.Stderr)
	}
	if !strings.HasPrefix(res.Stdout, "msupcm v") {
		return fmt.Errorf("%w: unexpected version output %q", ErrNotInstalled, res.Stdout)
	}
	return nil
}

func (o *Orchestrator) message(t song.Track, msg string) string {
	if !o.opts.TrackDetails {
		return msg
	}
	return trackPrefix(t.Number, o.relative(t.Output), msg)
}

func (o *Orchestrator) relative(path string) string {
	if o.opts.MsuPath == "" {
		return path
	}
	rel, err := filepath.Rel(filepath.Dir(o.opts.MsuPath), path)
	if err != nil {
		return path
	}
	return rel
}

func (o *Orchestrator) msuStem() string {
	if o.opts.MsuPath == "" {
		return "msukit"
	}
	base := filepath.Base(o.opts.MsuPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (o *Orchestrator) outputPrefix() string {
	if o.opts.MsuPath == "" {
		return ""
	}
	return strings.TrimSuffix(o.opts.MsuPath, filepath.Ext(o.opts.MsuPath))
}

func (o *Orchestrator) descriptorPath() string {
	name := fmt.Sprintf("%s-msupcm-temp-%s.json", o.msuStem(), guid())
	return filepath.Join(o.opts.TempDir, DescriptorDir, name)
}

func guid() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
