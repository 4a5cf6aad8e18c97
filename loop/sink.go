// SPDX-License-Identifier: EPL-2.0

package loop

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/ik5/msukit/audio"
)

// Player modes accepted by SelectSink.
const (
	ModeAuto   = "auto"
	ModeDevice = "device"
	ModeExec   = "exec"
	ModeNull   = "null"
)

// Output is one playback opened on a sink.
type Output interface {
	Start() error
	// Done is closed once the output stopped, because the feed ran dry or
	// because Close was called.
	Done() <-chan struct{}
	Close() error
}

// AudioSink plays 16-bit little-endian stereo PCM at 44.1 kHz pulled from
// a Feed.
type AudioSink interface {
	Name() string
	Open(f *Feed) (Output, error)
	Close() error
}

// SelectSink builds the sink for mode. Auto tries the audio device first,
// then command on PATH, then falls back to a silent sink.
func SelectSink(mode, command string, logger *log.Logger) (AudioSink, error) {
	if logger == nil {
		logger = log.Default()
	}

	switch strings.ToLower(mode) {
	case ModeDevice:
		return NewMalgoSink()
	case ModeExec:
		return NewExecSink(command)
	case ModeNull:
		return &NullSink{Realtime: true}, nil
	case ModeAuto, "":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	device, err := NewMalgoSink()
	if err == nil {
		return device, nil
	}
	logger.Printf("audio device unavailable: %v", err)

	player, err := NewExecSink(command)
	if err == nil {
		return player, nil
	}
	logger.Printf("player command unavailable: %v", err)

	logger.Printf("no audio output found, playback will be silent")
	return &NullSink{Realtime: true}, nil
}

// NullSink consumes audio without playing it. With Realtime set it
// consumes at playback speed.
type NullSink struct {
	Realtime bool
}

func (*NullSink) Name() string { return ModeNull }
func (*NullSink) Close() error { return nil }

func (s *NullSink) Open(f *Feed) (Output, error) {
	return &nullOutput{feed: f, realtime: s.Realtime, done: make(chan struct{})}, nil
}

type nullOutput struct {
	feed     *Feed
	realtime bool
	done     chan struct{}
	once     sync.Once
}

func (o *nullOutput) Start() error {
	go func() {
		defer o.once.Do(func() { close(o.done) })

		buf := make([]byte, 4096)
		bytesPerSecond := float64(audio.SampleRate * audio.FrameSize)
		for {
			n, err := o.feed.Read(buf)
			if err != nil {
				return
			}
			if o.realtime {
				time.Sleep(time.Duration(float64(n) / bytesPerSecond * float64(time.Second)))
			}
		}
	}()
	return nil
}

func (o *nullOutput) Done() <-chan struct{} { return o.done }

func (o *nullOutput) Close() error {
	o.feed.Stop()
	<-o.done
	return nil
}

// ExecSink pipes audio into an external player's stdin.
type ExecSink struct {
	path string
	args []string
}

// NewExecSink looks command up on PATH. Known players get raw PCM
// arguments; anything else is given the command line as is.
func NewExecSink(command string) (*ExecSink, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		fields = []string{"aplay"}
	}

	path, err := exec.LookPath(fields[0])
	if err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}

	args := fields[1:]
	if len(args) == 0 {
		args = PlayerArgs(fields[0])
	}

	return &ExecSink{path: path, args: args}, nil
}

// PlayerArgs returns the arguments that make a known player read raw
// 44.1 kHz stereo 16-bit PCM from stdin.
func PlayerArgs(player string) []string {
	switch player {
	case "aplay":
		return []string{"-q", "-t", "raw", "-f", "S16_LE", "-c", "2", "-r", "44100", "-"}
	case "paplay", "pacat":
		return []string{"--raw", "--format=s16le", "--channels=2", "--rate=44100"}
	case "ffplay":
		return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", "-f", "s16le", "-ar", "44100", "-ch_layout", "stereo", "-i", "-"}
	default:
		return nil
	}
}

func (s *ExecSink) Name() string { return ModeExec }
func (s *ExecSink) Close() error { return nil }

func (s *ExecSink) Open(f *Feed) (Output, error) {
	cmd := exec.Command(s.path, s.args...)
	cmd.Stdin = f
	return &execOutput{cmd: cmd, feed: f, done: make(chan struct{})}, nil
}

type execOutput struct {
	cmd  *exec.Cmd
	feed *Feed
	done chan struct{}
}

func (o *execOutput) Start() error {
	if err := o.cmd.Start(); err != nil {
		close(o.done)
		return fmt.Errorf("loop: starting player: %w", err)
	}
	go func() {
		_ = o.cmd.Wait()
		close(o.done)
	}()
	return nil
}

func (o *execOutput) Done() <-chan struct{} { return o.done }

func (o *execOutput) Close() error {
	o.feed.Stop()
	select {
	case <-o.done:
	case <-time.After(2 * time.Second):
		if o.cmd.Process != nil {
			_ = o.cmd.Process.Kill()
		}
		<-o.done
	}
	return nil
}
