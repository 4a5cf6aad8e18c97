// SPDX-License-Identifier: EPL-2.0

package loop

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/ik5/msukit/audio"
)

// MalgoSink plays through the default audio device with miniaudio.
type MalgoSink struct {
	ctx *malgo.AllocatedContext
}

// NewMalgoSink initializes the audio backend. It fails on hosts without a
// usable device.
func NewMalgoSink() (*MalgoSink, error) {
	var backends []malgo.Backend
	switch runtime.GOOS {
	case "linux":
		backends = []malgo.Backend{malgo.BackendAlsa, malgo.BackendPulseaudio}
	case "windows":
		backends = []malgo.Backend{malgo.BackendWasapi}
	case "darwin":
		backends = []malgo.Backend{malgo.BackendCoreaudio}
	}

	ctx, err := malgo.InitContext(backends, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("loop: failed to initialize audio context: %w", err)
	}

	// Probe a device once so hosts without audio fall through to the next
	// sink at selection time.
	cfg := deviceConfig()
	dev, err := malgo.InitDevice(ctx.Context, cfg, malgo.DeviceCallbacks{})
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("loop: no playback device: %w", err)
	}
	dev.Uninit()

	return &MalgoSink{ctx: ctx}, nil
}

func deviceConfig() malgo.DeviceConfig {
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = audio.Channels
	cfg.SampleRate = audio.SampleRate
	return cfg
}

func (*MalgoSink) Name() string { return ModeDevice }

func (s *MalgoSink) Open(f *Feed) (Output, error) {
	out := &malgoOutput{feed: f, done: make(chan struct{})}

	dev, err := malgo.InitDevice(s.ctx.Context, deviceConfig(), malgo.DeviceCallbacks{
		Data: out.fill,
	})
	if err != nil {
		return nil, fmt.Errorf("loop: failed to initialize device: %w", err)
	}
	out.dev = dev

	return out, nil
}

func (s *MalgoSink) Close() error {
	if s.ctx == nil {
		return nil
	}
	err := s.ctx.Uninit()
	s.ctx.Free()
	s.ctx = nil
	return err
}

type malgoOutput struct {
	dev  *malgo.Device
	feed *Feed
	done chan struct{}
	once sync.Once
}

// fill runs on the device thread and must not block.
func (o *malgoOutput) fill(output, _ []byte, _ uint32) {
	n, err := o.feed.TryRead(output)
	clear(output[n:])
	if err != nil {
		o.finish()
	}
}

func (o *malgoOutput) finish() {
	o.once.Do(func() { close(o.done) })
}

func (o *malgoOutput) Start() error {
	if err := o.dev.Start(); err != nil {
		return fmt.Errorf("loop: failed to start device: %w", err)
	}
	return nil
}

func (o *malgoOutput) Done() <-chan struct{} { return o.done }

func (o *malgoOutput) Close() error {
	o.feed.Stop()
	o.dev.Uninit()
	o.finish()
	return nil
}
