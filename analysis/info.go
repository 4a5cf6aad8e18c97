// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"fmt"

	"github.com/ik5/msukit"
	"github.com/ik5/msukit/audio"
)

// Info describes an input file as the decoder sees it.
type Info struct {
	SampleRate int
	Channels   int
	// Warning is set when the file will be resampled by the converter.
	Warning string
}

// InputInfo reads the format of the audio file at path.
func InputInfo(path string) (Info, error) {
	src, err := msukit.OpenAudio(path)
	if err != nil {
		return Info{}, err
	}
	defer src.Close()

	info := Info{SampleRate: src.SampleRate(), Channels: src.Channels()}
	if info.SampleRate != audio.SampleRate {
		info.Warning = fmt.Sprintf("sample rate is %d Hz, MSU-1 tracks play at %d Hz", info.SampleRate, audio.SampleRate)
	}

	return info, nil
}
