// SPDX-License-Identifier: EPL-2.0

package convert

import (
	"fmt"
	"regexp"
	"strings"
)

// User-facing messages.
const (
	MsgSuccess          = "Success!"
	MsgMissingOutput    = "Missing output PCM path"
	MsgMixedComposition = "Subtracks and subchannels can't be at the same level and be generated by msupcm++."
	MsgInvalidJSON      = "Valid MsuPcm++ json was not able to be created"
	MsgNoInputs         = "No input files specified"
	MsgToolMissing      = "MsuPcm++ path not specified or is invalid"
	MsgToolCrashed      = "Unknown error running MsuPcm++"
	MsgSilentNoOutput   = "MsuPcm++ ran but did not create the expected file or return an error message."
	MsgNotCreated       = "msupcm++ did not create the file, but did not return an error."
	MsgBadHeader        = "Bad Header"
	MsgBadLoopPoint     = "Bad loop point specified"
	MsgUnknown          = "Unknown error"
	MsgCancelled        = "Generation cancelled"

	warningPrefix  = "PCM Generated with msupcm++ warning: "
	noOutputPrefix = "MsuPcm++ did not create the expected file and returned with the following Message: "
)

var (
	lineEndings  = strings.NewReplacer("\r\n", "", "\n", "", "\r", "")
	tempPcmQuote = regexp.MustCompile("\\s[`'][^`']+\\.pcm[`']\\s")
)

// CleanMessage joins a multi-line tool message into one line and drops
// quoted .pcm paths, which only ever name msupcm++ scratch files.
func CleanMessage(s string) string {
	return tempPcmQuote.ReplaceAllString(lineEndings.Replace(s), " ")
}

func trackPrefix(number int, rel, msg string) string {
	return fmt.Sprintf("Track #%d - %s - %s", number, rel, msg)
}
