// SPDX-License-Identifier: EPL-2.0

package looper

import (
	"regexp"
	"strconv"
	"strings"
)

// Point is one candidate loop, in samples of the input file.
type Point struct {
	Start int64   `yaml:"start"`
	End   int64   `yaml:"end"`
	Score float64 `yaml:"score"`
}

var (
	loopStartRe = regexp.MustCompile(`LOOP_START: (\d+)`)
	loopEndRe   = regexp.MustCompile(`LOOP_END: (\d+)`)
	multiOutput = regexp.MustCompile(`^[0-9- .e\r\n]+$`)
)

// ParseSingle reads the LOOP_START / LOOP_END output of releases without
// ranked results.
func ParseSingle(out string) ([]Point, error) {
	start, ok := capture(loopStartRe, out)
	if !ok {
		return nil, ErrInvalidLoop
	}
	end, ok := capture(loopEndRe, out)
	if !ok {
		return nil, ErrInvalidLoop
	}
	return []Point{{Start: start, End: end}}, nil
}

func capture(re *regexp.Regexp, s string) (int64, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseMulti reads ranked results, one "start end _ _ score" line each.
func ParseMulti(out string) ([]Point, error) {
	if !multiOutput.MatchString(out) {
		return nil, ErrInvalidLoop
	}

	var points []Point
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 5 {
			return nil, ErrInvalidLoop
		}

		start, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, ErrInvalidLoop
		}
		end, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, ErrInvalidLoop
		}
		score, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, ErrInvalidLoop
		}

		points = append(points, Point{Start: start, End: end, Score: score})
	}

	if len(points) == 0 {
		return nil, ErrInvalidLoop
	}
	return points, nil
}

var (
	multiSpace  = regexp.MustCompile(`\s\s+`)
	underscores = regexp.MustCompile(`__+`)
	boxChars    = regexp.MustCompile(`[─╭╮╯╰│]+`)
	dashes      = regexp.MustCompile(`---+`)
)

const errorBanner = "+- Error -+"

// CleanError strips the box drawing the detector wraps its errors in.
func CleanError(msg string) string {
	if strings.Contains(msg, "│") {
		return strings.TrimSpace(strings.Split(msg, "│")[1])
	}

	msg = multiSpace.ReplaceAllString(msg, " ")
	msg = underscores.ReplaceAllString(msg, "_")
	msg = boxChars.ReplaceAllString(msg, "")
	msg = dashes.ReplaceAllString(msg, "-")

	if i := strings.Index(msg, errorBanner); i >= 0 {
		msg = "PyMusicLooper Error: " + msg[i:]
	}
	return msg
}
