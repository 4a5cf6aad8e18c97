// SPDX-License-Identifier: EPL-2.0

package convert

// Kind classifies a generation result.
type Kind int

const (
	Success Kind = iota
	Warning
	Failure
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the resolved result of one Generate call. Path is set when an
// output file was produced.
type Outcome struct {
	Kind    Kind
	Path    string
	Message string
	// Retryable marks a first-attempt failure the classifier considers
	// transient. Only Failure outcomes carry it.
	Retryable bool
}

func succeeded(path, msg string) Outcome {
	return Outcome{Kind: Success, Path: path, Message: msg}
}

func warned(path, msg string) Outcome {
	return Outcome{Kind: Warning, Path: path, Message: msg}
}

func failed(msg string) Outcome {
	return Outcome{Kind: Failure, Message: msg}
}

// Generated reports whether an output file exists as a result of the call.
func (o Outcome) Generated() bool {
	return o.Kind != Failure
}

// UserMessage is the one-line text shown for the outcome.
func (o Outcome) UserMessage() string {
	switch o.Kind {
	case Success:
		return "Generated"
	case Warning:
		return "Generated with message: " + o.Message
	default:
		return o.Message
	}
}
