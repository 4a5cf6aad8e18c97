// SPDX-License-Identifier: EPL-2.0

package convert

import "testing"

func TestCleanMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"line one\nline two", "line oneline two"},
		{"a\r\nb\rc", "abc"},
		{"can't open `/tmp/x/in.pcm' for reading", "can't open for reading"},
		{"wrote 'out.PCM' ok", "wrote 'out.PCM' ok"},
		{"start 'a.pcm' mid `b.pcm' end", "start mid end"},
		{"file `x.wav' kept", "file `x.wav' kept"},
	}

	for _, tt := range tests {
		if got := CleanMessage(tt.in); got != tt.want {
			t.Errorf("CleanMessage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSoxTempPermissionClassifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  string
		want bool
	}{
		{"can't open `__sox_wrapper_temp.wav': Permission denied", true},
		{"__sox_wrapper_temp.wav: No such file", false},
		{"Permission denied", false},
		{"", false},
	}

	var c SoxTempPermissionClassifier
	for _, tt := range tests {
		if got := c.Transient(tt.msg); got != tt.want {
			t.Errorf("Transient(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}

	if NeverTransient.Transient(tests[0].msg) {
		t.Error("NeverTransient.Transient() = true, want false")
	}
}

func TestOutcome_UserMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		out  Outcome
		want string
	}{
		{succeeded("a.pcm", "Success!"), "Generated"},
		{warned("a.pcm", "clipped"), "Generated with message: clipped"},
		{failed("Bad Header"), "Bad Header"},
	}

	for _, tt := range tests {
		if got := tt.out.UserMessage(); got != tt.want {
			t.Errorf("%v.UserMessage() = %q, want %q", tt.out.Kind, got, tt.want)
		}
	}
}
