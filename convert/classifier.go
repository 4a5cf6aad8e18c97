// SPDX-License-Identifier: EPL-2.0

package convert

import "strings"

// TransientClassifier decides whether a failure message describes a race
// that a serial retry is expected to clear.
type TransientClassifier interface {
	Transient(message string) bool
}

// ClassifierFunc adapts a function to TransientClassifier.
type ClassifierFunc func(message string) bool

func (f ClassifierFunc) Transient(message string) bool { return f(message) }

// SoxTempPermissionClassifier matches the permission error msupcm++ reports
// when parallel runs collide on SoX's shared wrapper temp file. It keys on
// SoX's internal temp naming and may stop matching with other tool
// versions.
type SoxTempPermissionClassifier struct{}

func (SoxTempPermissionClassifier) Transient(message string) bool {
	return strings.Contains(message, "__sox_wrapper_temp") &&
		strings.Contains(message, "Permission denied")
}

// NeverTransient treats every failure as terminal.
var NeverTransient = ClassifierFunc(func(string) bool { return false })
