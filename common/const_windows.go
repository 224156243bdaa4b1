//go:build windows

package common

import "os"

// PipePath returns the daemon's named pipe, taken from PipeNameEnv when
// set and AppName otherwise.
func PipePath() string {
	name := os.Getenv(PipeNameEnv)
	if name == "" {
		name = AppName
	}
	return PipePathFor(name)
}
