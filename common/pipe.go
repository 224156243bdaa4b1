package common

import "strings"

const pipeNamespace = `\\.\pipe\`

// PipePathFor qualifies a named pipe name with the local pipe namespace.
// Names already in the namespace are returned as given; the prefix is
// matched without regard to case, as Windows does.
func PipePathFor(name string) string {
	if len(name) >= len(pipeNamespace) && strings.EqualFold(name[:len(pipeNamespace)], pipeNamespace) {
		return name
	}
	return pipeNamespace + name
}
