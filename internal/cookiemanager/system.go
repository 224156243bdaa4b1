package cookiemanager

import (
	"context"

	"github.com/warpdl/cookiebridge/internal/messenger"
	"github.com/warpdl/cookiebridge/pkg/cookiestore"
)

// VersionResult is the reply of system.getVersion.
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

// System answers daemon introspection calls.
type System struct {
	channel *messenger.MethodChannel
	version VersionResult
	caps    cookiestore.Capabilities
}

// NewSystem registers a System handler on channelName of m.
func NewSystem(m *messenger.Messenger, channelName string, version VersionResult, caps cookiestore.Capabilities) *System {
	s := &System{
		channel: m.Channel(channelName),
		version: version,
		caps:    caps,
	}
	s.channel.SetMethodCallHandler(s)
	return s
}

func (s *System) OnMethodCall(_ context.Context, call *messenger.MethodCall, result messenger.Result) {
	switch call.Method {
	case "getVersion":
		result.Success(s.version)
	case "getCapabilities":
		result.Success(s.caps)
	default:
		result.NotImplemented()
	}
}

// Dispose detaches the handler.
func (s *System) Dispose() {
	s.channel.ClearMethodCallHandler(s)
}
