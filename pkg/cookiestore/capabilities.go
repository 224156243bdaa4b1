package cookiestore

// Capability levels of the platform cookie jar.
const (
	// LevelLegacy jars remove cookies synchronously and persist every write
	// eagerly; they have no flush primitive.
	LevelLegacy = 19
	// LevelModern jars remove cookies asynchronously with a completion
	// callback and persist on explicit flush.
	LevelModern = 21
)

// Capabilities selects the strategies a Store uses. It is fixed at
// construction.
type Capabilities struct {
	Level      int  `json:"level"`
	AsyncClear bool `json:"asyncClear"`
	Flush      bool `json:"flush"`
}

// CapabilitiesForLevel returns the capability set of a platform level.
func CapabilitiesForLevel(level int) Capabilities {
	modern := level >= LevelModern
	return Capabilities{
		Level:      level,
		AsyncClear: modern,
		Flush:      modern,
	}
}

// DefaultCapabilities returns the capabilities of the current level.
func DefaultCapabilities() Capabilities {
	return CapabilitiesForLevel(LevelModern)
}
