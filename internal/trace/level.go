package trace

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // crash dumps only
	LevelPhase        // driver, stage and document boundaries
	LevelDetail       // plus compiler passes
	LevelDebug        // everything, including node-level work
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

// finest is the finest scope each level lets through; zero lets nothing through.
var finest = [...]Scope{
	LevelOff:    0,
	LevelError:  0,
	LevelPhase:  ScopeDocument,
	LevelDetail: ScopePass,
	LevelDebug:  ScopeNode,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag value to a Level; "" means off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(s)
	if s == "" {
		return LevelOff, nil
	}
	for l, name := range levelNames {
		if name == s {
			return Level(l), nil
		}
	}
	return LevelOff, errors.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
}

// ShouldEmit reports whether events of scope pass at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(finest) {
		return false
	}
	return scope != 0 && scope <= finest[l]
}
