package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

const envVar = "LOGLEVEL"

type tagLevel struct {
	tag   string
	level Level
}

var (
	tagLevelsMu sync.Mutex
	tagLevels   []tagLevel

	// Bumped by every configuration change; loggers re-resolve their level
	// when it moves.
	generation uint32 = 1
)

func invalidate() {
	atomic.AddUint32(&generation, 1)
}

func init() {
	if err := Configure(os.Getenv(envVar)); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid %s: %s\n", envVar, err)
	}
}

// Configure applies comma-separated "tag=level" directives. A directive
// without "tag=" sets the default level. Existing loggers pick up the new
// levels with their next message.
func Configure(directives string) error {
	tagLevelsMu.Lock()
	defer tagLevelsMu.Unlock()

	for _, d := range strings.Split(directives, ",") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		v := strings.SplitN(d, "=", 2)
		level, err := ParseLevel(v[len(v)-1])
		if err != nil {
			return fmt.Errorf("directive '%s': %v", d, err)
		}
		if len(v) == 1 {
			defaultLevel = level
		} else {
			tagLevels = append(tagLevels, tagLevel{v[0], level})
		}
	}

	invalidate()
	return nil
}

func lookupTag(tag string) (Level, bool) {
	tagLevelsMu.Lock()
	defer tagLevelsMu.Unlock()

	// Later directives win.
	for i := len(tagLevels) - 1; i >= 0; i-- {
		if tagLevels[i].tag == tag {
			return tagLevels[i].level, true
		}
	}
	return 0, false
}

func currentDefault() Level {
	tagLevelsMu.Lock()
	defer tagLevelsMu.Unlock()
	return defaultLevel
}
