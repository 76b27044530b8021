package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger writes leveled, tagged messages. It implements plugin.Log.
//
// A logger's level follows Configure: directives applied after a logger was
// derived still take effect. Resolving the level is lock-free unless the
// configuration changed since the last message.
type Logger struct {
	// Tag used to filter and classify log messages.
	Tag string

	parent   *Logger
	fallback *Level
	pinned   *Level

	// Configuration generation and level, packed as gen<<32 | level.
	resolved int64

	out io.Writer

	// Mutex to prevent messages from different goroutines from interleaving.
	// Shared by all derived loggers.
	mu *sync.Mutex
}

// Write to stderr by default.
var DefaultLogger = &Logger{out: os.Stderr, mu: new(sync.Mutex)}

// NewLogger returns a logger writing to out, at the level configured for tag.
func NewLogger(tag string, out io.Writer) *Logger {
	return &Logger{Tag: tag, out: out, mu: new(sync.Mutex)}
}

// Override the destination for this logger.
func (log *Logger) SetDestination(out io.Writer) {
	log.out = out
}

// Derive a new logger with the given tag. Unless a directive names the tag,
// it logs at the level of its parent.
func (log *Logger) WithTag(tag string) *Logger {
	return &Logger{Tag: tag, parent: log, out: log.out, mu: log.mu}
}

// Derive a new logger with the given default level. Directives for its tag
// still override it.
func (log *Logger) WithDefaultLevel(level Level) *Logger {
	return &Logger{Tag: log.Tag, parent: log, fallback: &level, out: log.out, mu: log.mu}
}

// SetLevel fixes the level of this logger, ignoring any directives.
func (log *Logger) SetLevel(level Level) {
	log.pinned = &level
	invalidate()
}

// Verbosity returns the level this logger currently logs at.
func (log *Logger) Verbosity() Level {
	g := atomic.LoadUint32(&generation)
	r := atomic.LoadInt64(&log.resolved)
	if uint32(r>>32) == g {
		return Level(int32(r))
	}
	l := log.resolve()
	atomic.StoreInt64(&log.resolved, int64(g)<<32|int64(uint32(l)))
	return l
}

func (log *Logger) resolve() Level {
	if log.pinned != nil {
		return *log.pinned
	}
	if l, ok := lookupTag(log.Tag); ok {
		return l
	}
	switch {
	case log.fallback != nil:
		return *log.fallback
	case log.parent != nil:
		return log.parent.Verbosity()
	}
	return currentDefault()
}

// Enabled reports whether messages at level would be written.
func (log *Logger) Enabled(level Level) bool {
	return level <= log.Verbosity()
}

// Wrapper for []byte that implements io.Writer. Simpler and cheaper than
// bytes.Buffer.
type buffer []byte

func (b *buffer) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}

func (b *buffer) writeByte(c byte) {
	*b = append(*b, c)
}

// A global buffer pool, shared across all loggers.
var bufPool = sync.Pool{
	New: func() interface{} {
		return make(buffer, 0, 256)
	},
}

// Log a message at the given level. Include the file and line number from
// 'calldepth' steps up the call stack.
func (log *Logger) Log(level Level, calldepth int, format string, a ...interface{}) {
	if !log.Enabled(level) {
		return
	}

	buf := bufPool.Get().(buffer)
	defer func() { bufPool.Put(buf[:0]) }()

	timestampColor.Fprint(&buf, time.Now().Format(timestampFormat))
	buf.writeByte(' ')
	level.color().Fprintf(&buf, "%c/%s", level.letter(), log.Tag)

	// Get the caller of Error()/Warn()/Info()/etc.
	_, file, line, ok := runtime.Caller(calldepth + 1)
	if !ok {
		file = "?"
	}
	fmt.Fprintf(&buf, "[%s:%d] ", filepath.Base(file), line)

	fmt.Fprintf(&buf, format, a...)
	if n := len(format); n == 0 || format[n-1] != '\n' {
		buf.writeByte('\n')
	}

	// Lock before writing to avoid interleaving of log messages.
	log.mu.Lock()
	defer log.mu.Unlock()
	if _, err := log.out.Write(buf); err != nil {
		panic(fmt.Sprintf("Failed to log to %v: %v", log.out, err))
	}
}

func (log *Logger) Error(format string, a ...interface{}) {
	log.Log(Error, 1, format, a...)
}

func (log *Logger) Warn(format string, a ...interface{}) {
	log.Log(Warn, 1, format, a...)
}

func (log *Logger) Info(format string, a ...interface{}) {
	log.Log(Info, 1, format, a...)
}

func (log *Logger) Debug(format string, a ...interface{}) {
	log.Log(Debug, 1, format, a...)
}

func (log *Logger) Trace(n int, format string, a ...interface{}) {
	log.Log(Level(n), 1, format, a...)
}

func (log *Logger) Fatalf(format string, v ...interface{}) {
	log.Log(Error, 1, format, v...)
	os.Exit(1)
}
