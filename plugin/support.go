package plugin

import (
	"github.com/lanikai/alohaspa/internal/metrics"
)

// Log is the logging service handed to plugins.
type Log interface {
	Error(format string, a ...interface{})
	Warn(format string, a ...interface{})
	Info(format string, a ...interface{})
	Debug(format string, a ...interface{})
	Trace(n int, format string, a ...interface{})
}

// CPU feature flags.
const (
	CPUFlagMMX uint32 = 1 << iota
	CPUFlagSSE
	CPUFlagSSE2
	CPUFlagSSE3
	CPUFlagSSSE3
	CPUFlagSSE41
	CPUFlagSSE42
	CPUFlagAVX
	CPUFlagAVX2
	CPUFlagFMA
	CPUFlagNEON
)

// CPU reports processor features used to select optimized code paths.
type CPU interface {
	Flags() uint32
}

// Loop runs functions on the data goroutine. Invoke queues fn and, if block
// is set, waits until it has run. When the loop is not running fn is called
// directly.
type Loop interface {
	Invoke(fn func(), block bool) error
}

// Support bundles the services available to plugin instances.
type Support struct {
	Log      Log
	CPU      CPU
	DataLoop Loop

	// Metrics receives node counters. Nil keeps them unexported.
	Metrics *metrics.Metrics
}

// Lookup returns the service implementing the named interface, or nil.
func (s *Support) Lookup(typ string) interface{} {
	if s == nil {
		return nil
	}
	switch typ {
	case InterfaceLog:
		if s.Log != nil {
			return s.Log
		}
	case InterfaceCPU:
		if s.CPU != nil {
			return s.CPU
		}
	case InterfaceLoop:
		if s.DataLoop != nil {
			return s.DataLoop
		}
	}
	return nil
}

// NopLog discards everything.
type NopLog struct{}

func (NopLog) Error(format string, a ...interface{})        {}
func (NopLog) Warn(format string, a ...interface{})         {}
func (NopLog) Info(format string, a ...interface{})         {}
func (NopLog) Debug(format string, a ...interface{})        {}
func (NopLog) Trace(n int, format string, a ...interface{}) {}

// FixedCPU reports a fixed set of flags.
type FixedCPU uint32

func (c FixedCPU) Flags() uint32 {
	return uint32(c)
}
