// Package node defines the contract between a media processing node and the
// driver that hosts it.
//
// Control methods (parameters, formats, buffers, I/O areas) are called from a
// single control goroutine. Process and ReuseBuffer are called from the data
// goroutine, which must not block, allocate or take locks.
package node

import (
	"github.com/lanikai/alohaspa/param"
	"github.com/lanikai/alohaspa/pod"
)

// Direction of a port.
type Direction uint32

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// Command is sent to a node to change its processing state.
type Command uint32

const (
	CommandSuspend Command = iota
	CommandPause
	CommandStart
	CommandEnable
	CommandDisable
	CommandFlush
	CommandDrain
	CommandMarker
)

// Event is emitted by a node.
type Event uint32

const (
	EventError Event = iota
	EventBuffering
	EventRequestRefresh
	// EventPortsChanged announces that ports were added or removed.
	EventPortsChanged
)

// Callbacks receive node events. Events are delivered synchronously on the
// goroutine that caused them.
type Callbacks struct {
	Event func(ev Event)
}

// Port flags.
const (
	PortCanUseBuffers uint64 = 1 << 3
	PortNoRef         uint64 = 1 << 5
	PortLive          uint64 = 1 << 6
)

// PortInfo describes a port. Props carry descriptive key/value pairs such
// as PropPortDSP and PropPortChannel.
type PortInfo struct {
	Flags uint64
	Rate  uint32
	Props map[string]string
}

const (
	PropPortDSP     = "port.dsp"
	PropPortChannel = "port.channel"
)

// Node is a media processing element with input and output ports.
type Node interface {
	// EnumParams writes the parameter at *index that passes filter into b
	// and advances *index. It returns ErrDone when there are no more.
	EnumParams(id param.ID, index *uint32, filter pod.Pod, b *pod.Builder) (pod.Pod, error)
	SetParam(id param.ID, flags uint32, p pod.Pod) error
	SetIO(id param.IOType, area interface{}) error
	SendCommand(cmd Command) error
	SetCallbacks(cb *Callbacks) error

	PortCount() (nInputs, maxInputs, nOutputs, maxOutputs uint32)
	PortIDs(inputs, outputs []uint32) (nInputs, nOutputs int)
	AddPort(dir Direction, portID uint32) error
	RemovePort(dir Direction, portID uint32) error
	PortInfo(dir Direction, portID uint32) (*PortInfo, error)

	PortEnumParams(dir Direction, portID uint32, id param.ID, index *uint32, filter pod.Pod, b *pod.Builder) (pod.Pod, error)
	PortSetParam(dir Direction, portID uint32, id param.ID, flags uint32, p pod.Pod) error
	PortUseBuffers(dir Direction, portID uint32, buffers []*Buffer) error
	PortAllocBuffers(dir Direction, portID uint32, params []pod.Pod, buffers []*Buffer) (int, error)
	// PortSetIO installs an I/O area: *IOBuffers for param.IOBuffers,
	// *IORange for param.IORange. A nil area removes it.
	PortSetIO(dir Direction, portID uint32, id param.IOType, area interface{}) error
	PortSendCommand(dir Direction, portID uint32, cmd Command) error

	// ReuseBuffer returns an output buffer to the node.
	ReuseBuffer(portID uint32, bufferID uint32) error

	// Process runs one cycle. The result combines StatusNeedBuffer and
	// StatusHaveBuffer, or is a negative Status when the input area named
	// a bad buffer.
	Process() (Status, error)
}
