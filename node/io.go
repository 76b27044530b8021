package node

// Status is a set of process result flags, or a negative error code when
// stored in an I/O area.
type Status int32

const (
	StatusOK Status = 0

	// StatusNeedBuffer asks the driver for a new input buffer.
	StatusNeedBuffer Status = 1 << 0

	// StatusHaveBuffer announces a filled output buffer.
	StatusHaveBuffer Status = 1 << 1

	// StatusStopped reports that the node is not processing.
	StatusStopped Status = 1 << 2

	// StatusInvalid marks an I/O area that referenced a nonexistent buffer.
	StatusInvalid Status = -22

	// StatusNoBuffer marks an output whose buffer queue ran dry; its data
	// went to a scratch region and was dropped.
	StatusNoBuffer Status = -32
)

// Failed reports whether s is an error code.
func (s Status) Failed() bool {
	return s < 0
}

func (s Status) Has(flags Status) bool {
	return s >= 0 && s&flags == flags
}

// InvalidID marks an IOBuffers area that holds no buffer.
const InvalidID = ^uint32(0)

// IOBuffers is the per-port status cell shared between a node and its
// driver. It is read and written only from the data goroutine.
type IOBuffers struct {
	Status   Status
	BufferID uint32
}

// IORange limits the size of the data a node produces on an output.
type IORange struct {
	Offset  uint64
	MinSize uint32
	MaxSize uint32
}
