package node

// DataType describes the memory behind a buffer plane.
type DataType uint32

const (
	DataInvalid DataType = iota
	DataMemPtr
	DataMemFd
	DataDmaBuf
)

func (t DataType) String() string {
	switch t {
	case DataMemPtr:
		return "MemPtr"
	case DataMemFd:
		return "MemFd"
	case DataDmaBuf:
		return "DmaBuf"
	}
	return "Invalid"
}

// Chunk describes the valid region of a data plane.
type Chunk struct {
	Offset uint32
	Size   uint32
	Stride int32
	Flags  int32
}

// Data is one memory plane of a buffer. Memory is owned by whoever
// allocated the buffer; nodes only read and write through Data.
type Data struct {
	Type      DataType
	Flags     uint32
	Fd        int64
	MapOffset uint32
	MaxSize   uint32
	Data      []byte
	Chunk     *Chunk
}

// Meta is a typed metadata block attached to a buffer.
type Meta struct {
	Type uint32
	Data []byte
}

// Buffer is a set of data planes plus metadata.
type Buffer struct {
	Metas []Meta
	Datas []Data
}

// FindMeta returns the metadata block of the given type, or nil.
func (b *Buffer) FindMeta(typ uint32) []byte {
	for i := range b.Metas {
		if b.Metas[i].Type == typ {
			return b.Metas[i].Data
		}
	}
	return nil
}
