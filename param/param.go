// Package param defines the parameter identifiers, object types and property
// keys carried in tagged-value objects, and helpers to build and parse the
// common parameter objects.
package param

import "fmt"

// ID names a parameter class.
type ID uint32

const (
	Invalid ID = iota
	List
	PropInfo
	Props
	EnumFormat
	Format
	Buffers
	Meta
	IO
	EnumProfile
	Profile
)

var idNames = [...]string{
	Invalid:     "Invalid",
	List:        "List",
	PropInfo:    "PropInfo",
	Props:       "Props",
	EnumFormat:  "EnumFormat",
	Format:      "Format",
	Buffers:     "Buffers",
	Meta:        "Meta",
	IO:          "IO",
	EnumProfile: "EnumProfile",
	Profile:     "Profile",
}

func (id ID) String() string {
	if int(id) < len(idNames) {
		return idNames[id]
	}
	return fmt.Sprintf("ID(%d)", uint32(id))
}

// Object types.
const (
	ObjectPropInfo uint32 = 0x40001 + iota
	ObjectProps
	ObjectFormat
	ObjectParamBuffers
	ObjectParamMeta
	ObjectParamIO
	ObjectParamProfile
	ObjectParamList
)

// Keys of ObjectParamList.
const (
	ListKeyID uint32 = 1
)

// Keys of ObjectFormat.
const (
	FormatKeyMediaType    uint32 = 1
	FormatKeyMediaSubtype uint32 = 2

	FormatKeyAudioFormat   uint32 = 0x10001
	FormatKeyAudioFlags    uint32 = 0x10002
	FormatKeyAudioRate     uint32 = 0x10003
	FormatKeyAudioChannels uint32 = 0x10004
	FormatKeyAudioPosition uint32 = 0x10005
)

// Keys of ObjectParamBuffers.
const (
	BuffersKeyBuffers uint32 = 1 + iota
	BuffersKeyBlocks
	BuffersKeySize
	BuffersKeyStride
	BuffersKeyAlign
)

// Keys of ObjectParamMeta.
const (
	MetaKeyType uint32 = 1
	MetaKeySize uint32 = 2
)

// Keys of ObjectParamIO.
const (
	IOKeyID   uint32 = 1
	IOKeySize uint32 = 2
)

// Keys of ObjectParamProfile.
const (
	ProfileKeyID uint32 = 1 + iota
	ProfileKeyName
	ProfileKeyDirection
	ProfileKeyFormat
)

// IOType identifies a shared I/O area.
type IOType uint32

const (
	IOInvalid IOType = iota
	IOBuffers
	IORange
	IOClock
)

func (t IOType) String() string {
	switch t {
	case IOBuffers:
		return "Buffers"
	case IORange:
		return "Range"
	case IOClock:
		return "Clock"
	}
	return fmt.Sprintf("IOType(%d)", uint32(t))
}

// MetaType identifies per-buffer metadata.
type MetaType uint32

const (
	MetaInvalid MetaType = iota
	MetaHeader
)

// MetaHeaderSize is the size of a MetaHeader metadata block: flags u32,
// offset u32, pts i64, dts offset i64, seq u64.
const MetaHeaderSize = 32

type objectInfo struct {
	name string
	keys map[uint32]string
}

var objects = map[uint32]objectInfo{
	ObjectPropInfo: {name: "PropInfo"},
	ObjectProps:    {name: "Props"},
	ObjectFormat: {"Format", map[uint32]string{
		FormatKeyMediaType:     "mediaType",
		FormatKeyMediaSubtype:  "mediaSubtype",
		FormatKeyAudioFormat:   "format",
		FormatKeyAudioFlags:    "flags",
		FormatKeyAudioRate:     "rate",
		FormatKeyAudioChannels: "channels",
		FormatKeyAudioPosition: "position",
	}},
	ObjectParamBuffers: {"Buffers", map[uint32]string{
		BuffersKeyBuffers: "buffers",
		BuffersKeyBlocks:  "blocks",
		BuffersKeySize:    "size",
		BuffersKeyStride:  "stride",
		BuffersKeyAlign:   "align",
	}},
	ObjectParamMeta: {"Meta", map[uint32]string{
		MetaKeyType: "type",
		MetaKeySize: "size",
	}},
	ObjectParamIO: {"IO", map[uint32]string{
		IOKeyID:   "id",
		IOKeySize: "size",
	}},
	ObjectParamProfile: {"Profile", map[uint32]string{
		ProfileKeyID:        "id",
		ProfileKeyName:      "name",
		ProfileKeyDirection: "direction",
		ProfileKeyFormat:    "format",
	}},
	ObjectParamList: {"List", map[uint32]string{
		ListKeyID: "id",
	}},
}

// Names implements pod.Namer for the object types of this package.
type Names struct{}

func (Names) ObjectName(objectType uint32) string {
	return objects[objectType].name
}

func (Names) KeyName(objectType, key uint32) string {
	return objects[objectType].keys[key]
}
