package audioconvert

import (
	"math"

	"github.com/lanikai/alohaspa/node"
	"github.com/lanikai/alohaspa/param"
	"github.com/lanikai/alohaspa/pod"

	errors "golang.org/x/xerrors"
)

// Formats accepted on the input port before a profile is set, the first
// being the preferred one.
var inputFormats = []param.AudioFormat{
	param.AudioFormatF32P,
	param.AudioFormatF32,
	param.AudioFormatF32_OE,
	param.AudioFormatS32P,
	param.AudioFormatS32,
	param.AudioFormatS32_OE,
	param.AudioFormatS24_32P,
	param.AudioFormatS24_32,
	param.AudioFormatS24_32_OE,
	param.AudioFormatS24P,
	param.AudioFormatS24,
	param.AudioFormatS24_OE,
	param.AudioFormatS16P,
	param.AudioFormatS16,
	param.AudioFormatS16_OE,
	param.AudioFormatU8P,
	param.AudioFormatU8,
}

var (
	nodeParams = []param.ID{param.Profile}
	portParams = []param.ID{param.EnumFormat, param.Format, param.Buffers, param.Meta, param.IO}
)

const scratchSize = 1024

// enumFunc writes candidate index of a parameter into b, returning
// node.ErrDone when there are no more.
type enumFunc func(b *pod.Builder, index uint32) (pod.Pod, error)

// enumerate walks candidates from *index, returning the first that passes
// filter and advancing *index past it. On pod.ErrOutOfSpace *index is left
// at the candidate so the call can be retried with a larger builder.
func enumerate(index *uint32, filter pod.Pod, b *pod.Builder, next enumFunc) (pod.Pod, error) {
	if index == nil || b == nil {
		return nil, node.ErrInvalidArgument
	}
	var (
		buf     [scratchSize]byte
		scratch pod.Builder
	)
	for {
		scratch.Init(buf[:])
		p, err := next(&scratch, *index)
		if err != nil {
			return nil, err
		}
		res, err := pod.Filter(b, p, filter)
		if errors.Is(err, pod.ErrOutOfSpace) {
			return nil, err
		}
		*index++
		if errors.Is(err, pod.ErrNoIntersection) {
			continue
		}
		return res, err
	}
}

// EnumParams lists the parameters the node accepts.
func (n *Splitter) EnumParams(id param.ID, index *uint32, filter pod.Pod, b *pod.Builder) (pod.Pod, error) {
	return enumerate(index, filter, b, func(b *pod.Builder, index uint32) (pod.Pod, error) {
		switch id {
		case param.List:
			if index < uint32(len(nodeParams)) {
				return param.BuildList(b, nodeParams[index])
			}
		}
		return nil, node.ErrDone
	})
}

// PortEnumParams enumerates the parameters of a port.
func (n *Splitter) PortEnumParams(dir node.Direction, portID uint32, id param.ID, index *uint32, filter pod.Pod, b *pod.Builder) (pod.Pod, error) {
	p, err := n.port(dir, portID)
	if err != nil {
		return nil, err
	}
	n.log.Debug("splitter %s: enum param %v", n.name, id)
	return enumerate(index, filter, b, func(b *pod.Builder, index uint32) (pod.Pod, error) {
		return n.portParam(p, id, index, b)
	})
}

func (n *Splitter) portParam(p *port, id param.ID, index uint32, b *pod.Builder) (pod.Pod, error) {
	switch id {
	case param.List:
		if index < uint32(len(portParams)) {
			return param.BuildList(b, portParams[index])
		}

	case param.EnumFormat:
		if index > 0 {
			break
		}
		if p.direction == node.Output || p.haveFormat {
			return param.BuildAudioRaw(b, param.EnumFormat, &p.format)
		}
		return buildInputFormats(b)

	case param.Format:
		if !p.haveFormat {
			return nil, node.ErrNotReady
		}
		if index == 0 {
			return param.BuildAudioRaw(b, param.Format, &p.format)
		}

	case param.Buffers:
		if !p.haveFormat {
			return nil, node.ErrNotReady
		}
		if index == 0 {
			stride := int32(p.stride)
			return b.Object(param.ObjectParamBuffers, uint32(param.Buffers),
				pod.Prop{Key: param.BuffersKeyBuffers, Value: pod.NewRange(pod.Int(1), pod.Int(1), pod.Int(MaxBuffers))},
				pod.Prop{Key: param.BuffersKeyBlocks, Value: pod.Int(p.blocks)},
				pod.Prop{Key: param.BuffersKeySize, Value: pod.NewRange(
					pod.Int(1024*stride), pod.Int(16*stride), pod.Int(MaxSamples*stride))},
				pod.Prop{Key: param.BuffersKeyStride, Value: pod.Int(stride)},
				pod.Prop{Key: param.BuffersKeyAlign, Value: pod.Int(16)},
			)
		}

	case param.Meta:
		if !p.haveFormat {
			return nil, node.ErrNotReady
		}
		if index == 0 {
			return param.BuildMeta(b, param.MetaHeader, param.MetaHeaderSize)
		}

	case param.IO:
		switch index {
		case 0:
			return param.BuildIO(b, param.IOBuffers, ioBuffersSize)
		case 1:
			return param.BuildIO(b, param.IORange, ioRangeSize)
		}

	default:
		return nil, errors.Errorf("%v: %w", id, node.ErrUnknownParam)
	}
	return nil, node.ErrDone
}

// Sizes of the I/O areas in their shared-memory layout.
const (
	ioBuffersSize = 8
	ioRangeSize   = 16
)

func buildInputFormats(b *pod.Builder) (pod.Pod, error) {
	alts := make([]pod.Value, len(inputFormats))
	for i, f := range inputFormats {
		alts[i] = pod.Id(f)
	}
	return b.Object(param.ObjectFormat, uint32(param.EnumFormat),
		pod.Prop{Key: param.FormatKeyMediaType, Value: pod.Id(param.MediaTypeAudio)},
		pod.Prop{Key: param.FormatKeyMediaSubtype, Value: pod.Id(param.MediaSubtypeRaw)},
		pod.Prop{Key: param.FormatKeyAudioFormat, Value: pod.NewEnum(pod.Id(param.AudioFormatF32), alts...)},
		pod.Prop{Key: param.FormatKeyAudioRate, Value: pod.NewRange(pod.Int(DefaultRate), pod.Int(1), pod.Int(math.MaxInt32))},
		pod.Prop{Key: param.FormatKeyAudioChannels, Value: pod.NewRange(pod.Int(DefaultChannels), pod.Int(1), pod.Int(MaxPorts))},
	)
}
