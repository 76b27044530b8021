package param

import (
	"fmt"

	"github.com/lanikai/alohaspa/pod"

	errors "golang.org/x/xerrors"
)

// Media types and subtypes.
const (
	MediaTypeAudio uint32 = 1
	MediaTypeVideo uint32 = 2

	MediaSubtypeRaw uint32 = 1
	MediaSubtypeDSP uint32 = 2
)

// AudioFormat is a sample format. Interleaved formats start at 0x100, planar
// formats at 0x200.
type AudioFormat uint32

const (
	AudioFormatUnknown AudioFormat = 0
	AudioFormatEncoded AudioFormat = 1
)

const (
	AudioFormatS8 AudioFormat = 0x101 + iota
	AudioFormatU8
	AudioFormatS16LE
	AudioFormatS16BE
	AudioFormatU16LE
	AudioFormatU16BE
	AudioFormatS24_32LE
	AudioFormatS24_32BE
	AudioFormatU24_32LE
	AudioFormatU24_32BE
	AudioFormatS32LE
	AudioFormatS32BE
	AudioFormatU32LE
	AudioFormatU32BE
	AudioFormatS24LE
	AudioFormatS24BE
	AudioFormatU24LE
	AudioFormatU24BE
	AudioFormatS20LE
	AudioFormatS20BE
	AudioFormatU20LE
	AudioFormatU20BE
	AudioFormatS18LE
	AudioFormatS18BE
	AudioFormatU18LE
	AudioFormatU18BE
	AudioFormatF32LE
	AudioFormatF32BE
	AudioFormatF64LE
	AudioFormatF64BE
	AudioFormatULAW
	AudioFormatALAW
)

const (
	AudioFormatU8P AudioFormat = 0x201 + iota
	AudioFormatS16P
	AudioFormatS24_32P
	AudioFormatS32P
	AudioFormatS24P
	AudioFormatF32P
	AudioFormatF64P
	AudioFormatS8P
)

// Native-endian aliases; the _OE variants have the opposite byte order.
const (
	AudioFormatS16       = AudioFormatS16LE
	AudioFormatS16_OE    = AudioFormatS16BE
	AudioFormatS24_32    = AudioFormatS24_32LE
	AudioFormatS24_32_OE = AudioFormatS24_32BE
	AudioFormatS32       = AudioFormatS32LE
	AudioFormatS32_OE    = AudioFormatS32BE
	AudioFormatS24       = AudioFormatS24LE
	AudioFormatS24_OE    = AudioFormatS24BE
	AudioFormatF32       = AudioFormatF32LE
	AudioFormatF32_OE    = AudioFormatF32BE
	AudioFormatF64       = AudioFormatF64LE
)

var audioFormatNames = map[AudioFormat]string{
	AudioFormatUnknown:   "UNKNOWN",
	AudioFormatEncoded:   "ENCODED",
	AudioFormatS8:        "S8",
	AudioFormatU8:        "U8",
	AudioFormatS16LE:     "S16LE",
	AudioFormatS16BE:     "S16BE",
	AudioFormatU16LE:     "U16LE",
	AudioFormatU16BE:     "U16BE",
	AudioFormatS24_32LE:  "S24_32LE",
	AudioFormatS24_32BE:  "S24_32BE",
	AudioFormatU24_32LE:  "U24_32LE",
	AudioFormatU24_32BE:  "U24_32BE",
	AudioFormatS32LE:     "S32LE",
	AudioFormatS32BE:     "S32BE",
	AudioFormatU32LE:     "U32LE",
	AudioFormatU32BE:     "U32BE",
	AudioFormatS24LE:     "S24LE",
	AudioFormatS24BE:     "S24BE",
	AudioFormatU24LE:     "U24LE",
	AudioFormatU24BE:     "U24BE",
	AudioFormatS20LE:     "S20LE",
	AudioFormatS20BE:     "S20BE",
	AudioFormatU20LE:     "U20LE",
	AudioFormatU20BE:     "U20BE",
	AudioFormatS18LE:     "S18LE",
	AudioFormatS18BE:     "S18BE",
	AudioFormatU18LE:     "U18LE",
	AudioFormatU18BE:     "U18BE",
	AudioFormatF32LE:     "F32LE",
	AudioFormatF32BE:     "F32BE",
	AudioFormatF64LE:     "F64LE",
	AudioFormatF64BE:     "F64BE",
	AudioFormatULAW:      "ULAW",
	AudioFormatALAW:      "ALAW",
	AudioFormatU8P:       "U8P",
	AudioFormatS16P:      "S16P",
	AudioFormatS24_32P:   "S24_32P",
	AudioFormatS32P:      "S32P",
	AudioFormatS24P:      "S24P",
	AudioFormatF32P:      "F32P",
	AudioFormatF64P:      "F64P",
	AudioFormatS8P:       "S8P",
}

func (f AudioFormat) String() string {
	if s, ok := audioFormatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("AudioFormat(%#x)", uint32(f))
}

// ParseAudioFormat looks up a format by name, e.g. "F32LE" or "S16P". The
// native-endian spellings "S16", "S32", "F32" etc. are also accepted.
func ParseAudioFormat(name string) (AudioFormat, error) {
	for f, s := range audioFormatNames {
		if s == name || s == name+"LE" {
			return f, nil
		}
	}
	return AudioFormatUnknown, errors.Errorf("unknown audio format %q", name)
}

// IsPlanar reports whether each channel is stored in its own plane.
func (f AudioFormat) IsPlanar() bool {
	return f >= 0x200 && f < 0x300
}

// Width returns the size in bytes of one sample of one channel.
func (f AudioFormat) Width() int {
	switch f {
	case AudioFormatS8, AudioFormatU8, AudioFormatS8P, AudioFormatU8P, AudioFormatULAW, AudioFormatALAW:
		return 1
	case AudioFormatS16LE, AudioFormatS16BE, AudioFormatU16LE, AudioFormatU16BE, AudioFormatS16P:
		return 2
	case AudioFormatS24LE, AudioFormatS24BE, AudioFormatU24LE, AudioFormatU24BE, AudioFormatS24P,
		AudioFormatS20LE, AudioFormatS20BE, AudioFormatU20LE, AudioFormatU20BE,
		AudioFormatS18LE, AudioFormatS18BE, AudioFormatU18LE, AudioFormatU18BE:
		return 3
	case AudioFormatF64LE, AudioFormatF64BE, AudioFormatF64P:
		return 8
	}
	return 4
}

// Audio format flags.
const (
	AudioFlagUnpositioned uint32 = 1 << 0
)

// MaxChannels bounds the channel position map of an AudioInfo.
const MaxChannels = 128

// Channel is a speaker position.
type Channel uint32

const (
	ChannelUnknown Channel = iota
	ChannelNA
	ChannelMono
	ChannelFL
	ChannelFR
	ChannelFC
	ChannelLFE
	ChannelSL
	ChannelSR
	ChannelFLC
	ChannelFRC
	ChannelRC
	ChannelRL
	ChannelRR
	ChannelTC
	ChannelTFL
	ChannelTFC
	ChannelTFR
	ChannelTRL
	ChannelTRC
	ChannelTRR
	ChannelRLC
	ChannelRRC
	ChannelFLW
	ChannelFRW
	ChannelLFE2
	ChannelFLH
	ChannelFCH
	ChannelFRH
	ChannelTFLC
	ChannelTFRC
	ChannelTSL
	ChannelTSR
	ChannelLLFE
	ChannelRLFE
	ChannelBC
	ChannelBLC
	ChannelBRC
)

// ChannelAux0 is the first auxiliary, unpositioned channel.
const ChannelAux0 Channel = 0x1000

var channelNames = [...]string{
	"UNK", "NA", "MONO", "FL", "FR", "FC", "LFE", "SL", "SR", "FLC", "FRC",
	"RC", "RL", "RR", "TC", "TFL", "TFC", "TFR", "TRL", "TRC", "TRR", "RLC",
	"RRC", "FLW", "FRW", "LFE2", "FLH", "FCH", "FRH", "TFLC", "TFRC", "TSL",
	"TSR", "LLFE", "RLFE", "BC", "BLC", "BRC",
}

func (c Channel) String() string {
	if int(c) < len(channelNames) {
		return channelNames[c]
	}
	if c >= ChannelAux0 {
		return fmt.Sprintf("AUX%d", uint32(c-ChannelAux0))
	}
	return fmt.Sprintf("Channel(%d)", uint32(c))
}

// ParseChannel looks up a channel position by its short name.
func ParseChannel(name string) (Channel, error) {
	for i, s := range channelNames {
		if s == name {
			return Channel(i), nil
		}
	}
	var n uint32
	if _, err := fmt.Sscanf(name, "AUX%d", &n); err == nil {
		return ChannelAux0 + Channel(n), nil
	}
	return ChannelUnknown, errors.Errorf("unknown channel position %q", name)
}

// DefaultPositions returns a conventional layout for n channels.
func DefaultPositions(n int) []Channel {
	switch n {
	case 1:
		return []Channel{ChannelMono}
	case 2:
		return []Channel{ChannelFL, ChannelFR}
	case 3:
		return []Channel{ChannelFL, ChannelFR, ChannelLFE}
	case 4:
		return []Channel{ChannelFL, ChannelFR, ChannelRL, ChannelRR}
	case 6:
		return []Channel{ChannelFL, ChannelFR, ChannelFC, ChannelLFE, ChannelRL, ChannelRR}
	case 8:
		return []Channel{ChannelFL, ChannelFR, ChannelFC, ChannelLFE, ChannelRL, ChannelRR, ChannelSL, ChannelSR}
	}
	pos := make([]Channel, n)
	for i := range pos {
		pos[i] = ChannelAux0 + Channel(i)
	}
	return pos
}

// AudioInfo describes raw audio.
type AudioInfo struct {
	Format   AudioFormat
	Flags    uint32
	Rate     uint32
	Channels uint32
	Position [MaxChannels]Channel
}

// Stride returns the bytes per frame of one data plane: one sample for
// planar formats, one sample of every channel for interleaved formats.
func (info *AudioInfo) Stride() int {
	if info.Format.IsPlanar() {
		return info.Format.Width()
	}
	return info.Format.Width() * int(info.Channels)
}

// Blocks returns the number of data planes.
func (info *AudioInfo) Blocks() int {
	if info.Format.IsPlanar() {
		return int(info.Channels)
	}
	return 1
}

func (info *AudioInfo) String() string {
	return fmt.Sprintf("%v %dHz %dch", info.Format, info.Rate, info.Channels)
}

// BuildAudioRaw writes an audio/raw Format object with the given parameter id.
func BuildAudioRaw(b *pod.Builder, id ID, info *AudioInfo) (pod.Pod, error) {
	b.PushObject(ObjectFormat, uint32(id))
	b.Prop(FormatKeyMediaType, 0)
	b.Id(MediaTypeAudio)
	b.Prop(FormatKeyMediaSubtype, 0)
	b.Id(MediaSubtypeRaw)
	if info.Format != AudioFormatUnknown {
		b.Prop(FormatKeyAudioFormat, 0)
		b.Id(uint32(info.Format))
	}
	if info.Flags != 0 {
		b.Prop(FormatKeyAudioFlags, 0)
		b.Id(info.Flags)
	}
	if info.Rate != 0 {
		b.Prop(FormatKeyAudioRate, 0)
		b.Int(int32(info.Rate))
	}
	if info.Channels != 0 {
		b.Prop(FormatKeyAudioChannels, 0)
		b.Int(int32(info.Channels))
		if info.Flags&AudioFlagUnpositioned == 0 && info.Channels <= MaxChannels {
			b.Prop(FormatKeyAudioPosition, 0)
			b.PushArray()
			for _, c := range info.Position[:info.Channels] {
				b.Id(uint32(c))
			}
			b.Pop()
		}
	}
	return b.Pop()
}

// ParseFormat returns the media type and subtype of a Format object.
func ParseFormat(p pod.Pod) (mediaType, mediaSubtype uint32, err error) {
	_, err = pod.ParseObject(p, ObjectFormat,
		pod.Field{Key: FormatKeyMediaType, Type: pod.TypeId, Dest: &mediaType},
		pod.Field{Key: FormatKeyMediaSubtype, Type: pod.TypeId, Dest: &mediaSubtype},
	)
	return
}

// ParseAudioRaw reads a fixated audio/raw Format object into info. Format,
// rate and channels are required; a missing position map marks the format
// unpositioned.
func ParseAudioRaw(p pod.Pod, info *AudioInfo) error {
	var (
		format   uint32
		rate     int32
		channels int32
		flags    uint32
		position []uint32
	)
	_, err := pod.ParseObject(p, ObjectFormat,
		pod.Field{Key: FormatKeyAudioFormat, Type: pod.TypeId, Dest: &format},
		pod.Field{Key: FormatKeyAudioRate, Type: pod.TypeInt, Dest: &rate},
		pod.Field{Key: FormatKeyAudioChannels, Type: pod.TypeInt, Dest: &channels},
		pod.Field{Key: FormatKeyAudioPosition, Type: pod.TypeArray, Optional: true, Dest: &position},
		pod.Field{Key: FormatKeyAudioFlags, Type: pod.TypeId, Optional: true, Dest: &flags},
	)
	if err != nil {
		return err
	}
	if rate <= 0 || channels <= 0 || channels > MaxChannels {
		return errors.Errorf("rate %d, channels %d: %w", rate, channels, pod.ErrInvalid)
	}

	*info = AudioInfo{
		Format:   AudioFormat(format),
		Flags:    flags,
		Rate:     uint32(rate),
		Channels: uint32(channels),
	}
	if len(position) < int(channels) {
		info.Flags |= AudioFlagUnpositioned
	}
	for i := 0; i < int(channels) && i < len(position); i++ {
		info.Position[i] = Channel(position[i])
	}
	return nil
}
