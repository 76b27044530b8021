package audioconvert

import (
	"strconv"
	"strings"
	"unsafe"

	"github.com/lanikai/alohaspa/internal/cpu"
	"github.com/lanikai/alohaspa/node"
	"github.com/lanikai/alohaspa/param"
	"github.com/lanikai/alohaspa/plugin"

	"github.com/google/uuid"
	errors "golang.org/x/xerrors"
)

// FactoryName is the name the splitter registers under.
const FactoryName = "audioconvert.splitter"

// Instance info keys.
const (
	KeyNodeName      = "node.name"
	KeyCPUFlags      = "cpu.flags"
	KeyAudioFormat   = "audio.format"
	KeyAudioRate     = "audio.rate"
	KeyAudioChannels = "audio.channels"
	KeyAudioPosition = "audio.position"
)

func init() {
	plugin.RegisterFactory(Factory{})
}

// Factory creates Splitter instances.
type Factory struct{}

var interfaces = []plugin.InterfaceInfo{
	{Type: plugin.InterfaceNode},
}

func (Factory) Name() string {
	return FactoryName
}

func (Factory) Info() map[string]string {
	return map[string]string{
		"factory.description": "Split audio into planar mono channels",
	}
}

func (Factory) InstanceSize(info map[string]string) uintptr {
	return unsafe.Sizeof(Splitter{})
}

func (Factory) EnumInterfaceInfo(index *uint32) (plugin.InterfaceInfo, error) {
	if index == nil {
		return plugin.InterfaceInfo{}, node.ErrInvalidArgument
	}
	if *index >= uint32(len(interfaces)) {
		return plugin.InterfaceInfo{}, node.ErrDone
	}
	info := interfaces[*index]
	*index++
	return info, nil
}

// Init creates a splitter. Info may name the instance, override the CPU
// flags reported by support, and give an initial profile through the
// audio.* keys.
func (Factory) Init(info map[string]string, support *plugin.Support) (plugin.Handle, error) {
	name := info[KeyNodeName]
	if name == "" {
		name = "splitter-" + uuid.New().String()[:8]
	}
	n := newSplitter(name, support)

	if s, ok := info[KeyCPUFlags]; ok {
		flags, err := cpu.ParseFlags(s)
		if err != nil {
			return nil, errors.Errorf("%s: %w", KeyCPUFlags, err)
		}
		n.cpuFlags = flags
	}

	profile, ok, err := profileFromInfo(info)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := n.setProfile(&profile); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func profileFromInfo(info map[string]string) (param.AudioInfo, bool, error) {
	var profile param.AudioInfo
	channels, hasChannels := info[KeyAudioChannels]
	rate, hasRate := info[KeyAudioRate]
	if !hasChannels && !hasRate {
		return profile, false, nil
	}

	profile.Format = param.AudioFormatF32
	profile.Rate = DefaultRate
	profile.Channels = DefaultChannels
	if s, ok := info[KeyAudioFormat]; ok {
		f, err := param.ParseAudioFormat(s)
		if err != nil {
			return profile, false, err
		}
		profile.Format = f
	}
	if hasRate {
		v, err := strconv.ParseUint(rate, 10, 32)
		if err != nil || v == 0 {
			return profile, false, errors.Errorf("%s %q: %w", KeyAudioRate, rate, node.ErrInvalidArgument)
		}
		profile.Rate = uint32(v)
	}
	if hasChannels {
		v, err := strconv.ParseUint(channels, 10, 32)
		if err != nil || v == 0 || v > MaxPorts {
			return profile, false, errors.Errorf("%s %q: %w", KeyAudioChannels, channels, node.ErrInvalidArgument)
		}
		profile.Channels = uint32(v)
	}

	pos := param.DefaultPositions(int(profile.Channels))
	if s, ok := info[KeyAudioPosition]; ok {
		pos = pos[:0]
		for _, name := range strings.Split(s, ",") {
			ch, err := param.ParseChannel(strings.TrimSpace(name))
			if err != nil {
				return profile, false, err
			}
			pos = append(pos, ch)
		}
		if len(pos) != int(profile.Channels) {
			return profile, false, errors.Errorf("%s has %d entries for %d channels: %w",
				KeyAudioPosition, len(pos), profile.Channels, node.ErrInvalidArgument)
		}
	}
	copy(profile.Position[:], pos)
	return profile, true, nil
}
