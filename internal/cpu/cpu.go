// Package cpu detects processor features for selecting sample transforms.
package cpu

import (
	"strconv"
	"strings"

	"github.com/lanikai/alohaspa/plugin"

	xcpu "golang.org/x/sys/cpu"
	errors "golang.org/x/xerrors"
)

// CPU implements plugin.CPU.
type CPU struct {
	flags uint32
}

// New returns the features of the running processor. A non-empty override
// ("0x14" or "sse2,ssse3") replaces detection.
func New(override string) (*CPU, error) {
	if override == "" {
		return &CPU{Detect()}, nil
	}
	flags, err := ParseFlags(override)
	if err != nil {
		return nil, err
	}
	return &CPU{flags}, nil
}

func (c *CPU) Flags() uint32 {
	return c.flags
}

// Detect queries the running processor.
func Detect() uint32 {
	var flags uint32
	set := func(has bool, flag uint32) {
		if has {
			flags |= flag
		}
	}
	set(xcpu.X86.HasSSE2, plugin.CPUFlagSSE2|plugin.CPUFlagSSE|plugin.CPUFlagMMX)
	set(xcpu.X86.HasSSE3, plugin.CPUFlagSSE3)
	set(xcpu.X86.HasSSSE3, plugin.CPUFlagSSSE3)
	set(xcpu.X86.HasSSE41, plugin.CPUFlagSSE41)
	set(xcpu.X86.HasSSE42, plugin.CPUFlagSSE42)
	set(xcpu.X86.HasAVX, plugin.CPUFlagAVX)
	set(xcpu.X86.HasAVX2, plugin.CPUFlagAVX2)
	set(xcpu.X86.HasFMA, plugin.CPUFlagFMA)
	set(xcpu.ARM64.HasASIMD, plugin.CPUFlagNEON)
	return flags
}

var flagNames = []struct {
	name string
	flag uint32
}{
	{"mmx", plugin.CPUFlagMMX},
	{"sse", plugin.CPUFlagSSE},
	{"sse2", plugin.CPUFlagSSE2},
	{"sse3", plugin.CPUFlagSSE3},
	{"ssse3", plugin.CPUFlagSSSE3},
	{"sse4.1", plugin.CPUFlagSSE41},
	{"sse4.2", plugin.CPUFlagSSE42},
	{"avx", plugin.CPUFlagAVX},
	{"avx2", plugin.CPUFlagAVX2},
	{"fma", plugin.CPUFlagFMA},
	{"neon", plugin.CPUFlagNEON},
}

// ParseFlags accepts a number or a comma-separated list of feature names.
func ParseFlags(s string) (uint32, error) {
	if n, err := strconv.ParseUint(s, 0, 32); err == nil {
		return uint32(n), nil
	}
	var flags uint32
next:
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		for _, f := range flagNames {
			if f.name == name {
				flags |= f.flag
				continue next
			}
		}
		return 0, errors.Errorf("unknown cpu feature %q", name)
	}
	return flags, nil
}

// FormatFlags lists the names of the features in flags.
func FormatFlags(flags uint32) string {
	var names []string
	for _, f := range flagNames {
		if flags&f.flag != 0 {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, ",")
}
