// Package convert holds the sample transforms that turn any supported input
// format into planar 32-bit float, selected by format and CPU features.
package convert

import (
	"sync"

	"github.com/lanikai/alohaspa/param"
	"github.com/lanikai/alohaspa/plugin"

	"github.com/golang/groupcache/lru"
	errors "golang.org/x/xerrors"
)

// ErrNoConversion is returned when no transform handles a format pair.
var ErrNoConversion = errors.New("no conversion")

// Func converts frames of audio. Planar sources pass one plane per channel;
// interleaved sources pass a single plane. Destinations are always planar,
// one plane per channel. Planes must hold at least frames samples.
type Func func(dst, src [][]byte, frames int)

// Info describes one transform.
type Info struct {
	Src, Dst param.AudioFormat

	// Features lists the CPU features the transform is tuned for; zero
	// means it runs everywhere.
	Features uint32

	Name    string
	Process Func
}

var table = []Info{
	{param.AudioFormatF32P, param.AudioFormatF32P, 0, "copy", copyPlanes},
	{param.AudioFormatF32, param.AudioFormatF32P, 0, "f32_to_f32d", interleaved(readF32LE)},
	{param.AudioFormatF32_OE, param.AudioFormatF32P, 0, "f32_oe_to_f32d", interleaved(readF32BE)},

	{param.AudioFormatU8, param.AudioFormatF32P, 0, "u8_to_f32d", interleaved(readU8)},
	{param.AudioFormatU8P, param.AudioFormatF32P, 0, "u8d_to_f32d", planar(readU8)},

	{param.AudioFormatS16, param.AudioFormatF32P, plugin.CPUFlagSSE2, "s16_to_f32d_wide", s16ToF32dWide},
	{param.AudioFormatS16, param.AudioFormatF32P, 0, "s16_to_f32d", interleaved(readS16LE)},
	{param.AudioFormatS16_OE, param.AudioFormatF32P, 0, "s16_oe_to_f32d", interleaved(readS16BE)},
	{param.AudioFormatS16P, param.AudioFormatF32P, 0, "s16d_to_f32d", planar(readS16LE)},

	{param.AudioFormatS24, param.AudioFormatF32P, plugin.CPUFlagSSE2, "s24_to_f32d_wide", s24ToF32dWide},
	{param.AudioFormatS24, param.AudioFormatF32P, 0, "s24_to_f32d", interleaved(readS24LE)},
	{param.AudioFormatS24_OE, param.AudioFormatF32P, 0, "s24_oe_to_f32d", interleaved(readS24BE)},
	{param.AudioFormatS24P, param.AudioFormatF32P, 0, "s24d_to_f32d", planar(readS24LE)},

	{param.AudioFormatS24_32, param.AudioFormatF32P, 0, "s24_32_to_f32d", interleaved(readS24_32LE)},
	{param.AudioFormatS24_32_OE, param.AudioFormatF32P, 0, "s24_32_oe_to_f32d", interleaved(readS24_32BE)},
	{param.AudioFormatS24_32P, param.AudioFormatF32P, 0, "s24_32d_to_f32d", planar(readS24_32LE)},

	{param.AudioFormatS32, param.AudioFormatF32P, 0, "s32_to_f32d", interleaved(readS32LE)},
	{param.AudioFormatS32_OE, param.AudioFormatF32P, 0, "s32_oe_to_f32d", interleaved(readS32BE)},
	{param.AudioFormatS32P, param.AudioFormatF32P, 0, "s32d_to_f32d", planar(readS32LE)},
}

type key struct {
	src, dst param.AudioFormat
	features uint32
}

var (
	cacheMu sync.Mutex
	cache   = lru.New(64)
)

// Find returns the first transform from src to dst whose required features
// are all present in features.
func Find(src, dst param.AudioFormat, features uint32) (*Info, error) {
	k := key{src, dst, features}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if v, ok := cache.Get(k); ok {
		return v.(*Info), nil
	}
	for i := range table {
		info := &table[i]
		if info.Src != src || info.Dst != dst {
			continue
		}
		if info.Features != 0 && info.Features&features != info.Features {
			continue
		}
		cache.Add(k, info)
		return info, nil
	}
	return nil, errors.Errorf("%v to %v: %w", src, dst, ErrNoConversion)
}

// Formats lists every source format that converts to dst.
func Formats(dst param.AudioFormat) []param.AudioFormat {
	var list []param.AudioFormat
	seen := map[param.AudioFormat]bool{}
	for _, info := range table {
		if info.Dst == dst && !seen[info.Src] {
			seen[info.Src] = true
			list = append(list, info.Src)
		}
	}
	return list
}
