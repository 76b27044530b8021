// Package config loads the YAML description of a processing session used
// by the command line tools.
package config

import (
	"io/ioutil"

	"github.com/lanikai/alohaspa/node"
	"github.com/lanikai/alohaspa/param"

	"gopkg.in/yaml.v3"
	errors "golang.org/x/xerrors"
)

type Profile struct {
	Rate      uint32   `yaml:"rate"`
	Channels  uint32   `yaml:"channels"`
	Positions []string `yaml:"positions"`
}

type Input struct {
	// Sample format name, e.g. "F32" or "S16P".
	Format string `yaml:"format"`
}

type Buffers struct {
	// Buffers per port; zero takes the node's default.
	Count int32 `yaml:"count"`

	// "memptr" or "memfd".
	Memory string `yaml:"memory"`
}

// Config describes one node and how to drive it.
type Config struct {
	// LOGLEVEL-style directives, e.g. "info,splitter=debug".
	Log string `yaml:"log"`

	// CPU feature override, e.g. "sse2" or "0x0".
	CPU string `yaml:"cpu"`

	Factory string            `yaml:"factory"`
	Node    map[string]string `yaml:"node"`

	Profile Profile `yaml:"profile"`
	Input   Input   `yaml:"input"`
	Buffers Buffers `yaml:"buffers"`

	// Frames per cycle and number of cycles to run.
	Quantum uint32 `yaml:"quantum"`
	Cycles  int    `yaml:"cycles"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Factory: "audioconvert.splitter",
		Profile: Profile{Rate: 48000, Channels: 2},
		Input:   Input{Format: "F32"},
		Buffers: Buffers{Count: 2, Memory: "memptr"},
		Quantum: 256,
		Cycles:  4,
	}
}

// LoadConfig reads a YAML file on top of the defaults.
func LoadConfig(filePath string) (*Config, error) {
	c := Default()
	d, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	if err := Parse(d, c); err != nil {
		return nil, errors.Errorf("%s: %w", filePath, err)
	}
	return c, nil
}

// Parse decodes YAML into c, keeping values the document does not set.
func Parse(data []byte, c *Config) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	_, err := c.AudioInfo()
	if err == nil {
		_, err = c.Memory()
	}
	return err
}

// AudioInfo returns the profile: the input format at the profile rate with
// one channel per position.
func (c *Config) AudioInfo() (param.AudioInfo, error) {
	info := param.AudioInfo{
		Rate:     c.Profile.Rate,
		Channels: c.Profile.Channels,
	}
	format, err := c.InputFormat()
	if err != nil {
		return info, err
	}
	info.Format = format
	if info.Rate == 0 || info.Channels == 0 || info.Channels > param.MaxChannels {
		return info, errors.Errorf("profile rate %d, channels %d: %w", info.Rate, info.Channels, node.ErrInvalidArgument)
	}
	var pos []param.Channel
	switch len(c.Profile.Positions) {
	case 0:
		pos = param.DefaultPositions(int(info.Channels))
	case int(info.Channels):
		for _, name := range c.Profile.Positions {
			ch, err := param.ParseChannel(name)
			if err != nil {
				return info, err
			}
			pos = append(pos, ch)
		}
	default:
		return info, errors.Errorf("%d positions for %d channels: %w", len(c.Profile.Positions), info.Channels, node.ErrInvalidArgument)
	}
	copy(info.Position[:], pos)
	return info, nil
}

func (c *Config) InputFormat() (param.AudioFormat, error) {
	return param.ParseAudioFormat(c.Input.Format)
}

func (c *Config) Memory() (node.DataType, error) {
	switch c.Buffers.Memory {
	case "", "memptr":
		return node.DataMemPtr, nil
	case "memfd":
		return node.DataMemFd, nil
	}
	return node.DataInvalid, errors.Errorf("memory %q: %w", c.Buffers.Memory, node.ErrInvalidArgument)
}
