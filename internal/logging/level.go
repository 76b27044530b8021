package logging

import (
	"strconv"
	"strings"

	"github.com/fatih/color"
	errors "golang.org/x/xerrors"
)

// Level of verbosity. Higher values log more; numeric levels above Debug
// select trace output.
type Level int

const (
	Error Level = iota - 2
	Warn
	Info
	Debug

	MaxLevel Level = 9
)

// Info is the default until LOGLEVEL or Configure says otherwise.
var defaultLevel = Info

type levelInfo struct {
	name  string
	color *color.Color
}

var levels = map[Level]levelInfo{
	Error: {"Error", color.New(color.FgRed, color.Bold)},
	Warn:  {"Warn", color.New(color.FgRed)},
	Info:  {"Info", color.New(color.Reset)},
	Debug: {"Debug", color.New(color.FgGreen)},
}

// ParseLevel accepts a level name or its first letter in any case, "trace"
// for MaxLevel, or a number between Error and MaxLevel.
func ParseLevel(s string) (Level, error) {
	u := strings.ToUpper(s)
	if u == "T" || u == "TRACE" {
		return MaxLevel, nil
	}
	for l, info := range levels {
		name := strings.ToUpper(info.name)
		if u == name || u == name[:1] {
			return l, nil
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Errorf("invalid logging level %q", s)
	}
	if l := Level(n); l >= Error && l <= MaxLevel {
		return l, nil
	}
	return 0, errors.Errorf("logging level %d out of range", n)
}

func (l Level) String() string {
	if info, ok := levels[l]; ok {
		return info.name
	}
	return strconv.Itoa(int(l))
}

// letter tags each line: E, W, I, D, or the trace level digit.
func (l Level) letter() byte {
	if info, ok := levels[l]; ok {
		return info.name[0]
	}
	return byte('0' + l)
}

func (l Level) color() *color.Color {
	if info, ok := levels[l]; ok {
		return info.color
	}
	return traceColor
}
