package logging

import (
	"github.com/fatih/color"
)

var (
	timestampColor = color.New(color.FgWhite)
	traceColor     = color.New(color.FgYellow)
)
