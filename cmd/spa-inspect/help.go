package main

import (
	"fmt"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"
)

var (
	flagFactory  string
	flagInfo     map[string]string
	flagFormat   string
	flagRate     uint32
	flagChannels uint32
	flagList     bool
	flagHelp     bool
	flagVersion  bool
)

func init() {
	flag.StringVarP(&flagFactory, "factory", "f", "audioconvert.splitter", "Factory to instantiate")
	flag.StringToStringVarP(&flagInfo, "info", "i", nil, "Instance info")
	flag.StringVarP(&flagFormat, "format", "", "F32", "Profile sample format")
	flag.Uint32VarP(&flagRate, "rate", "r", 0, "Profile sample rate")
	flag.Uint32VarP(&flagChannels, "channels", "c", 0, "Profile channels")
	flag.BoolVarP(&flagList, "list", "l", false, "List factories and exit")

	flag.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
	flag.BoolVarP(&flagVersion, "version", "v", false, "Print version information and exit")
}

const helpString = `Inspect media processing plugins

Usage: spa-inspect [OPTION]...

Plugin:
  -f, --factory=NAME     Factory to instantiate (default: audioconvert.splitter)
  -i, --info=KEY=VALUE   Instance info, repeatable (e.g. audio.channels=4)
  -l, --list             List registered factories and exit

Profile:
  -c, --channels=NUM     Set a profile with this many channels before
                           enumerating ports (default: none)
  -r, --rate=NUM         Profile sample rate (default: 48000)
      --format=NAME      Profile sample format (default: F32)

Miscellaneous:
  -h, --help             Prints this help message and exits
  -v, --version          Prints version information and exits

Please report bugs to: aloha@lanikailabs.com`

// Help information is printed and program exits
func help() {
	r := color.New(color.FgRed)
	y := color.New(color.FgYellow)
	b := color.New(color.FgCyan)

	//   ___  _ __    __ _
	//  / __|| '_ \  / _` |
	//  \__ \| |_) || (_| |
	//  |___/| .__/  \__,_|
	//       |_|

	r.Printf("  ___ ")
	y.Printf(" _ __  ")
	b.Println("  __ _ ")

	r.Printf(" / __|")
	y.Printf("| '_ \\ ")
	b.Println(" / _` |")

	r.Printf(" \\__ \\")
	y.Printf("| |_) |")
	b.Println("| (_| |")

	r.Printf(" |___/")
	y.Printf("| .__/ ")
	b.Println(" \\__,_|")

	r.Printf("      ")
	y.Println("|_|    ")

	fmt.Println(helpString)
}
