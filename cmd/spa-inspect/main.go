// Command spa-inspect instantiates a plugin and prints its parameters.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	"github.com/lanikai/alohaspa/internal/logging"
	"github.com/lanikai/alohaspa/node"
	"github.com/lanikai/alohaspa/param"
	"github.com/lanikai/alohaspa/plugin"
	"github.com/lanikai/alohaspa/pod"

	_ "github.com/lanikai/alohaspa/plugins/audioconvert"
)

// Populated via -ldflags="-X ...".
var GitRevisionId string

var log = logging.DefaultLogger.WithTag("inspect")

var heading = color.New(color.FgCyan, color.Bold)

func main() {
	flag.Parse()

	if flagHelp {
		help()
		os.Exit(0)
	}
	if flagVersion {
		fmt.Println("spa-inspect", GitRevisionId)
		os.Exit(0)
	}

	if flagList {
		listFactories()
		return
	}

	handle, iface, err := plugin.Instantiate(flagFactory, flagInfo, &plugin.Support{Log: log}, plugin.InterfaceNode)
	if err != nil {
		log.Fatalf("%s: %v", flagFactory, err)
	}
	defer handle.Clear()
	n := iface.(node.Node)

	if flagChannels > 0 {
		if err := setProfile(n); err != nil {
			log.Fatalf("profile: %v", err)
		}
	}

	heading.Printf("Node %s\n", flagFactory)
	dumpParams(func(id param.ID, index *uint32, b *pod.Builder) (pod.Pod, error) {
		return n.EnumParams(id, index, nil, b)
	}, 1)

	nIn, _, nOut, _ := n.PortCount()
	in := make([]uint32, nIn)
	out := make([]uint32, nOut)
	nIn2, nOut2 := n.PortIDs(in, out)
	ports := func(dir node.Direction, ids []uint32) {
		for _, id := range ids {
			info, err := n.PortInfo(dir, id)
			if err != nil {
				log.Fatalf("%v port %d: %v", dir, id, err)
			}
			heading.Printf("%v port %d\n", dir, id)
			keys := make([]string, 0, len(info.Props))
			for k := range info.Props {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("  %s = %q\n", k, info.Props[k])
			}
			for _, pid := range []param.ID{param.EnumFormat, param.Format, param.Buffers, param.Meta, param.IO} {
				dumpParams(func(_ param.ID, index *uint32, b *pod.Builder) (pod.Pod, error) {
					return n.PortEnumParams(dir, id, pid, index, nil, b)
				}, 0, pid)
			}
		}
	}
	ports(node.Input, in[:nIn2])
	ports(node.Output, out[:nOut2])
}

func listFactories() {
	for _, f := range plugin.Factories() {
		heading.Println(f.Name())
		info := f.Info()
		keys := make([]string, 0, len(info))
		for k := range info {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s: %s\n", k, info[k])
		}
		var index uint32
		for {
			ii, err := f.EnumInterfaceInfo(&index)
			if err != nil {
				break
			}
			fmt.Printf("  interface: %s\n", ii.Type)
		}
	}
}

func setProfile(n node.Node) error {
	format, err := param.ParseAudioFormat(flagFormat)
	if err != nil {
		return err
	}
	rate := flagRate
	if rate == 0 {
		rate = 48000
	}
	info := &param.AudioInfo{Format: format, Rate: rate, Channels: flagChannels}
	if int(flagChannels) > len(info.Position) {
		return errors.Wrapf(node.ErrInvalidArgument, "%d channels", flagChannels)
	}
	copy(info.Position[:], param.DefaultPositions(int(flagChannels)))

	p, err := param.BuildAudioRaw(pod.NewBuilder(make([]byte, 1024)), param.Format, info)
	if err != nil {
		return err
	}
	if p, err = param.BuildProfile(pod.NewBuilder(make([]byte, 1024)), p); err != nil {
		return err
	}
	return n.SetParam(param.Profile, 0, p)
}

type enumFunc func(id param.ID, index *uint32, b *pod.Builder) (pod.Pod, error)

// dumpParams prints every value of the given ids. With list set, the ids are
// read from the List parameter first.
func dumpParams(enum enumFunc, list int, ids ...param.ID) {
	if list > 0 {
		var index uint32
		for {
			p, err := enum(param.List, &index, pod.NewBuilder(make([]byte, 256)))
			if err != nil {
				break
			}
			id, err := param.ParseList(p)
			if err != nil {
				log.Fatalf("list: %v", err)
			}
			ids = append(ids, id)
		}
	}

	buf := make([]byte, 4096)
	for _, id := range ids {
		var index uint32
		for {
			p, err := enum(id, &index, pod.NewBuilder(buf))
			if errors.Is(err, node.ErrDone) {
				break
			}
			if err != nil {
				fmt.Printf("  %v: %v\n", id, err)
				break
			}
			obj, err := pod.DecodeObject(p)
			if err != nil {
				log.Fatalf("%v: %v", id, err)
			}
			fmt.Printf("  %v:\n", id)
			if err := pod.Dump(os.Stdout, obj, param.Names{}); err != nil {
				log.Fatalf("%v: %v", id, err)
			}
		}
	}
}
