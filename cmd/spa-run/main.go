// Command spa-run instantiates a node from a YAML description, negotiates
// its ports and drives it with a test tone.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/lanikai/alohaspa/internal/config"
	"github.com/lanikai/alohaspa/internal/cpu"
	"github.com/lanikai/alohaspa/internal/driver"
	"github.com/lanikai/alohaspa/internal/logging"
	"github.com/lanikai/alohaspa/internal/loop"
	"github.com/lanikai/alohaspa/internal/metrics"
	"github.com/lanikai/alohaspa/node"
	"github.com/lanikai/alohaspa/plugin"

	_ "github.com/lanikai/alohaspa/plugins/audioconvert"

	"github.com/pborman/getopt/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Populated via -ldflags="-X ...".
var GitRevisionId string

var log = logging.DefaultLogger.WithTag("spa-run")

// help displays usage information and exits successfully (GNU convention)
func help() {
	fmt.Println("spa-run [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -c, --config=<file>         YAML session description")
	fmt.Println("                                (default: built-in stereo F32 session)")
	fmt.Println("  -n, --cycles=<int>          Process cycles to run; 0 runs until interrupted")
	fmt.Println("                                (default: from config)")
	fmt.Println("  -f, --frequency=<float>     Tone frequency of the first channel, in Hz")
	fmt.Println("                                (default: 440)")
	fmt.Println("      --log=<str>             Logging directives, e.g. \"info,driver=debug\"")
	fmt.Println("  -m, --metrics               Print node counters on exit")
	fmt.Println("  -h, --help                  Display this message and exit successfully")
	fmt.Println("  -v, --version               Display version and exit successfully")
	fmt.Println("")
	fmt.Println("Please report bugs to <aloha@lanikailabs.com>. Mahalo!")
}

// version displays information and exits successfully (GNU convention)
func version() {
	fmt.Println("spa-run", GitRevisionId)
	fmt.Println("Copyright 2019 Lanikai Labs LLC. All rights reserved.")
}

// Command line flags
var (
	configFlag    = getopt.StringLong("config", 'c', "", "")
	cyclesFlag    = getopt.IntLong("cycles", 'n', -1, "")
	frequencyFlag = getopt.StringLong("frequency", 'f', "440", "")
	logFlag       = getopt.StringLong("log", 1000, "", "")
	metricsFlag   = getopt.BoolLong("metrics", 'm', "")
	helpFlag      = getopt.BoolLong("help", 'h', "")
	versionFlag   = getopt.BoolLong("version", 'v', "")
)

func main() {
	// Parse command line arguments
	getopt.Parse()

	if *helpFlag {
		help()
		os.Exit(0)
	}
	if *versionFlag {
		version()
		os.Exit(0)
	}

	cfg := config.Default()
	if *configFlag != "" {
		var err error
		if cfg, err = config.LoadConfig(*configFlag); err != nil {
			log.Fatalf("%v", err)
		}
	}
	if *cyclesFlag >= 0 {
		cfg.Cycles = *cyclesFlag
	}
	var freq float64
	if _, err := fmt.Sscanf(*frequencyFlag, "%g", &freq); err != nil || freq <= 0 {
		log.Fatalf("invalid frequency %q", *frequencyFlag)
	}

	// Configure logging
	for _, d := range []string{cfg.Log, *logFlag} {
		if err := logging.Configure(d); err != nil {
			log.Fatalf("%v", err)
		}
	}

	if err := run(cfg, freq); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(cfg *config.Config, freq float64) error {
	info, err := cfg.AudioInfo()
	if err != nil {
		return err
	}
	memory, err := cfg.Memory()
	if err != nil {
		return err
	}
	c, err := cpu.New(cfg.CPU)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	dataLoop := loop.New(16)
	dataLoop.Start()
	defer dataLoop.Stop()

	handle, iface, err := plugin.Instantiate(cfg.Factory, cfg.Node, &plugin.Support{
		Log:      logging.DefaultLogger.WithTag("node"),
		CPU:      c,
		DataLoop: dataLoop,
		Metrics:  m,
	}, plugin.InterfaceNode)
	if err != nil {
		return err
	}
	defer handle.Clear()

	d, err := driver.New(iface.(node.Node), driver.Options{
		Buffers: cfg.Buffers.Count,
		Memory:  memory,
		Loop:    dataLoop,
	})
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.SetProfile(&info); err != nil {
		return err
	}
	if err := d.Negotiate(&info); err != nil {
		return err
	}
	if err := d.Start(); err != nil {
		return err
	}
	defer d.Pause()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	src := &tone{freq: freq, amp: 0.5, quantum: int(cfg.Quantum)}
	peaks := make([]float32, d.Outputs())
	sink := func(port uint32, buf *node.Buffer) {
		if p := peak(&buf.Datas[0]); p > peaks[port] {
			peaks[port] = p
		}
	}

	log.Info("running %s: %v, %d cycles of %d frames", cfg.Factory, &info, cfg.Cycles, cfg.Quantum)
	err = d.Run(ctx, cfg.Cycles, src.fill, sink)
	if err == context.Canceled {
		err = nil
	}
	if err != nil {
		return err
	}

	for i, p := range peaks {
		fmt.Printf("output %d (%v): peak %.3f\n", i, info.Position[i], p)
	}
	if *metricsFlag {
		return printMetrics(reg)
	}
	return nil
}

func printMetrics(g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
	for _, f := range families {
		for _, m := range f.GetMetric() {
			fmt.Printf("%s", f.GetName())
			for _, l := range m.GetLabel() {
				fmt.Printf(" %s=%s", l.GetName(), l.GetValue())
			}
			fmt.Printf(" %g\n", m.GetCounter().GetValue())
		}
	}
	return nil
}
