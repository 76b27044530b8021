// Package driver hosts a single node. It negotiates port formats through
// parameter enumeration, attaches buffers and status cells, and runs
// process cycles on a data loop.
package driver

import (
	"context"

	"github.com/lanikai/alohaspa/internal/alloc"
	"github.com/lanikai/alohaspa/internal/logging"
	"github.com/lanikai/alohaspa/node"
	"github.com/lanikai/alohaspa/param"
	"github.com/lanikai/alohaspa/plugin"
	"github.com/lanikai/alohaspa/pod"

	"github.com/pkg/errors"
)

var log = logging.DefaultLogger.WithTag("driver")

const builderSize = 4096

// Options configure a Driver.
type Options struct {
	// Buffers per port. Zero accepts what the node prefers.
	Buffers int32

	// Memory backs allocated buffers: node.DataMemPtr or node.DataMemFd.
	Memory node.DataType

	// Loop runs Process. Nil runs it on the calling goroutine.
	Loop plugin.Loop
}

type port struct {
	dir node.Direction
	id  uint32

	io     node.IOBuffers
	format param.AudioInfo
	req    param.BufferRequirements
	set    *alloc.Set
}

// Source fills the next input buffer: its planes and chunk sizes.
type Source func(buf *node.Buffer, format *param.AudioInfo) error

// Sink receives a filled output buffer. The buffer goes back to the node
// when Sink returns.
type Sink func(port uint32, buf *node.Buffer)

// Driver connects a node to buffers it allocates itself.
type Driver struct {
	node node.Node
	opts Options

	input   port
	outputs []*port
	next    uint32

	// Set when the node reports new ports; cleared by Negotiate.
	changed bool

	scratch []byte
}

// New takes over the callbacks of n.
func New(n node.Node, opts Options) (*Driver, error) {
	d := &Driver{
		node:    n,
		opts:    opts,
		input:   port{dir: node.Input},
		scratch: make([]byte, builderSize),
	}
	if err := n.SetCallbacks(&node.Callbacks{Event: d.event}); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) event(ev node.Event) {
	if ev == node.EventPortsChanged {
		log.Debug("ports changed")
		d.changed = true
	}
}

// PortsChanged reports whether the node announced new ports since the last
// negotiation.
func (d *Driver) PortsChanged() bool {
	return d.changed
}

// SetProfile sets the node profile from an audio format.
func (d *Driver) SetProfile(info *param.AudioInfo) error {
	format, err := param.BuildAudioRaw(pod.NewBuilder(make([]byte, builderSize)), param.Format, info)
	if err != nil {
		return err
	}
	profile, err := param.BuildProfile(pod.NewBuilder(make([]byte, builderSize)), format)
	if err != nil {
		return err
	}
	return errors.Wrap(d.node.SetParam(param.Profile, 0, profile), "set profile")
}

// Negotiate drops any previous configuration, then commits input as the
// format of the input port and the first proposed format of every output,
// and attaches buffers and status cells to all ports.
func (d *Driver) Negotiate(input *param.AudioInfo) error {
	if err := d.Close(); err != nil {
		return err
	}

	filter, err := param.BuildAudioRaw(pod.NewBuilder(make([]byte, builderSize)), param.Format, input)
	if err != nil {
		return err
	}
	if err := d.setup(&d.input, filter); err != nil {
		return err
	}

	_, _, nOutputs, _ := d.node.PortCount()
	ids := make([]uint32, nOutputs)
	_, n := d.node.PortIDs(nil, ids)
	d.outputs = make([]*port, 0, n)
	for _, id := range ids[:n] {
		p := &port{dir: node.Output, id: id}
		d.outputs = append(d.outputs, p)
		if err := d.setup(p, nil); err != nil {
			return err
		}
	}
	d.changed = false
	log.Info("negotiated %v into %d outputs", &d.input.format, len(d.outputs))
	return nil
}

func (d *Driver) setup(p *port, filter pod.Pod) error {
	format, err := d.first(p, param.EnumFormat, filter)
	if err != nil {
		return err
	}
	format, err = fixate(format, param.Format)
	if err != nil {
		return err
	}
	if err := d.node.PortSetParam(p.dir, p.id, param.Format, 0, format); err != nil {
		return errors.Wrapf(err, "%v port %d: set format", p.dir, p.id)
	}
	if err := param.ParseAudioRaw(format, &p.format); err != nil {
		return err
	}

	var bufFilter pod.Pod
	if d.opts.Buffers > 0 {
		bufFilter, err = pod.NewBuilder(make([]byte, 256)).Object(param.ObjectParamBuffers, uint32(param.Buffers),
			pod.Prop{Key: param.BuffersKeyBuffers, Value: pod.Int(d.opts.Buffers)})
		if err != nil {
			return err
		}
	}
	buffers, err := d.first(p, param.Buffers, bufFilter)
	if err != nil {
		return err
	}
	if buffers, err = fixate(buffers, param.Buffers); err != nil {
		return err
	}
	if p.req, err = param.ParseBuffers(buffers); err != nil {
		return err
	}

	var metas []alloc.MetaParams
	err = d.each(p, param.Meta, func(m pod.Pod) error {
		typ, size, err := param.ParseMeta(m)
		metas = append(metas, alloc.MetaParams{Type: typ, Size: size})
		return err
	})
	if err != nil {
		return err
	}

	p.set, err = alloc.Allocate(alloc.Params{
		BufferRequirements: p.req,
		Metas:              metas,
		Memory:             d.opts.Memory,
	})
	if err != nil {
		return errors.Wrapf(err, "%v port %d: allocate", p.dir, p.id)
	}
	if err := d.node.PortUseBuffers(p.dir, p.id, p.set.Buffers); err != nil {
		return errors.Wrapf(err, "%v port %d: use buffers", p.dir, p.id)
	}

	p.io = node.IOBuffers{Status: node.StatusNeedBuffer, BufferID: node.InvalidID}
	if err := d.node.PortSetIO(p.dir, p.id, param.IOBuffers, &p.io); err != nil {
		return errors.Wrapf(err, "%v port %d: set io", p.dir, p.id)
	}
	log.Debug("%v port %d: %v, %d buffers of %d bytes", p.dir, p.id, &p.format, p.req.Buffers, p.req.Size)
	return nil
}

// each calls fn for every value of a port parameter.
func (d *Driver) each(p *port, id param.ID, fn func(pod.Pod) error) error {
	var index uint32
	for {
		res, err := d.node.PortEnumParams(p.dir, p.id, id, &index, nil, pod.NewBuilder(d.scratch))
		if errors.Is(err, node.ErrDone) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "%v port %d: enum %v", p.dir, p.id, id)
		}
		if err := fn(res); err != nil {
			return err
		}
	}
}

// first returns the first value of a port parameter that passes filter.
func (d *Driver) first(p *port, id param.ID, filter pod.Pod) (pod.Pod, error) {
	var index uint32
	res, err := d.node.PortEnumParams(p.dir, p.id, id, &index, filter, pod.NewBuilder(d.scratch))
	if errors.Is(err, node.ErrDone) {
		return nil, errors.Errorf("%v port %d: no acceptable %v", p.dir, p.id, id)
	}
	return res, errors.Wrapf(err, "%v port %d: enum %v", p.dir, p.id, id)
}

// fixate resolves every choice of an object to its default and renames
// the object to id.
func fixate(p pod.Pod, id param.ID) (pod.Pod, error) {
	obj, err := pod.DecodeObject(p)
	if err != nil {
		return nil, err
	}
	fixed := pod.Fixate(obj).(pod.Object)
	fixed.ID = uint32(id)
	return pod.NewBuilder(make([]byte, builderSize)).Value(fixed)
}

// InputFormat returns the negotiated input format.
func (d *Driver) InputFormat() param.AudioInfo {
	return d.input.format
}

// Outputs returns the number of negotiated output ports.
func (d *Driver) Outputs() int {
	return len(d.outputs)
}

// Start and Pause forward the commands to the node.
func (d *Driver) Start() error {
	return d.node.SendCommand(node.CommandStart)
}

func (d *Driver) Pause() error {
	return d.node.SendCommand(node.CommandPause)
}

// Cycle offers the next input buffer, which source fills, runs Process and
// passes every filled output to sink.
func (d *Driver) Cycle(source Source, sink Sink) (node.Status, error) {
	in := &d.input
	if in.set == nil || len(in.set.Buffers) == 0 {
		return 0, node.ErrNotReady
	}
	id := d.next % uint32(len(in.set.Buffers))
	if err := source(in.set.Buffers[id], &in.format); err != nil {
		return 0, err
	}
	in.io.Status = node.StatusHaveBuffer
	in.io.BufferID = id
	d.next++

	var (
		status node.Status
		err    error
	)
	run := func() { status, err = d.node.Process() }
	if d.opts.Loop != nil {
		if err := d.opts.Loop.Invoke(run, true); err != nil {
			return 0, err
		}
	} else {
		run()
	}
	if err != nil {
		return status, err
	}
	if status.Failed() {
		log.Warn("process: input status %d", status)
		return status, nil
	}

	for i, p := range d.outputs {
		switch p.io.Status {
		case node.StatusHaveBuffer:
			if sink != nil && p.io.BufferID < uint32(len(p.set.Buffers)) {
				sink(uint32(i), p.set.Buffers[p.io.BufferID])
			}
			// The node recycles BufferID on its next cycle.
			p.io.Status = node.StatusNeedBuffer
		case node.StatusNoBuffer:
			log.Trace(1, "output %d dropped a cycle", i)
		}
	}
	return status, nil
}

// Run calls Cycle until cycles have run, or forever when cycles is not
// positive, stopping early when ctx is done.
func (d *Driver) Run(ctx context.Context, cycles int, source Source, sink Sink) error {
	for i := 0; cycles <= 0 || i < cycles; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		status, err := d.Cycle(source, sink)
		if err != nil {
			return errors.Wrapf(err, "cycle %d", i)
		}
		if status.Failed() {
			return errors.Errorf("cycle %d: status %d", i, status)
		}
	}
	return nil
}

// Close detaches and frees every buffer the driver allocated.
func (d *Driver) Close() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	ports := append([]*port{&d.input}, d.outputs...)
	for _, p := range ports {
		if p.set == nil {
			continue
		}
		keep(d.detach(p))
		keep(p.set.Free())
		p.set = nil
	}
	d.outputs = nil
	d.next = 0
	return first
}

// detach removes the status cell and buffers of a port. Ports the node has
// already dropped or reset are skipped.
func (d *Driver) detach(p *port) error {
	gone := func(err error) bool {
		return errors.Is(err, node.ErrInvalidArgument) || errors.Is(err, node.ErrNotReady)
	}
	if err := d.node.PortSetIO(p.dir, p.id, param.IOBuffers, nil); err != nil {
		if gone(err) {
			return nil
		}
		return err
	}
	if err := d.node.PortUseBuffers(p.dir, p.id, nil); err != nil && !gone(err) {
		return err
	}
	return nil
}
