// Package audioconvert provides the channel splitter: a node with one audio
// input port that fans out to one planar 32-bit float output port per
// channel of the configured profile.
package audioconvert

import (
	"strconv"

	"github.com/lanikai/alohaspa/internal/convert"
	"github.com/lanikai/alohaspa/internal/metrics"
	"github.com/lanikai/alohaspa/node"
	"github.com/lanikai/alohaspa/param"
	"github.com/lanikai/alohaspa/plugin"
	"github.com/lanikai/alohaspa/pod"

	"github.com/prometheus/client_golang/prometheus"
	errors "golang.org/x/xerrors"
)

const (
	DefaultRate     = 48000
	DefaultChannels = 2

	// MaxSamples is the number of frames processed per cycle at most, and
	// the size of the scratch destination.
	MaxSamples = 1024
	MaxBuffers = 64
	MaxPorts   = param.MaxChannels
)

const portDSP = "32 bit float mono audio"

// PortState is the negotiation state of a port.
type PortState int

const (
	// Unconfigured ports have no format.
	Unconfigured PortState = iota

	// FormatProposed ports carry a format implied by the profile.
	FormatProposed

	// FormatCommitted ports had a format set explicitly.
	FormatCommitted

	// BuffersAssigned ports have a committed format and buffers.
	BuffersAssigned
)

func (s PortState) String() string {
	switch s {
	case FormatProposed:
		return "FormatProposed"
	case FormatCommitted:
		return "FormatCommitted"
	case BuffersAssigned:
		return "BuffersAssigned"
	}
	return "Unconfigured"
}

const bufferQueued = 1 << 0

type buffer struct {
	flags uint32
	buf   *node.Buffer
}

type port struct {
	id        uint32
	direction node.Direction

	io   *node.IOBuffers
	ctrl *node.IORange

	info node.PortInfo

	haveFormat bool
	committed  bool
	format     param.AudioInfo
	blocks     int
	stride     int

	buffers  [MaxBuffers]buffer
	nBuffers int
	queue    queue

	// Slot written during the current cycle, or -1 for the scratch region.
	current int

	underruns prometheus.Counter
	invalid   prometheus.Counter
}

func (p *port) state() PortState {
	switch {
	case p.committed && p.nBuffers > 0:
		return BuffersAssigned
	case p.committed:
		return FormatCommitted
	case p.haveFormat || p.format.Channels > 0:
		return FormatProposed
	}
	return Unconfigured
}

func (p *port) setFormat(info *param.AudioInfo) {
	p.format = *info
	p.stride = info.Stride()
	p.blocks = info.Blocks()
}

func (p *port) release() {
	p.clearBuffers()
	p.io = nil
	p.ctrl = nil
}

func (p *port) clearBuffers() {
	for i := 0; i < p.nBuffers; i++ {
		p.buffers[i] = buffer{}
	}
	p.nBuffers = 0
	p.queue.reset()
}

// Splitter is the channel splitter node. It implements node.Node and
// plugin.Handle.
type Splitter struct {
	name     string
	log      plugin.Log
	loop     plugin.Loop
	cpuFlags uint32
	stats    *metrics.NodeMetrics

	callbacks *node.Callbacks

	inPorts   [1]port
	outPorts  [MaxPorts]port
	portCount int

	started     bool
	haveProfile bool
	profile     param.AudioInfo

	transform convert.Func

	// Per-cycle plane lists, sized once so that Process never allocates.
	src   [][]byte
	dst   [][]byte
	empty []byte
}

func newSplitter(name string, support *plugin.Support) *Splitter {
	n := &Splitter{
		name:  name,
		log:   plugin.NopLog{},
		src:   make([][]byte, 0, MaxPorts),
		dst:   make([][]byte, 0, MaxPorts),
		empty: make([]byte, MaxSamples*4),
	}
	if support != nil {
		if support.Log != nil {
			n.log = support.Log
		}
		if support.CPU != nil {
			n.cpuFlags = support.CPU.Flags()
		}
		n.loop = support.DataLoop
		n.stats = support.Metrics.Node(name)
	} else {
		n.stats = (*metrics.Metrics)(nil).Node(name)
	}

	in := &n.inPorts[0]
	in.direction = node.Input
	in.info.Flags = node.PortCanUseBuffers
	in.invalid = n.stats.InvalidBuffers("in0")
	in.current = -1
	return n
}

// Name returns the instance name used in logs and metric labels.
func (n *Splitter) Name() string {
	return n.name
}

// PortState reports the negotiation state of a port.
func (n *Splitter) PortState(dir node.Direction, portID uint32) (PortState, error) {
	p, err := n.port(dir, portID)
	if err != nil {
		return Unconfigured, err
	}
	return p.state(), nil
}

// Started reports whether a Start command was received more recently than
// a Pause.
func (n *Splitter) Started() bool {
	return n.started
}

func (n *Splitter) port(dir node.Direction, portID uint32) (*port, error) {
	switch {
	case dir == node.Input && portID == 0:
		return &n.inPorts[0], nil
	case dir == node.Output && portID < uint32(n.portCount):
		return &n.outPorts[portID], nil
	}
	return nil, errors.Errorf("%v port %d: %w", dir, portID, node.ErrInvalidArgument)
}

func (n *Splitter) initPort(id uint32, rate uint32, position param.Channel) {
	p := &n.outPorts[id]
	*p = port{
		id:        id,
		direction: node.Output,
		current:   -1,
	}
	p.info = node.PortInfo{
		Flags: node.PortCanUseBuffers,
		Rate:  rate,
		Props: map[string]string{
			node.PropPortDSP:     portDSP,
			node.PropPortChannel: position.String(),
		},
	}
	info := param.AudioInfo{
		Format:   param.AudioFormatF32P,
		Rate:     rate,
		Channels: 1,
	}
	info.Position[0] = position
	p.setFormat(&info)
	p.underruns = n.stats.Underruns(portName(node.Output, id))
	n.log.Debug("splitter %s: init port %d %v", n.name, id, position)
}

func portName(dir node.Direction, id uint32) string {
	if dir == node.Input {
		return "in" + strconv.Itoa(int(id))
	}
	return "out" + strconv.Itoa(int(id))
}

// SetParam accepts a Profile carrying an audio/raw format. The number of
// output ports becomes the channel count of the format.
func (n *Splitter) SetParam(id param.ID, flags uint32, p pod.Pod) error {
	switch id {
	case param.Profile:
		format, err := param.ParseProfile(p)
		if err != nil {
			return errors.Errorf("profile: %w", node.ErrInvalidArgument)
		}
		var info param.AudioInfo
		if err := parseAudioFormat(format, &info); err != nil {
			return err
		}
		return n.setProfile(&info)
	}
	return errors.Errorf("%v: %w", id, node.ErrUnknownParam)
}

func (n *Splitter) setProfile(info *param.AudioInfo) error {
	in := &n.inPorts[0]
	if in.haveFormat && in.format == *info {
		return nil
	}
	n.log.Debug("splitter %s: profile %d", n.name, info.Channels)

	n.haveProfile = true
	n.profile = *info
	for i := int(info.Channels); i < n.portCount; i++ {
		n.outPorts[i] = port{}
	}
	n.portCount = int(info.Channels)
	for i := 0; i < n.portCount; i++ {
		n.initPort(uint32(i), info.Rate, info.Position[i])
	}
	in.haveFormat = true
	in.committed = false
	in.setFormat(info)
	in.info.Rate = info.Rate
	if err := n.installTransform(nil); err != nil {
		return err
	}

	if n.callbacks != nil && n.callbacks.Event != nil {
		n.callbacks.Event(node.EventPortsChanged)
	}
	return nil
}

func parseAudioFormat(format pod.Pod, info *param.AudioInfo) error {
	if !format.IsObject(param.ObjectFormat) {
		return errors.Errorf("not a format: %w", node.ErrInvalidFormat)
	}
	mediaType, mediaSubtype, err := param.ParseFormat(format)
	if err != nil {
		return errors.Errorf("%v: %w", err, node.ErrInvalidFormat)
	}
	if mediaType != param.MediaTypeAudio || mediaSubtype != param.MediaSubtypeRaw {
		return errors.Errorf("media %d/%d: %w", mediaType, mediaSubtype, node.ErrInvalidFormat)
	}
	if err := param.ParseAudioRaw(format, info); err != nil {
		return errors.Errorf("%v: %w", err, node.ErrInvalidFormat)
	}
	return nil
}

func (n *Splitter) SetIO(id param.IOType, area interface{}) error {
	return node.ErrUnsupported
}

// SendCommand handles Start and Pause.
func (n *Splitter) SendCommand(cmd node.Command) error {
	switch cmd {
	case node.CommandStart:
		n.started = true
	case node.CommandPause:
		n.started = false
	default:
		return node.ErrUnsupported
	}
	return nil
}

func (n *Splitter) SetCallbacks(cb *node.Callbacks) error {
	n.callbacks = cb
	return nil
}

func (n *Splitter) PortCount() (nInputs, maxInputs, nOutputs, maxOutputs uint32) {
	return 1, 1, uint32(n.portCount), uint32(n.portCount)
}

func (n *Splitter) PortIDs(inputs, outputs []uint32) (nInputs, nOutputs int) {
	if len(inputs) > 0 {
		inputs[0] = 0
		nInputs = 1
	}
	for nOutputs < len(outputs) && nOutputs < n.portCount {
		outputs[nOutputs] = uint32(nOutputs)
		nOutputs++
	}
	return
}

func (n *Splitter) AddPort(dir node.Direction, portID uint32) error {
	return node.ErrUnsupported
}

func (n *Splitter) RemovePort(dir node.Direction, portID uint32) error {
	return node.ErrUnsupported
}

func (n *Splitter) PortInfo(dir node.Direction, portID uint32) (*node.PortInfo, error) {
	p, err := n.port(dir, portID)
	if err != nil {
		return nil, err
	}
	return &p.info, nil
}

// PortSetParam sets or clears the Format of a port. Output ports accept
// only mono F32P at the profile rate; the input port accepts any format
// with one channel per output port for which a transform exists.
func (n *Splitter) PortSetParam(dir node.Direction, portID uint32, id param.ID, flags uint32, format pod.Pod) error {
	p, err := n.port(dir, portID)
	if err != nil {
		return err
	}
	if id != param.Format {
		return errors.Errorf("%v: %w", id, node.ErrUnknownParam)
	}
	n.log.Debug("splitter %s: set format on %v port %d", n.name, dir, portID)

	if format == nil {
		return n.clearFormat(p)
	}

	var info param.AudioInfo
	if err := parseAudioFormat(format, &info); err != nil {
		return err
	}
	if dir == node.Output {
		switch {
		case info.Rate != p.format.Rate:
			return errors.Errorf("rate %d, want %d: %w", info.Rate, p.format.Rate, node.ErrInvalidFormat)
		case info.Format != param.AudioFormatF32P:
			return errors.Errorf("format %v, want F32P: %w", info.Format, node.ErrInvalidFormat)
		case info.Channels != 1:
			return errors.Errorf("%d channels, want 1: %w", info.Channels, node.ErrInvalidFormat)
		}
	} else if int(info.Channels) != n.portCount {
		return errors.Errorf("%d channels, want %d: %w", info.Channels, n.portCount, node.ErrInvalidFormat)
	}

	if dir == node.Input {
		if err := n.setupConvert(&info); err != nil {
			return err
		}
	}
	stride, blocks := p.stride, p.blocks
	p.setFormat(&info)
	if p.nBuffers > 0 && (p.stride != stride || p.blocks != blocks) {
		n.log.Debug("splitter %s: layout changed, clear buffers on %v port %d", n.name, dir, portID)
		p.clearBuffers()
	}
	p.haveFormat = true
	p.committed = true
	n.stats.FormatChanges(dir.String()).Inc()
	n.log.Debug("splitter %s: %v port %d stride %d blocks %d", n.name, dir, portID, p.stride, p.blocks)
	return nil
}

func (n *Splitter) clearFormat(p *port) error {
	if !p.haveFormat && !p.committed {
		return nil
	}
	if p.direction == node.Input {
		p.haveFormat = n.haveProfile
		if n.haveProfile {
			p.setFormat(&n.profile)
		}
		if err := n.installTransform(nil); err != nil {
			return err
		}
	} else {
		p.haveFormat = false
	}
	p.committed = false
	if p.nBuffers > 0 {
		n.log.Debug("splitter %s: clear buffers on %v port %d", n.name, p.direction, p.id)
	}
	p.clearBuffers()
	return nil
}

func (n *Splitter) setupConvert(info *param.AudioInfo) error {
	n.log.Info("splitter %s: %v/%d@%d->F32P/1@%dx%d", n.name,
		info.Format, info.Channels, info.Rate, info.Rate, n.portCount)

	conv, err := convert.Find(info.Format, param.AudioFormatF32P, n.cpuFlags)
	if err != nil {
		return errors.Errorf("%v: %w", err, node.ErrUnsupportedConversion)
	}
	n.log.Info("splitter %s: got converter %s features %08x:%08x", n.name,
		conv.Name, n.cpuFlags, conv.Features)
	return n.installTransform(conv.Process)
}

// installTransform hands the transform to the data goroutine.
func (n *Splitter) installTransform(fn convert.Func) error {
	set := func() { n.transform = fn }
	if n.loop != nil {
		return n.loop.Invoke(set, true)
	}
	set()
	return nil
}

// PortUseBuffers attaches buffers to a port with a committed format. All
// buffers are checked before any state changes. Output buffers start out
// queued; an empty list releases the port's buffers.
func (n *Splitter) PortUseBuffers(dir node.Direction, portID uint32, buffers []*node.Buffer) error {
	p, err := n.port(dir, portID)
	if err != nil {
		return err
	}
	if len(buffers) == 0 {
		p.clearBuffers()
		return nil
	}
	if !p.committed {
		return errors.Errorf("%v port %d has no format: %w", dir, portID, node.ErrNotReady)
	}
	if len(buffers) > MaxBuffers {
		return errors.Errorf("%d buffers: %w", len(buffers), node.ErrInvalidArgument)
	}
	for i, b := range buffers {
		if err := p.checkBuffer(b); err != nil {
			n.log.Error("splitter %s: invalid buffer %d: %v", n.name, i, err)
			return err
		}
	}
	n.log.Debug("splitter %s: use %d buffers on %v port %d", n.name, len(buffers), dir, portID)

	p.clearBuffers()
	for i, b := range buffers {
		p.buffers[i] = buffer{buf: b}
	}
	p.nBuffers = len(buffers)
	if dir == node.Output {
		for i := range buffers {
			p.queueBuffer(uint32(i))
		}
	}
	return nil
}

func (p *port) checkBuffer(b *node.Buffer) error {
	if b == nil || len(b.Datas) == 0 {
		return errors.Errorf("no data: %w", node.ErrInvalidBuffer)
	}
	switch d := &b.Datas[0]; d.Type {
	case node.DataMemPtr, node.DataMemFd, node.DataDmaBuf:
		if d.Data == nil {
			return errors.Errorf("%v without memory: %w", d.Type, node.ErrInvalidBuffer)
		}
	default:
		return errors.Errorf("memory type %v: %w", d.Type, node.ErrInvalidBuffer)
	}
	if len(b.Datas) < p.blocks {
		return errors.Errorf("%d planes, want %d: %w", len(b.Datas), p.blocks, node.ErrInvalidBuffer)
	}
	for i := 0; i < p.blocks; i++ {
		if b.Datas[i].Data == nil || b.Datas[i].Chunk == nil {
			return errors.Errorf("plane %d not mapped: %w", i, node.ErrInvalidBuffer)
		}
	}
	return nil
}

func (n *Splitter) PortAllocBuffers(dir node.Direction, portID uint32, params []pod.Pod, buffers []*node.Buffer) (int, error) {
	return 0, node.ErrUnsupported
}

// PortSetIO installs the Buffers status cell or the Range limit of a port.
func (n *Splitter) PortSetIO(dir node.Direction, portID uint32, id param.IOType, area interface{}) error {
	p, err := n.port(dir, portID)
	if err != nil {
		return err
	}
	switch id {
	case param.IOBuffers:
		if area == nil {
			p.io = nil
			return nil
		}
		io, ok := area.(*node.IOBuffers)
		if !ok {
			return errors.Errorf("%T for %v: %w", area, id, node.ErrInvalidArgument)
		}
		p.io = io
	case param.IORange:
		if area == nil {
			p.ctrl = nil
			return nil
		}
		ctrl, ok := area.(*node.IORange)
		if !ok {
			return errors.Errorf("%T for %v: %w", area, id, node.ErrInvalidArgument)
		}
		p.ctrl = ctrl
	default:
		return errors.Errorf("%v: %w", id, node.ErrUnknownParam)
	}
	return nil
}

func (n *Splitter) PortSendCommand(dir node.Direction, portID uint32, cmd node.Command) error {
	return node.ErrUnsupported
}

// ReuseBuffer returns a consumed output buffer to its port. Returning a
// buffer that is already queued has no effect.
func (n *Splitter) ReuseBuffer(portID uint32, bufferID uint32) error {
	p, err := n.port(node.Output, portID)
	if err != nil {
		return err
	}
	if bufferID >= uint32(p.nBuffers) {
		return errors.Errorf("buffer %d of %d: %w", bufferID, p.nBuffers, node.ErrInvalidArgument)
	}
	p.queueBuffer(bufferID)
	return nil
}

// Interface implements plugin.Handle.
func (n *Splitter) Interface(typ string) (interface{}, error) {
	if typ == plugin.InterfaceNode {
		return node.Node(n), nil
	}
	return nil, errors.Errorf("%s: %w", typ, plugin.ErrUnknownInterface)
}

// Clear drops every buffer and I/O area reference.
func (n *Splitter) Clear() error {
	n.inPorts[0].release()
	for i := 0; i < n.portCount; i++ {
		n.outPorts[i].release()
	}
	n.callbacks = nil
	n.stats.Forget()
	return n.installTransform(nil)
}
