// Package clipboard reassembles the chunked clipboard transfers carried by
// wire.SetClipboard messages, and chunks outbound payloads the same way.
//
// The mark=0 start chunk's ASCII payload is "<formatID> <totalSize>", a
// single space-separated pair of decimal integers. formatID must be one of
// the three recognized integers (0=Text, 1=Bitmap, 2=HTML); anything else,
// including a non-numeric tag, is rejected with ProtocolError.Encoding.
package clipboard

import (
	"bytes"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/badu/synergy/wire"
)

// Format identifies the kind of data a clipboard transfer carries.
type Format int

const (
	FormatText Format = iota
	FormatBitmap
	FormatHTML
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatBitmap:
		return "bitmap"
	case FormatHTML:
		return "html"
	default:
		return "unknown"
	}
}

func parseFormat(tag string) (Format, bool) {
	n, err := strconv.Atoi(tag)
	if err != nil {
		return 0, false
	}
	switch n {
	case int(FormatText), int(FormatBitmap), int(FormatHTML):
		return Format(n), true
	default:
		return 0, false
	}
}

// The assembler's error kinds are wire.ProtocolKind values, reusing
// wire.ProtocolError's shape so callers handle one error type throughout.
const (
	KindOverlap  = wire.ErrClipboardOverlap
	KindOrphan   = wire.ErrClipboardOrphan
	KindTooLarge = wire.ErrClipboardTooLarge
	KindEncoding = wire.ErrEncoding
)

func protoErr(kind wire.ProtocolKind, detail string) *wire.ProtocolError {
	return &wire.ProtocolError{Kind: kind, Detail: detail}
}

// DefaultMaxTotalSize bounds a single transfer's declared total size.
const DefaultMaxTotalSize = 32 * 1024 * 1024

// ChunkSize is the boundary at which outbound clipboard data is split into
// multiple DCLP chunks; payloads smaller than this may be sent as a single
// start/end pair.
const ChunkSize = 32 * 1024

// Changed is emitted once a transfer completes.
type Changed struct {
	ID     uint8
	Seq    uint32
	Format Format
	Data   []byte
}

type transferKey struct {
	id  uint8
	seq uint32
}

type transfer struct {
	format   Format
	total    int
	buf      bytes.Buffer
	probe    *time.Timer
}

// Assembler reassembles clipboard transfers for one session. Handle and
// the probe timers serialize on an internal mutex; in practice a session
// drives it from its single owning goroutine (see the session package).
type Assembler struct {
	mu          sync.Mutex
	maxTotal    int
	probeWindow time.Duration
	transfers   map[transferKey]*transfer
	onExpire    func(id uint8, seq uint32)
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithMaxTotalSize overrides DefaultMaxTotalSize.
func WithMaxTotalSize(n int) Option {
	return func(a *Assembler) { a.maxTotal = n }
}

// WithProbeWindow overrides the interval a bare mark=0 probe is allowed to
// sit unconfirmed before being silently cancelled. Defaults to one
// keepalive interval's worth, passed explicitly by the caller since the
// assembler does not know the session's configured keepalive.
func WithProbeWindow(d time.Duration) Option {
	return func(a *Assembler) { a.probeWindow = d }
}

// New returns an empty Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		maxTotal:    DefaultMaxTotalSize,
		probeWindow: 3 * time.Second,
		transfers:   make(map[transferKey]*transfer),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Handle feeds one SetClipboard chunk through the assembler. It returns a
// non-nil *Changed when msg.Mark completes a transfer; otherwise it
// returns (nil, nil) once the chunk has been absorbed, or a *wire.ProtocolError
// for overlap/orphan/too-large/encoding violations.
func (a *Assembler) Handle(msg wire.SetClipboard) (*Changed, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := transferKey{id: msg.ID, seq: msg.Seq}

	switch msg.Mark {
	case 0:
		return nil, a.start(key, msg.Data)
	case 1:
		return nil, a.appendChunk(key, msg.Data)
	case 2:
		return a.finish(key)
	default:
		return nil, protoErr(KindEncoding, "unrecognized clipboard mark")
	}
}

func (a *Assembler) start(key transferKey, data []byte) error {
	if _, exists := a.transfers[key]; exists {
		return protoErr(KindOverlap, "clipboard start received while a transfer is already in flight")
	}

	fields := strings.Fields(string(data))
	if len(fields) != 2 {
		return protoErr(KindEncoding, "malformed clipboard start payload")
	}
	format, ok := parseFormat(fields[0])
	if !ok {
		return protoErr(KindEncoding, "unrecognized clipboard format tag")
	}
	total, err := strconv.Atoi(fields[1])
	if err != nil || total < 0 {
		return protoErr(KindEncoding, "malformed clipboard total size")
	}
	if total > a.maxTotal {
		return protoErr(KindTooLarge, "declared total exceeds configured maximum")
	}

	t := &transfer{format: format, total: total}
	a.transfers[key] = t

	if a.probeWindow > 0 {
		t.probe = time.AfterFunc(a.probeWindow, func() {
			a.cancelProbe(key)
		})
	}
	return nil
}

// cancelProbe drops a transfer that received only a mark=0 start with no
// mark=1 continuation inside the probe window - the "bare probe" mark
// semantics open question, resolved as a silent no-op, not an error.
func (a *Assembler) cancelProbe(key transferKey) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t, ok := a.transfers[key]; ok && t.buf.Len() == 0 {
		delete(a.transfers, key)
		if a.onExpire != nil {
			a.onExpire(key.id, key.seq)
		}
	}
}

func (a *Assembler) appendChunk(key transferKey, data []byte) error {
	t, ok := a.transfers[key]
	if !ok {
		return protoErr(KindOrphan, "clipboard continuation for unknown transfer")
	}
	if t.probe != nil {
		t.probe.Stop()
		t.probe = nil
	}
	if t.buf.Len()+len(data) > t.total {
		delete(a.transfers, key)
		return protoErr(KindTooLarge, "accumulated clipboard data exceeds declared total")
	}
	t.buf.Write(data)
	return nil
}

func (a *Assembler) finish(key transferKey) (*Changed, error) {
	t, ok := a.transfers[key]
	if !ok {
		return nil, protoErr(KindOrphan, "clipboard end for unknown transfer")
	}
	delete(a.transfers, key)
	if t.probe != nil {
		t.probe.Stop()
	}
	if t.buf.Len() != t.total {
		return nil, protoErr(KindTooLarge, "accumulated clipboard data does not match declared total")
	}
	data := append([]byte(nil), t.buf.Bytes()...)
	if t.format == FormatText {
		normalized, err := NormalizeText(data)
		if err != nil {
			return nil, err
		}
		data = normalized
	}
	return &Changed{ID: key.id, Seq: key.seq, Format: t.format, Data: data}, nil
}

// Chunk splits data into the outbound wire.SetClipboard sequence for one
// complete transfer: a mark=0 start, zero or more mark=1 continuations of
// at most ChunkSize bytes each, and a mark=2 end.
func Chunk(id uint8, seq uint32, format Format, data []byte) []wire.SetClipboard {
	out := make([]wire.SetClipboard, 0, len(data)/ChunkSize+2)
	out = append(out, wire.SetClipboard{
		ID:   id,
		Seq:  seq,
		Mark: 0,
		Data: []byte(strconv.Itoa(int(format)) + " " + strconv.Itoa(len(data))),
	})
	for off := 0; off < len(data); off += ChunkSize {
		end := off + ChunkSize
		if end > len(data) {
			end = len(data)
		}
		out = append(out, wire.SetClipboard{ID: id, Seq: seq, Mark: 1, Data: data[off:end]})
	}
	out = append(out, wire.SetClipboard{ID: id, Seq: seq, Mark: 2})
	return out
}
