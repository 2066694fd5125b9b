package event

import (
	"fmt"
	"math"

	"github.com/aalemi-dev/oboe/errs"
	"github.com/aalemi-dev/oboe/metadata"
)

// Well known keys and labels written by the tracing client and reporters.
const (
	KeyXTrace       = "X-Trace"
	KeyEdge         = "Edge"
	KeyLayer        = "Layer"
	KeyLabel        = "Label"
	KeySampleRate   = "SampleRate"
	KeySampleSource = "SampleSource"
	KeyTimestamp    = "Timestamp_u"
	KeyHostname     = "Hostname"
	KeyPID          = "PID"

	LabelEntry = "entry"
	LabelExit  = "exit"
	LabelInfo  = "info"
	LabelError = "error"
)

var (
	// ErrUnsupportedValue is returned by AddInfo for values that are not a
	// string, bool, integer, float or byte slice.
	ErrUnsupportedValue = fmt.Errorf("%w: unsupported annotation value", errs.ErrInvalidArgument)

	// ErrEmptyKey is returned by AddInfo for an empty key.
	ErrEmptyKey = fmt.Errorf("%w: empty annotation key", errs.ErrInvalidArgument)

	// ErrCrossTraceEdge is returned when an edge would link two different
	// traces.
	ErrCrossTraceEdge = fmt.Errorf("%w: edge belongs to another trace", errs.ErrInvalidArgument)

	// ErrInvalidMetadata is returned when an event or edge is built from
	// invalid Metadata.
	ErrInvalidMetadata = fmt.Errorf("%w: invalid metadata", errs.ErrState)
)

// KeyValue is one annotation of an Event.
type KeyValue struct {
	Key   string
	Value any
}

// Event is one causal node of a trace. It captures its own copy of a
// Metadata, an ordered list of annotations (keys may repeat) and the op ids
// of the operations that causally precede it.
//
// An Event is built and annotated by a single goroutine and then handed to
// a reporter exactly once.
type Event struct {
	md    metadata.Metadata
	info  []KeyValue
	edges []metadata.OpID
}

// New builds an Event from md. When newOpID is true the event gets a fresh
// op id in the same trace, which is how a context moves on to a new point.
func New(md metadata.Metadata, newOpID bool) (*Event, error) {
	if !md.IsValid() {
		return nil, ErrInvalidMetadata
	}
	if newOpID {
		next, err := md.WithRandomOpID()
		if err != nil {
			return nil, err
		}
		md = next
	}
	return &Event{md: md}, nil
}

// Metadata returns the event's identifier.
func (e *Event) Metadata() metadata.Metadata {
	return e.md
}

// Format returns the X-Trace string of the event's identifier. Annotations
// and edges are not part of it.
func (e *Event) Format() (string, error) {
	return e.md.Format()
}

// String returns the X-Trace string of the event's identifier.
func (e *Event) String() string {
	return e.md.String()
}

// AddInfo appends an annotation. Supported values are string, bool, every
// signed and unsigned integer type, float32, float64 and []byte. Integers
// are stored as int64 and float32 as float64. Nothing is appended on error.
func (e *Event) AddInfo(key string, value any) error {
	if key == "" {
		return ErrEmptyKey
	}
	v, err := normalize(value)
	if err != nil {
		return fmt.Errorf("%w: key %q has type %T", err, key, value)
	}
	e.info = append(e.info, KeyValue{Key: key, Value: v})
	return nil
}

// AddInfoPairs appends annotations given as alternating keys and values.
// Either every pair is appended or none is.
func (e *Event) AddInfoPairs(kvs ...any) error {
	if len(kvs)%2 != 0 {
		return fmt.Errorf("%w: odd number of key value arguments", errs.ErrInvalidArgument)
	}
	pending := make([]KeyValue, 0, len(kvs)/2)
	for i := 0; i < len(kvs); i += 2 {
		key, ok := kvs[i].(string)
		if !ok || key == "" {
			return fmt.Errorf("%w: argument %d is not a key", errs.ErrInvalidArgument, i)
		}
		v, err := normalize(kvs[i+1])
		if err != nil {
			return fmt.Errorf("%w: key %q has type %T", err, key, kvs[i+1])
		}
		pending = append(pending, KeyValue{Key: key, Value: v})
	}
	e.info = append(e.info, pending...)
	return nil
}

// Info returns a copy of the annotations in insertion order.
func (e *Event) Info() []KeyValue {
	out := make([]KeyValue, len(e.info))
	copy(out, e.info)
	return out
}

// Lookup returns the value of the first annotation named key.
func (e *Event) Lookup(key string) (any, bool) {
	for _, kv := range e.info {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Label returns the Label annotation, or "".
func (e *Event) Label() string {
	v, _ := e.Lookup(KeyLabel)
	s, _ := v.(string)
	return s
}

// Layer returns the Layer annotation, or "".
func (e *Event) Layer() string {
	v, _ := e.Lookup(KeyLayer)
	s, _ := v.(string)
	return s
}

// AddEdge records the op id of md as a causal predecessor of this event.
// md must be valid and belong to the same trace. Adding the same op id
// twice keeps a single edge.
func (e *Event) AddEdge(md metadata.Metadata) error {
	if !md.IsValid() {
		return ErrInvalidMetadata
	}
	if !md.SameTrace(e.md) {
		return fmt.Errorf("%w: %s != %s", ErrCrossTraceEdge, md.TaskIDString(), e.md.TaskIDString())
	}
	for _, op := range e.edges {
		if op == md.OpID {
			return nil
		}
	}
	e.edges = append(e.edges, md.OpID)
	return nil
}

// AddEdgeEvent links other as a causal predecessor.
func (e *Event) AddEdgeEvent(other *Event) error {
	if other == nil {
		return ErrInvalidMetadata
	}
	return e.AddEdge(other.md)
}

// AddEdgeString parses an X-Trace string and links it as a causal
// predecessor.
func (e *Event) AddEdgeString(xtrace string) error {
	md, err := metadata.Parse(xtrace)
	if err != nil {
		return err
	}
	return e.AddEdge(md)
}

// Edges returns a copy of the recorded predecessor op ids.
func (e *Event) Edges() []metadata.OpID {
	out := make([]metadata.OpID, len(e.edges))
	copy(out, e.edges)
	return out
}

func normalize(value any) (any, error) {
	switch v := value.(type) {
	case string, bool, int64, float64:
		return v, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint:
		return fromUnsigned(uint64(v))
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return fromUnsigned(v)
	case float32:
		return float64(v), nil
	case []byte:
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	default:
		return nil, ErrUnsupportedValue
	}
}

func fromUnsigned(v uint64) (any, error) {
	if v > math.MaxInt64 {
		return nil, fmt.Errorf("%w: %d overflows int64", errs.ErrInvalidArgument, v)
	}
	return int64(v), nil
}
