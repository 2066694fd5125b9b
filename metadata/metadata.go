package metadata

import (
	"bytes"
	"encoding/hex"
	"strings"
)

// Sizes and header bits of the X-Trace identifier. These values are shared
// with every collector that reads X-Trace and must not change.
const (
	// MaxTaskIDLen is the byte length of the trace-scope identifier.
	MaxTaskIDLen = 20

	// MaxOpIDLen is the byte length of the operation-scope identifier.
	MaxOpIDLen = 8

	// MaxMetadataPackLen is the largest textual identifier accepted by Parse.
	MaxMetadataPackLen = 512

	// CurrentVersion is the X-Trace version written by Format.
	CurrentVersion = 2

	// StringLen is the length of a version 2 identifier:
	// header + task id + op id + flags, hex encoded.
	StringLen = (1 + MaxTaskIDLen + MaxOpIDLen + 1) * 2

	// StringLenV1 is the length of a legacy version 1 identifier, which has
	// no trailing flags byte.
	StringLenV1 = (1 + MaxTaskIDLen + MaxOpIDLen) * 2
)

const (
	maskTaskIDLen  = 0x03
	maskHasOptions = 0x04
	maskOpIDLen    = 0x08
	maskVersion    = 0xF0

	// lengthBits encodes a 20 byte task id and an 8 byte op id.
	lengthBits = maskTaskIDLen | maskOpIDLen

	flagSampled = 0x01
)

// TaskID identifies a trace.
type TaskID [MaxTaskIDLen]byte

// IsZero reports whether the id is all zero bytes.
func (t TaskID) IsZero() bool { return t == TaskID{} }

// String returns the upper case hex form of the id.
func (t TaskID) String() string { return strings.ToUpper(hex.EncodeToString(t[:])) }

// OpID identifies one operation inside a trace.
type OpID [MaxOpIDLen]byte

// IsZero reports whether the id is all zero bytes.
func (o OpID) IsZero() bool { return o == OpID{} }

// String returns the upper case hex form of the id.
func (o OpID) String() string { return strings.ToUpper(hex.EncodeToString(o[:])) }

// ParseOpID decodes the hex form of an op id, as found in reported Edge
// entries.
func ParseOpID(s string) (OpID, error) {
	var id OpID
	if len(s) != MaxOpIDLen*2 {
		return OpID{}, formatError("op id length %d", len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return OpID{}, formatError("op id is not hex")
	}
	if id.IsZero() {
		return OpID{}, formatError("op id is zero")
	}
	return id, nil
}

// Metadata identifies a position within a trace: the trace it belongs to,
// the operation it names, and whether that position is sampled.
//
// Metadata is a value type. Copies never share storage, so each holder owns
// its own identifier. The zero value is the empty, invalid Metadata.
type Metadata struct {
	TaskID  TaskID
	OpID    OpID
	Sampled bool
}

// IsValid reports whether both identifiers are set. Every consumer rejects
// invalid Metadata before use.
func (m Metadata) IsValid() bool {
	return !m.TaskID.IsZero() && !m.OpID.IsZero()
}

// Equal reports whether m and other name the same position with the same
// sampling flag.
func (m Metadata) Equal(other Metadata) bool {
	return m == other
}

// SameTrace reports whether m and other belong to the same trace.
func (m Metadata) SameTrace(other Metadata) bool {
	return bytes.Equal(m.TaskID[:], other.TaskID[:])
}

// WithSampled returns a copy of m with the sampling flag set to sampled.
func (m Metadata) WithSampled(sampled bool) Metadata {
	m.Sampled = sampled
	return m
}

// WithOpID returns a copy of m that keeps the task id and uses op as the op
// id. op must be exactly MaxOpIDLen bytes and not all zero.
func (m Metadata) WithOpID(op []byte) (Metadata, error) {
	if !m.IsValid() {
		return Metadata{}, stateError("copy op id into invalid metadata")
	}
	if len(op) != MaxOpIDLen {
		return Metadata{}, argumentError("op id must be %d bytes, got %d", MaxOpIDLen, len(op))
	}
	var id OpID
	copy(id[:], op)
	if id.IsZero() {
		return Metadata{}, argumentError("op id is zero")
	}
	m.OpID = id
	return m, nil
}

// WithRandomOpID returns a copy of m in the same trace with a freshly
// generated op id that differs from the current one.
func (m Metadata) WithRandomOpID() (Metadata, error) {
	if !m.IsValid() {
		return Metadata{}, stateError("regenerate op id of invalid metadata")
	}
	op, err := randomOpID(m.OpID)
	if err != nil {
		return Metadata{}, err
	}
	m.OpID = op
	return m, nil
}

// TaskIDString returns the hex form of the task id.
func (m Metadata) TaskIDString() string { return m.TaskID.String() }

// OpIDString returns the hex form of the op id.
func (m Metadata) OpIDString() string { return m.OpID.String() }

// String returns the X-Trace form of m, or "" when m is invalid.
func (m Metadata) String() string {
	s, err := m.Format()
	if err != nil {
		return ""
	}
	return s
}
