package metadata

import (
	"encoding/hex"
	"strings"
)

// Format encodes m as a version 2 X-Trace string: a header byte, the task
// id, the op id and a flags byte, hex encoded in upper case.
func (m Metadata) Format() (string, error) {
	if !m.IsValid() {
		return "", stateError("format invalid metadata")
	}

	buf := make([]byte, 0, StringLen/2)
	buf = append(buf, CurrentVersion<<4|lengthBits)
	buf = append(buf, m.TaskID[:]...)
	buf = append(buf, m.OpID[:]...)

	var flags byte
	if m.Sampled {
		flags |= flagSampled
	}
	buf = append(buf, flags)

	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// FormatV1 encodes m in the legacy version 1 layout, which has no flags
// byte and therefore drops the sampling flag.
func (m Metadata) FormatV1() (string, error) {
	if !m.IsValid() {
		return "", stateError("format invalid metadata")
	}

	buf := make([]byte, 0, StringLenV1/2)
	buf = append(buf, 1<<4|lengthBits)
	buf = append(buf, m.TaskID[:]...)
	buf = append(buf, m.OpID[:]...)

	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// Parse decodes an X-Trace string. Both version 2 and legacy version 1
// identifiers are accepted; version 1 identifiers decode with Sampled set to
// false. Parse is case insensitive.
//
// On any failure Parse returns the zero Metadata and an error wrapping
// errs.ErrInvalidFormat; it never returns a partially filled result.
func Parse(s string) (Metadata, error) {
	md, _, err := parse(s)
	return md, err
}

// Version returns the X-Trace version of s, or an error if s does not parse.
func Version(s string) (int, error) {
	_, v, err := parse(s)
	return v, err
}

// ParseVersion is Parse that also returns the version of s.
func ParseVersion(s string) (Metadata, int, error) {
	return parse(s)
}

func parse(s string) (Metadata, int, error) {
	if len(s) > MaxMetadataPackLen {
		return Metadata{}, 0, formatError("length %d exceeds %d", len(s), MaxMetadataPackLen)
	}
	if len(s) != StringLen && len(s) != StringLenV1 {
		return Metadata{}, 0, formatError("length %d", len(s))
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return Metadata{}, 0, formatError("not hex")
	}

	header := raw[0]
	version := int(header&maskVersion) >> 4
	switch {
	case version == CurrentVersion && len(raw) == StringLen/2:
	case version == 1 && len(raw) == StringLenV1/2:
	default:
		return Metadata{}, 0, formatError("version %d with length %d", version, len(s))
	}
	if header&(maskTaskIDLen|maskOpIDLen) != lengthBits {
		return Metadata{}, 0, formatError("header 0x%02X does not match id lengths", header)
	}
	if header&maskHasOptions != 0 {
		return Metadata{}, 0, formatError("header options are not supported")
	}

	var md Metadata
	copy(md.TaskID[:], raw[1:1+MaxTaskIDLen])
	copy(md.OpID[:], raw[1+MaxTaskIDLen:1+MaxTaskIDLen+MaxOpIDLen])
	if version == CurrentVersion {
		md.Sampled = raw[len(raw)-1]&flagSampled != 0
	}

	if !md.IsValid() {
		return Metadata{}, 0, formatError("zero task or op id")
	}
	return md, version, nil
}
