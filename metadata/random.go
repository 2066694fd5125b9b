package metadata

import (
	"crypto/rand"
	"fmt"
	"io"
)

// maxRandomAttempts bounds retries when the random source yields an all
// zero id.
const maxRandomAttempts = 4

// randReader provides random ids and can be overridden in tests.
var randReader io.Reader = rand.Reader

// Random returns Metadata for a brand new trace. Sampled is false until a
// sampling decision marks it.
func Random() (Metadata, error) {
	var md Metadata
	for attempt := 0; attempt < maxRandomAttempts; attempt++ {
		if _, err := io.ReadFull(randReader, md.TaskID[:]); err != nil {
			return Metadata{}, fmt.Errorf("read random task id: %w", err)
		}
		if !md.TaskID.IsZero() {
			break
		}
	}
	if md.TaskID.IsZero() {
		return Metadata{}, stateError("random source produced a zero task id")
	}

	op, err := randomOpID(OpID{})
	if err != nil {
		return Metadata{}, err
	}
	md.OpID = op
	return md, nil
}

// randomOpID returns a non zero op id different from prev.
func randomOpID(prev OpID) (OpID, error) {
	var op OpID
	for attempt := 0; attempt < maxRandomAttempts; attempt++ {
		if _, err := io.ReadFull(randReader, op[:]); err != nil {
			return OpID{}, fmt.Errorf("read random op id: %w", err)
		}
		if !op.IsZero() && op != prev {
			return op, nil
		}
	}
	return OpID{}, stateError("random source did not produce a fresh op id")
}
