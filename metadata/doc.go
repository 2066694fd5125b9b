// Package metadata implements the X-Trace identifier that ties the events of
// one trace together.
//
// A Metadata carries a 20 byte task id naming the trace, an 8 byte op id
// naming one operation inside it, and a sampled flag. Its textual form is
// the hex encoding of
//
//	header(1) | task id(20) | op id(8) | flags(1)
//
// where the header byte 0x2B packs the version (2) in the high nibble and
// the id lengths in the low bits, and flags bit 0x01 marks the position as
// sampled. Legacy version 1 identifiers (header 0x1B, no flags byte) are
// still accepted by Parse.
//
// Basic usage:
//
//	md, err := metadata.Random()
//	if err != nil {
//		return err
//	}
//	header := md.WithSampled(true).String()
//
//	inbound, err := metadata.Parse(r.Header.Get("X-Trace"))
//	if err != nil {
//		// errors.Is(err, errs.ErrInvalidFormat)
//	}
//	next, err := inbound.WithRandomOpID()
//
// Metadata is an immutable value: every method returns a new copy, so it is
// safe to share between goroutines.
package metadata
