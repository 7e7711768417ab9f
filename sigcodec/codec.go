/*
Package sigcodec splits signature blobs into per signer records and joins
them back.

A blob is a sequence of 65 byte static records r||s||v, followed by a
dynamic region. The recovery tag v selects the record kind:

	0      contract signer; r holds the owner, s the offset of its payload
	1      pre-approved hash; r holds the owner
	27, 28 plain key signature
	31, 32 legacy eth_sign signature (v is shifted by 4)

A contract payload starts with its 32 byte big endian length. The static
region ends where the lowest payload offset points. Decoding checks layout
only, never cryptography.
*/
package sigcodec

// Decode returns the records of a blob, in blob order.
func Decode(blob []byte) ([]Record, error) {
	if len(blob) < RecordLen {
		return nil, ErrTruncatedSignature.Newf("%d bytes, at least %d required", len(blob), RecordLen)
	}

	var (
		records   []Record
		staticEnd = len(blob)
		pos       = 0
	)
	for ; pos+RecordLen <= staticEnd; pos += RecordLen {
		rec, err := FromRSV(blob[pos : pos+RecordLen])
		if err != nil {
			return nil, err
		}
		if rec.Type() == TypeContract {
			offset, payload, err := dynamicPart(blob, rec.S[:], pos)
			if err != nil {
				return nil, err
			}
			rec.Payload = payload
			if offset < staticEnd {
				staticEnd = offset
			}
		}
		records = append(records, rec)
	}

	if pos != staticEnd {
		if staticEnd == len(blob) {
			return nil, ErrTruncatedSignature.Newf("partial record at byte %d", pos)
		}
		return nil, ErrMalformedSignature.Newf("payload offset %d splits a static record", staticEnd)
	}
	return records, nil
}

func dynamicPart(blob []byte, offsetWord []byte, pos int) (int, []byte, error) {
	offset, ok := readUint(offsetWord)
	if !ok {
		return 0, nil, ErrTruncatedSignature.New("payload offset out of range")
	}
	if offset < pos+RecordLen {
		return 0, nil, ErrMalformedSignature.Newf("payload offset %d points into static record at %d", offset, pos)
	}
	if offset > len(blob)-32 {
		return 0, nil, ErrTruncatedSignature.Newf("payload offset %d past the end", offset)
	}
	size, ok := readUint(blob[offset : offset+32])
	if !ok || size > len(blob)-offset-32 {
		return 0, nil, ErrTruncatedSignature.Newf("payload at %d runs past the end", offset)
	}
	payload := make([]byte, size)
	copy(payload, blob[offset+32:offset+32+size])
	return offset, payload, nil
}

// Encode joins records into a single canonical blob. Static records are
// written in the given order, then every contract payload in the same
// order, each as its length word followed by the payload zero padded to a
// 32 byte boundary. Payload offsets are rewritten.
func Encode(records []Record) []byte {
	staticLen := len(records) * RecordLen
	size := staticLen
	for _, r := range records {
		if r.Type() == TypeContract {
			size += 32 + padded(len(r.Payload))
		}
	}

	out := make([]byte, size)
	dyn := staticLen
	for i, r := range records {
		at := i * RecordLen
		copy(out[at:], r.R[:])
		if r.Type() == TypeContract {
			putOffset(out[at+32:at+64], dyn)
			putOffset(out[dyn:dyn+32], len(r.Payload))
			copy(out[dyn+32:], r.Payload)
			dyn += 32 + padded(len(r.Payload))
		} else {
			copy(out[at+32:], r.S[:])
		}
		out[at+64] = r.V
	}
	return out
}

func padded(n int) int {
	return (n + 31) / 32 * 32
}
