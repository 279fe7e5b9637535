package bbl

// readUnsignedVB reads a little-endian base-128 integer: each byte
// contributes its low 7 bits, and a byte with the top bit clear terminates
// the sequence. At most five bytes are consumed. A sixth required
// continuation byte means the stream is malformed; the caller gets 0 back
// and the frame is expected to be rejected downstream as corrupt once its
// length or field count stops adding up.
func readUnsignedVB(c *cursor) uint32 {
	var result uint32
	for i := 0; i < 5; i++ {
		b, ok := c.read()
		if !ok {
			return 0
		}
		result |= uint32(b&0x7f) << (7 * uint(i))
		if b&0x80 == 0 {
			return result
		}
	}
	return 0
}

// readSignedVB decodes an unsigned VB value and undoes its zig-zag mapping.
func readSignedVB(c *cursor) int32 {
	u := readUnsignedVB(c)
	return zigZagDecode(u)
}

func zigZagDecode(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1)
}

func zigZagEncode(v int32) uint32 {
	return uint32((v << 1) ^ (v >> 31))
}

// signExtend returns the signed interpretation of the low `bits` bits of v.
func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

// appendUnsignedVB appends the VB encoding of u to buf and returns the
// extended slice. Used by test fixtures and the sample log builder, never by
// the decode path itself.
func appendUnsignedVB(buf []byte, u uint32) []byte {
	for {
		b := byte(u & 0x7f)
		u >>= 7
		if u != 0 {
			buf = append(buf, b|0x80)
			continue
		}
		buf = append(buf, b)
		return buf
	}
}

// appendSignedVB appends the zig-zag VB encoding of v to buf.
func appendSignedVB(buf []byte, v int32) []byte {
	return appendUnsignedVB(buf, zigZagEncode(v))
}
