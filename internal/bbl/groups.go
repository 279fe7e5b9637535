package bbl

// decodeTag2_3S32 reads the TAG2_3S32 group: one lead byte whose top two
// bits pick a width shared by all three values.
func decodeTag2_3S32(c *cursor) [3]int32 {
	lead, _ := c.read()
	var out [3]int32
	switch lead >> 6 {
	case 0:
		out[0] = signExtend(uint32(lead)>>4, 2)
		out[1] = signExtend(uint32(lead)>>2, 2)
		out[2] = signExtend(uint32(lead)>>0, 2)
	case 1:
		b1, _ := c.read()
		out[0] = signExtend(uint32(lead), 4)
		out[1] = signExtend(uint32(b1)>>4, 4)
		out[2] = signExtend(uint32(b1), 4)
	case 2:
		b1, _ := c.read()
		b2, _ := c.read()
		out[0] = signExtend(uint32(lead), 6)
		out[1] = signExtend(uint32(b1), 6)
		out[2] = signExtend(uint32(b2), 6)
	case 3:
		selectors := lead & 0x3f
		for i := 0; i < 3; i++ {
			width := (selectors >> (2 * uint(i))) & 0x3
			out[i] = readTaggedWidth(c, width)
		}
	}
	return out
}

// readTaggedWidth reads a little-endian field of the width selected by the
// TAG2_3S32 sub-selector {00:8, 01:16, 10:24, 11:32} and sign-extends it.
func readTaggedWidth(c *cursor, selector byte) int32 {
	switch selector {
	case 0:
		b, _ := c.read()
		return signExtend(uint32(b), 8)
	case 1:
		b0, _ := c.read()
		b1, _ := c.read()
		v := uint32(b0) | uint32(b1)<<8
		return signExtend(v, 16)
	case 2:
		b0, _ := c.read()
		b1, _ := c.read()
		b2, _ := c.read()
		v := uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16
		return signExtend(v, 24)
	default:
		b0, _ := c.read()
		b1, _ := c.read()
		b2, _ := c.read()
		b3, _ := c.read()
		v := uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16 | uint32(b3)<<24
		return int32(v)
	}
}

const (
	tag84Zero byte = 0
	tag844Bit byte = 1
	tag848Bit byte = 2
	tag8416Bit byte = 3
)

// decodeTag8_4S16v1 implements the dataVersion<2 dialect: 4-bit values are
// packed two-per-byte, consuming the NEXT 4BIT selector slot as a pair.
func decodeTag8_4S16v1(c *cursor) [4]int32 {
	selector, _ := c.read()
	codes := [4]byte{
		selector & 0x3,
		(selector >> 2) & 0x3,
		(selector >> 4) & 0x3,
		(selector >> 6) & 0x3,
	}
	var out [4]int32
	for i := 0; i < 4; {
		switch codes[i] {
		case tag84Zero:
			out[i] = 0
			i++
		case tag844Bit:
			b, _ := c.read()
			out[i] = signExtend(uint32(b), 4)
			if i+1 < 4 {
				out[i+1] = signExtend(uint32(b)>>4, 4)
			}
			i += 2
		case tag848Bit:
			b, _ := c.read()
			out[i] = signExtend(uint32(b), 8)
			i++
		case tag8416Bit:
			b0, _ := c.read()
			b1, _ := c.read()
			v := uint32(b0) | uint32(b1)<<8
			out[i] = signExtend(v, 16)
			i++
		}
	}
	return out
}

// nibbleCarry is the sliding half-byte state the TAG8_4S16 v2 dialect
// carries across its four values.
type nibbleCarry struct {
	index  int  // 0 or 1
	buffer byte // last byte read, holding the pending low nibble when index==1
}

// decodeTag8_4S16v2 implements the dataVersion>=2 dialect: 4-bit values
// share a single sliding nibble buffer across all four slots instead of
// pairing up by selector position.
func decodeTag8_4S16v2(c *cursor) [4]int32 {
	selector, _ := c.read()
	codes := [4]byte{
		selector & 0x3,
		(selector >> 2) & 0x3,
		(selector >> 4) & 0x3,
		(selector >> 6) & 0x3,
	}
	var out [4]int32
	carry := nibbleCarry{}
	for i := 0; i < 4; i++ {
		switch codes[i] {
		case tag84Zero:
			out[i] = 0
		case tag844Bit:
			out[i] = carry.take4bit(c)
		case tag848Bit:
			out[i] = carry.take8bit(c)
		case tag8416Bit:
			out[i] = carry.take16bit(c)
		}
	}
	return out
}

func (n *nibbleCarry) take4bit(c *cursor) int32 {
	if n.index == 0 {
		b, _ := c.read()
		n.buffer = b
		n.index = 1
		return signExtend(uint32(b)>>4, 4)
	}
	n.index = 0
	return signExtend(uint32(n.buffer), 4)
}

func (n *nibbleCarry) take8bit(c *cursor) int32 {
	if n.index == 0 {
		b, _ := c.read()
		return signExtend(uint32(b), 8)
	}
	next, _ := c.read()
	v := (uint32(n.buffer&0xf) << 4) | (uint32(next) >> 4)
	n.buffer = next
	return signExtend(v, 8)
}

func (n *nibbleCarry) take16bit(c *cursor) int32 {
	if n.index == 0 {
		b0, _ := c.read()
		b1, _ := c.read()
		v := uint32(b0)<<8 | uint32(b1)
		return signExtend(v, 16)
	}
	b1, _ := c.read()
	b2, _ := c.read()
	v := (uint32(n.buffer&0xf) << 12) | (uint32(b1) << 4) | (uint32(b2) >> 4)
	n.buffer = b2
	return signExtend(v, 16)
}

// decodeTag8_8SVB reads up to eight signed VB values. A group of exactly one
// value skips the presence bitmap entirely.
func decodeTag8_8SVB(c *cursor, count int) []int32 {
	out := make([]int32, count)
	if count == 1 {
		out[0] = readSignedVB(c)
		return out
	}
	bitmap, _ := c.read()
	for i := 0; i < count; i++ {
		if bitmap&(1<<uint(i)) != 0 {
			out[i] = readSignedVB(c)
		}
	}
	return out
}
