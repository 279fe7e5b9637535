package bbl

import "testing"

func TestDecodeTag2_3S32Selector01(t *testing.T) {
	c := newCursor([]byte{0x40, 0xAB})
	got := decodeTag2_3S32(c)
	want := [3]int32{0, -6, -5}
	if got != want {
		t.Errorf("decodeTag2_3S32(0x40 0xAB) = %v, want %v", got, want)
	}
}

func TestDecodeTag2_3S32Selector00(t *testing.T) {
	// lead byte 0b00_10_01_11: value0 = top 2 bits (0b10 = -2), value1 =
	// middle 2 bits (0b01 = 1), value2 = low 2 bits (0b11 = -1).
	c := newCursor([]byte{0b10_01_11})
	got := decodeTag2_3S32(c)
	want := [3]int32{-2, 1, -1}
	if got != want {
		t.Errorf("decodeTag2_3S32 selector00 = %v, want %v", got, want)
	}
}

func TestDecodeTag2_3S32Selector11Widths(t *testing.T) {
	// selector 11, sub-selectors (LSB first) = {00:8, 01:16, 10:24} packed in
	// the low 6 bits: 00 | 01<<2 | 10<<4 = 0b10_01_00 = 0x24.
	lead := byte(0xC0 | 0x24)
	data := []byte{
		lead,
		0x7f,             // value0: 8-bit, +127
		0x34, 0x12,       // value1: 16-bit LE, +0x1234
		0x01, 0x00, 0x80, // value2: 24-bit LE, sign bit set -> negative
	}
	c := newCursor(data)
	got := decodeTag2_3S32(c)
	if got[0] != 127 {
		t.Errorf("value0 = %d, want 127", got[0])
	}
	if got[1] != 0x1234 {
		t.Errorf("value1 = %d, want %d", got[1], 0x1234)
	}
	if got[2] >= 0 {
		t.Errorf("value2 = %d, want negative (top bit of 24-bit width set)", got[2])
	}
}

func TestDecodeTag8_4S16v1GroupSize(t *testing.T) {
	// codes: 0=ZERO, 1=4BIT(paired with next 4BIT), 2=8BIT, 3=16BIT would
	// overflow four slots once paired; use ZERO,4BIT,4BIT,8BIT instead:
	// selector bits (LSB first): 00(zero) 01(4bit) 01(4bit) 10(8bit)
	selector := byte(0b10_01_01_00)
	data := []byte{selector, 0x3A, 0x05}
	c := newCursor(data)
	got := decodeTag8_4S16v1(c)
	if len(got) != 4 {
		t.Fatalf("decodeTag8_4S16v1 returned %d values, want 4", len(got))
	}
	if got[0] != 0 {
		t.Errorf("value0 = %d, want 0 (ZERO code)", got[0])
	}
}

func TestDecodeTag8_8SVBSingleValueSkipsBitmap(t *testing.T) {
	buf := appendSignedVB(nil, -42)
	c := newCursor(buf)
	got := decodeTag8_8SVB(c, 1)
	if len(got) != 1 || got[0] != -42 {
		t.Errorf("decodeTag8_8SVB(count=1) = %v, want [-42]", got)
	}
}

func TestDecodeTag8_8SVBBitmapGatesPresence(t *testing.T) {
	// bitmap 0b00000101: values 0 and 2 present, rest zero.
	buf := []byte{0b0000_0101}
	buf = appendSignedVB(buf, 7)
	buf = appendSignedVB(buf, -3)
	c := newCursor(buf)
	got := decodeTag8_8SVB(c, 4)
	want := []int32{7, 0, -3, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
