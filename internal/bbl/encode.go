package bbl

// AppendUnsignedVB and AppendSignedVB are encode-side mirrors of the
// decoder's variable-byte primitives, exported so fixture builders outside
// this package (such as internal/samples) can construct synthetic wire
// bytes without duplicating the VB format.
func AppendUnsignedVB(buf []byte, u uint32) []byte {
	return appendUnsignedVB(buf, u)
}

func AppendSignedVB(buf []byte, v int32) []byte {
	return appendSignedVB(buf, v)
}
