// Package bbl decodes the binary flight-data-recorder ("blackbox") log format
// written by a flight controller while armed. It reads an immutable byte
// slice and emits decoded frames through callbacks; it performs no I/O, no
// logging, and has no third-party dependencies — that ambient stack lives in
// the packages that call it.
package bbl

// FrameType identifies one of the five frame markers the decoder recognises.
type FrameType byte

const (
	FrameIntra   FrameType = 'I'
	FrameInter   FrameType = 'P'
	FrameGPS     FrameType = 'G'
	FrameGPSHome FrameType = 'H'
	FrameEvent   FrameType = 'E'
)

// IsKnownFrameType reports whether b is one of the five recognised frame
// markers.
func IsKnownFrameType(b byte) bool {
	switch FrameType(b) {
	case FrameIntra, FrameInter, FrameGPS, FrameGPSHome, FrameEvent:
		return true
	default:
		return false
	}
}

// Encoding is the closed set of wire encodings a field may declare.
type Encoding int

const (
	EncodingSignedVB Encoding = iota
	EncodingUnsignedVB
	EncodingNeg14Bit
	EncodingTag8_4S16
	EncodingTag2_3S32
	EncodingTag8_8SVB
	EncodingNull
)

func (e Encoding) valid() bool {
	return e >= EncodingSignedVB && e <= EncodingNull
}

// Predictor is the closed set of prediction rules a field may declare.
type Predictor int

const (
	PredictorZero Predictor = iota
	PredictorPrevious
	PredictorStraightLine
	PredictorAverage2
	PredictorMinThrottle
	PredictorMotor0
	PredictorInc
	PredictorHomeCoord
	PredictorConst1500
	PredictorVBatRef
	PredictorHomeCoord1
)

func (p Predictor) valid() bool {
	return p >= PredictorZero && p <= PredictorHomeCoord1
}

// MaxFields bounds the number of fields any single frame type may declare.
const MaxFields = 128

// absentIndex is the sentinel stored in motor0Index/home0Index/home1Index
// before the corresponding field name has been observed.
const absentIndex = -1

// FrameDef holds the per-field predictor and encoding tables for one frame
// type, plus the field names in declaration order. All three are always the
// same length once a header has finished declaring a frame type.
type FrameDef struct {
	Names     []string
	Predictor []Predictor
	Encoding  []Encoding
	Signed    []bool
}

func (d *FrameDef) fieldCount() int {
	return len(d.Names)
}

func (d *FrameDef) consistent() bool {
	return len(d.Predictor) == len(d.Names) && len(d.Encoding) == len(d.Names)
}

// FirmwareType distinguishes the two predictor/gyro-scale dialects a log may
// declare.
type FirmwareType int

const (
	FirmwareBaseflight FirmwareType = iota
	FirmwareCleanflight
)

// TuningConstants carries the global, numeric header values that predictors
// and unit conversions consult.
type TuningConstants struct {
	MinThrottle        int32
	MaxThrottle        int32
	RcRate             int32
	VbatScale          int32
	VbatRef            int32
	VbatMinCellVoltage int32
	VbatWarningVoltage int32
	VbatMaxCellVoltage int32
	GyroScale          float32
	Acc1G              int32
	FrameIntervalI     int32
	FrameIntervalPNum  int32
	FrameIntervalPDenom int32
	DataVersion        int32
	FirmwareType       FirmwareType
}

func defaultTuningConstants() TuningConstants {
	return TuningConstants{
		FrameIntervalI:      32,
		FrameIntervalPNum:   1,
		FrameIntervalPDenom: 1,
	}
}

// EventTag discriminates the payload carried by an EventRecord.
type EventTag int

const (
	EventInvalid EventTag = iota
	EventSyncBeep
	EventAutotuneCycleStart
	EventAutotuneCycleResult
)

// EventRecord is the decoded payload of an 'E' frame.
type EventRecord struct {
	Tag EventTag

	// SyncBeep
	Time uint32

	// AutotuneCycleStart / AutotuneCycleResult
	Phase    uint8
	Cycle    uint8
	P        uint8
	I        uint8
	D        uint8
	Overshot uint8
}

// FieldValues is the decoded, signed 32-bit value of every field of one
// frame, in declaration order.
type FieldValues []int32
