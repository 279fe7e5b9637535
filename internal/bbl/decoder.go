package bbl

import (
	"bytes"
	"errors"
)

// subLogMarker is the literal line every sub-log begins with.
const subLogMarker = "H Product:Blackbox flight data recorder by Nicholas Sherlock\n"

// MaxLogsInFile bounds how many sub-log start offsets are indexed from one
// file.
const MaxLogsInFile = 128

// MaxFrameLength is the hard cap on a well-formed frame's byte length;
// anything longer is corrupt by construction.
const MaxFrameLength = 256

type subLog struct {
	start, end int64
}

// MetadataReadyFunc fires exactly once, after headers parse and before the
// first data frame.
type MetadataReadyFunc func(d *Decoder)

// FrameReadyFunc fires once per frame attempt, valid or corrupt. For
// corrupt frames values is nil and fieldCount is 0; semantically rejected
// I/P frames carry their decoded values with valid set to false.
type FrameReadyFunc func(d *Decoder, valid bool, values FieldValues, frameType FrameType, fieldCount int, fileOffset int64, frameSize int)

// EventFunc fires once per accepted 'E' frame.
type EventFunc func(d *Decoder, event EventRecord)

// Decoder parses one blackbox file, which may concatenate several sub-logs.
// It owns the history buffers and field tables and is not safe for
// concurrent use; re-parsing the same instance resets per-parse state but
// keeps the sub-log index.
type Decoder struct {
	data []byte
	logs []subLog

	cur *cursor

	intraDef   FrameDef
	interDef   FrameDef
	gpsDef     FrameDef
	gpsHomeDef FrameDef

	tuning TuningConstants

	motor0Index    int
	iterationIndex int
	timeIndex      int
	home0Index     int
	home1Index     int

	interPredictorSet bool
	interEncodingSet  bool

	ring       historyRing
	gpsHome    gpsHomeState
	gpsTarget  [MaxFields]int32

	mainStreamIsValid   bool
	prematureEof        bool
	currentFrameCorrupt bool
	fatalErr            error

	lastEvent    EventRecord
	pendingEvent EventRecord

	raw bool

	stats Statistics

	onMetadataReady MetadataReadyFunc
	onFrameReady    FrameReadyFunc
	onEvent         EventFunc
}

// NewDecoder maps data (already read into memory by the caller) and indexes
// its sub-logs. It returns an error for an empty input or one containing no
// recognisable sub-log start marker.
func NewDecoder(data []byte) (*Decoder, error) {
	if len(data) == 0 {
		return nil, errors.New("bbl: empty input")
	}
	d := &Decoder{data: data}
	d.indexSubLogs()
	if len(d.logs) == 0 {
		return nil, errors.New("bbl: no sub-log start marker found")
	}
	return d, nil
}

func (d *Decoder) indexSubLogs() {
	marker := []byte(subLogMarker)
	var starts []int64
	searchFrom := 0
	for len(starts) < MaxLogsInFile {
		idx := bytes.Index(d.data[searchFrom:], marker)
		if idx < 0 {
			break
		}
		starts = append(starts, int64(searchFrom+idx))
		searchFrom += idx + 1
	}
	d.logs = make([]subLog, len(starts))
	for i, s := range starts {
		end := int64(len(d.data))
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		d.logs[i] = subLog{start: s, end: end}
	}
}

// LogCount reports how many sub-logs were indexed.
func (d *Decoder) LogCount() int {
	return len(d.logs)
}

// Tuning returns the tuning constants parsed from the current sub-log's
// header. Only meaningful after Parse has returned.
func (d *Decoder) Tuning() TuningConstants {
	return d.tuning
}

// Statistics returns a snapshot of the live decode statistics.
func (d *Decoder) Statistics() Statistics {
	return d.stats
}

// MainStreamValid reports whether the main frame stream is currently
// synchronised.
func (d *Decoder) MainStreamValid() bool {
	return d.mainStreamIsValid
}

// GPSHomeValid reports whether a GPS home position has been established.
func (d *Decoder) GPSHomeValid() bool {
	return d.gpsHome.valid
}

// LastEvent returns the most recently decoded event record.
func (d *Decoder) LastEvent() EventRecord {
	return d.lastEvent
}

// FieldNames returns the declared field names for a frame type, or nil if
// none were declared.
func (d *Decoder) FieldNames(ft FrameType) []string {
	def := d.frameDef(ft)
	if def == nil {
		return nil
	}
	return def.Names
}

// Err returns the fatal error that aborted the most recent Parse call, if
// any.
func (d *Decoder) Err() error {
	return d.fatalErr
}

func (d *Decoder) frameDef(ft FrameType) *FrameDef {
	switch ft {
	case FrameIntra:
		return &d.intraDef
	case FrameInter:
		return &d.interDef
	case FrameGPS:
		return &d.gpsDef
	case FrameGPSHome:
		return &d.gpsHomeDef
	default:
		return nil
	}
}

// VbatToMillivolts converts a raw vbat ADC reading to millivolts using the
// header's vbatscale.
func (d *Decoder) VbatToMillivolts(vbat int32) int32 {
	return int32((int64(vbat) * 330 * int64(d.tuning.VbatScale)) / 4095)
}

// EstimateNumCells returns the smallest plausible battery cell count given
// vbatref and vbatmaxcellvoltage.
func (d *Decoder) EstimateNumCells() int {
	mv := d.VbatToMillivolts(d.tuning.VbatRef) / 100
	for n := int32(1); n < 8; n++ {
		if mv < n*d.tuning.VbatMaxCellVoltage {
			return int(n)
		}
	}
	return 8
}

func (d *Decoder) resetParseState() {
	d.intraDef = FrameDef{}
	d.interDef = FrameDef{}
	d.gpsDef = FrameDef{}
	d.gpsHomeDef = FrameDef{}
	d.tuning = defaultTuningConstants()
	d.motor0Index = absentIndex
	d.iterationIndex = absentIndex
	d.timeIndex = absentIndex
	d.home0Index = absentIndex
	d.home1Index = absentIndex
	d.interPredictorSet = false
	d.interEncodingSet = false
	d.ring = newHistoryRing()
	d.gpsHome = gpsHomeState{}
	d.mainStreamIsValid = false
	d.prematureEof = false
	d.currentFrameCorrupt = false
	d.fatalErr = nil
	d.lastEvent = EventRecord{}
	d.pendingEvent = EventRecord{}
	d.stats = newStatistics()
}

// Parse decodes sub-log logIndex, invoking the supplied callbacks as frames
// are recognised. raw disables predictor application, returning field
// values exactly as read from the stream. It reports false for an
// out-of-range index, an empty data section, a header that never declares
// main field definitions, or a fatal decoding error.
func (d *Decoder) Parse(logIndex int, raw bool, onMetadataReady MetadataReadyFunc, onFrameReady FrameReadyFunc, onEvent EventFunc) bool {
	if logIndex < 0 || logIndex >= len(d.logs) {
		return false
	}
	lg := d.logs[logIndex]
	slice := d.data[lg.start:lg.end]
	if len(slice) == 0 {
		return false
	}

	d.resetParseState()
	d.raw = raw
	d.onMetadataReady = onMetadataReady
	d.onFrameReady = onFrameReady
	d.onEvent = onEvent
	d.cur = newCursor(slice)

	if !d.runHeaderState() {
		return false
	}
	d.runDataState()
	return d.fatalErr == nil
}

func (d *Decoder) runHeaderState() bool {
	for {
		b, ok := d.cur.read()
		if !ok {
			return false
		}
		switch {
		case b == byte(FrameGPSHome):
			d.handleHeaderLine(readLine(d.cur))
		case IsKnownFrameType(b) && b != byte(FrameGPSHome):
			d.cur.unread()
			return d.headerToDataTransition()
		default:
			// garbage before the first frame is tolerated
		}
	}
}

func readLine(c *cursor) []byte {
	var line []byte
	for {
		b, ok := c.read()
		if !ok {
			return line
		}
		if b == '\n' {
			return line
		}
		line = append(line, b)
	}
}

func (d *Decoder) headerToDataTransition() bool {
	d.discardInconsistentFrameDefs()
	if d.intraDef.fieldCount() == 0 {
		return false
	}
	d.fixUpInterPredictorEncoding()
	d.fixUpGPSPredictorPairs()
	if d.onMetadataReady != nil {
		d.onMetadataReady(d)
	}
	return true
}

// discardInconsistentFrameDefs resets any frame type whose name/predictor/
// encoding tables disagree in length back to an undeclared FrameDef{}. A
// header that declares e.g. a 5-field "Field I name" line and a 4-field
// "Field I predictor" line is ASCII-valid but would otherwise let parseFrame
// index past the end of Predictor/Encoding; treating it as undeclared routes
// it through the existing fieldCount()==0 corruption path instead.
func (d *Decoder) discardInconsistentFrameDefs() {
	if !d.intraDef.consistent() {
		d.intraDef = FrameDef{}
	}
	if !d.interDef.consistent() {
		d.interDef = FrameDef{}
	}
	if !d.gpsDef.consistent() {
		d.gpsDef = FrameDef{}
	}
	if !d.gpsHomeDef.consistent() {
		d.gpsHomeDef = FrameDef{}
	}
}

// fixUpInterPredictorEncoding copies I's predictor/encoding tables onto P
// when the header never declared "Field P predictor"/"Field P encoding" of
// its own; only the field names are documented as always inherited from I.
func (d *Decoder) fixUpInterPredictorEncoding() {
	if !d.interPredictorSet {
		d.interDef.Predictor = append([]Predictor(nil), d.intraDef.Predictor...)
	}
	if !d.interEncodingSet {
		d.interDef.Encoding = append([]Encoding(nil), d.intraDef.Encoding...)
	}
}

// fixUpGPSPredictorPairs changes the second of any two adjacent HOME_COORD
// predictors to HOME_COORD_1, letting the predictor engine distinguish
// latitude from longitude.
func (d *Decoder) fixUpGPSPredictorPairs() {
	preds := d.gpsDef.Predictor
	for i := 1; i < len(preds); i++ {
		if preds[i-1] == PredictorHomeCoord && preds[i] == PredictorHomeCoord {
			preds[i] = PredictorHomeCoord1
		}
	}
}

func (d *Decoder) runDataState() {
	var frameStart int64
	var lastFrameType FrameType
	havePending := false

	for {
		offsetBeforeRead := d.cur.offset
		b, ok := d.cur.read()

		if havePending {
			length := offsetBeforeRead - frameStart
			complete := !d.currentFrameCorrupt && length <= int64(MaxFrameLength) &&
				((ok && IsKnownFrameType(b)) || (!ok && !d.prematureEof))
			if complete {
				d.stats.recordValid(lastFrameType, int(length))
				d.completeFrame(lastFrameType, frameStart, int(length))
			} else {
				d.mainStreamIsValid = false
				d.stats.recordCorrupt(lastFrameType)
				d.fireFrameReady(lastFrameType, false, nil, frameStart, int(length))
				d.cur.rewindTo(frameStart + 1)
				d.prematureEof = false
				havePending = false
				if d.fatalErr != nil {
					return
				}
				continue
			}
			havePending = false
			if d.fatalErr != nil {
				return
			}
		}

		if !ok {
			return
		}

		ft := FrameType(b)
		frameStart = offsetBeforeRead
		lastFrameType = ft
		havePending = true
		d.prematureEof = false
		d.currentFrameCorrupt = !IsKnownFrameType(b)
		if d.currentFrameCorrupt {
			d.mainStreamIsValid = false
		} else {
			d.decodeFrame(ft)
		}
		if d.cur.eof {
			d.prematureEof = true
		}
	}
}

func (d *Decoder) decodeFrame(ft FrameType) {
	switch ft {
	case FrameIntra, FrameInter:
		d.decodeMainFrame(ft)
	case FrameGPS:
		d.decodeGPSFrame()
	case FrameGPSHome:
		d.decodeGPSHomeFrame()
	case FrameEvent:
		d.pendingEvent = parseEventFrame(d.cur)
	}
}

func (d *Decoder) decodeMainFrame(ft FrameType) {
	def := d.frameDef(ft)
	fieldCount := def.fieldCount()
	if fieldCount == 0 {
		d.currentFrameCorrupt = true
		return
	}
	target := d.ring.currentSlice(fieldCount)
	previous := d.ring.previousSlice(fieldCount)
	previous2 := d.ring.previous2Slice(fieldCount)

	var skipped int32
	if previous != nil && d.iterationIndex != absentIndex && d.iterationIndex < fieldCount {
		idx := previous[d.iterationIndex] + 1
		for !shouldHaveFrame(idx, d.tuning.FrameIntervalI, d.tuning.FrameIntervalPNum, d.tuning.FrameIntervalPDenom) {
			skipped++
			idx++
		}
		d.stats.IntentionallyAbsentIterations += int64(skipped)
	}

	src := fieldSource{
		tuning:      d.tuning,
		motor0Index: d.motor0Index,
		gpsHomePrev: d.gpsHome.prevSlice(),
		home0Index:  d.home0Index,
		home1Index:  d.home1Index,
	}
	if err := parseFrame(d.cur, def, target, previous, previous2, skipped, d.raw, src); err != nil {
		d.fatalErr = err
	}
}

func (d *Decoder) decodeGPSFrame() {
	fieldCount := d.gpsDef.fieldCount()
	if fieldCount == 0 {
		d.currentFrameCorrupt = true
		return
	}
	target := d.gpsTarget[:fieldCount]
	src := fieldSource{
		tuning:      d.tuning,
		gpsHomePrev: d.gpsHome.prevSlice(),
		home0Index:  d.home0Index,
		home1Index:  d.home1Index,
	}
	if err := parseFrame(d.cur, &d.gpsDef, target, nil, nil, 0, d.raw, src); err != nil {
		d.fatalErr = err
	}
}

func (d *Decoder) decodeGPSHomeFrame() {
	fieldCount := d.gpsHomeDef.fieldCount()
	if fieldCount == 0 {
		d.currentFrameCorrupt = true
		return
	}
	target := d.gpsHome.target[:fieldCount]
	src := fieldSource{tuning: d.tuning}
	if err := parseFrame(d.cur, &d.gpsHomeDef, target, nil, nil, 0, d.raw, src); err != nil {
		d.fatalErr = err
	}
}

func (d *Decoder) completeFrame(ft FrameType, frameStart int64, length int) {
	switch ft {
	case FrameIntra:
		d.completeIntra(frameStart, length)
	case FrameInter:
		d.completeInter(frameStart, length)
	case FrameGPS:
		d.completeGPS(frameStart, length)
	case FrameGPSHome:
		d.completeGPSHome(frameStart, length)
	case FrameEvent:
		d.completeEvent(frameStart, length)
	}
}

func (d *Decoder) completeIntra(frameStart int64, length int) {
	fieldCount := d.intraDef.fieldCount()
	target := d.ring.currentSlice(fieldCount)

	accept := true
	if !d.raw {
		if d.iterationIndex != absentIndex && d.iterationIndex < fieldCount && target[d.iterationIndex] < d.stats.MaxIteration {
			accept = false
		}
		if d.timeIndex != absentIndex && d.timeIndex < fieldCount && target[d.timeIndex] < d.stats.MaxTime {
			accept = false
		}
	}

	if !accept {
		d.mainStreamIsValid = false
		d.fireFrameReady(FrameIntra, false, target, frameStart, length)
		return
	}

	d.updateFieldStats(&d.intraDef, target)
	d.mainStreamIsValid = true
	d.ring.rotateAfterIntra()
	d.fireFrameReady(FrameIntra, true, target, frameStart, length)
}

func (d *Decoder) completeInter(frameStart int64, length int) {
	fieldCount := d.interDef.fieldCount()
	target := d.ring.currentSlice(fieldCount)

	if !d.mainStreamIsValid {
		d.stats.recordDesync(FrameInter)
		d.fireFrameReady(FrameInter, false, target, frameStart, length)
		return
	}

	d.updateFieldStats(&d.interDef, target)
	d.ring.rotateAfterInter()
	d.fireFrameReady(FrameInter, true, target, frameStart, length)
}

func (d *Decoder) completeGPS(frameStart int64, length int) {
	fieldCount := d.gpsDef.fieldCount()
	target := d.gpsTarget[:fieldCount]
	d.fireFrameReady(FrameGPS, d.gpsHome.valid, target, frameStart, length)
}

func (d *Decoder) completeGPSHome(frameStart int64, length int) {
	fieldCount := d.gpsHomeDef.fieldCount()
	d.gpsHome.publish(fieldCount)
	d.fireFrameReady(FrameGPSHome, true, d.gpsHome.prev[:fieldCount], frameStart, length)
}

func (d *Decoder) completeEvent(frameStart int64, length int) {
	d.lastEvent = d.pendingEvent
	d.fireFrameReady(FrameEvent, true, nil, frameStart, length)
	if d.onEvent != nil {
		d.onEvent(d, d.lastEvent)
	}
}

func (d *Decoder) updateFieldStats(def *FrameDef, values []int32) {
	for i, v := range values {
		signed := i < len(def.Signed) && def.Signed[i]
		d.stats.updateField(i, v, signed)
	}
	if d.iterationIndex != absentIndex && d.iterationIndex < len(values) && values[d.iterationIndex] > d.stats.MaxIteration {
		d.stats.MaxIteration = values[d.iterationIndex]
	}
	if d.timeIndex != absentIndex && d.timeIndex < len(values) && values[d.timeIndex] > d.stats.MaxTime {
		d.stats.MaxTime = values[d.timeIndex]
	}
}

func (d *Decoder) fireFrameReady(ft FrameType, valid bool, values []int32, frameStart int64, length int) {
	if d.onFrameReady == nil {
		return
	}
	var fv FieldValues
	fieldCount := 0
	if values != nil {
		fv = make(FieldValues, len(values))
		copy(fv, values)
		fieldCount = len(fv)
	}
	d.onFrameReady(d, valid, fv, ft, fieldCount, frameStart, length)
}
