package bbl

// frameTypeStats accumulates per-frame-type counters as bytes arrive.
type frameTypeStats struct {
	Bytes        int64
	ValidCount   int64
	CorruptCount int64
	DesyncCount  int64
	SizeCount    [256]int64
}

// FieldStat is the signedness-aware running min/max for one field index.
type FieldStat struct {
	Min int32
	Max int32
	set bool
}

// Statistics is the live bookkeeping the orchestrator updates as it
// consumes frames; a copy is safe to retain after Parse returns.
type Statistics struct {
	ByType                         map[FrameType]*frameTypeStats
	TotalBytes                     int64
	TotalCorruptFrames             int64
	IntentionallyAbsentIterations  int64
	MaxIteration                   int32
	MaxTime                        int32
	Fields                         []FieldStat
}

func newStatistics() Statistics {
	return Statistics{
		ByType: map[FrameType]*frameTypeStats{
			FrameIntra:   {},
			FrameInter:   {},
			FrameGPS:     {},
			FrameGPSHome: {},
			FrameEvent:   {},
		},
	}
}

// recordValid counts a frame that the orchestrator judged structurally
// complete, independent of whether its per-type completion later accepts
// or rejects it semantically.
func (s *Statistics) recordValid(ft FrameType, length int) {
	ts := s.ByType[ft]
	if ts == nil {
		return
	}
	ts.Bytes += int64(length)
	s.TotalBytes += int64(length)
	if length >= 0 && length < len(ts.SizeCount) {
		ts.SizeCount[length]++
	}
	ts.ValidCount++
}

func (s *Statistics) recordCorrupt(ft FrameType) {
	ts := s.ByType[ft]
	if ts != nil {
		ts.CorruptCount++
	}
	s.TotalCorruptFrames++
}

func (s *Statistics) recordDesync(ft FrameType) {
	if ts := s.ByType[ft]; ts != nil {
		ts.DesyncCount++
	}
}

func (s *Statistics) ensureFields(n int) {
	if len(s.Fields) >= n {
		return
	}
	grown := make([]FieldStat, n)
	copy(grown, s.Fields)
	s.Fields = grown
}

func (s *Statistics) updateField(i int, v int32, signed bool) {
	s.ensureFields(i + 1)
	fs := &s.Fields[i]
	if !fs.set {
		fs.Min, fs.Max, fs.set = v, v, true
		return
	}
	if signed {
		if v < fs.Min {
			fs.Min = v
		}
		if v > fs.Max {
			fs.Max = v
		}
		return
	}
	if uint32(v) < uint32(fs.Min) {
		fs.Min = v
	}
	if uint32(v) > uint32(fs.Max) {
		fs.Max = v
	}
}

// BytesForType reports the structurally-valid byte total seen for a frame
// type, for callers building session reports.
func (s Statistics) BytesForType(ft FrameType) int64 {
	if ts := s.ByType[ft]; ts != nil {
		return ts.Bytes
	}
	return 0
}

// CountsForType reports (valid, corrupt, desync) for a frame type.
func (s Statistics) CountsForType(ft FrameType) (valid, corrupt, desync int64) {
	ts := s.ByType[ft]
	if ts == nil {
		return 0, 0, 0
	}
	return ts.ValidCount, ts.CorruptCount, ts.DesyncCount
}
