// Package report renders decode-session health — never decoded field
// values — to JSON and PDF.
package report

import (
	"encoding/json"
	"os"
	"time"

	"example.com/bblparse/internal/bbl"
)

// FrameTypeHealth is the JSON/PDF-facing summary of one frame type's
// bookkeeping for a single sub-log decode.
type FrameTypeHealth struct {
	Type         string `json:"type"`
	Bytes        int64  `json:"bytes"`
	ValidCount   int64  `json:"validCount"`
	CorruptCount int64  `json:"corruptCount"`
	DesyncCount  int64  `json:"desyncCount"`
}

// DecodeSessionReport is the health summary of one sub-log decode: the
// Statistics snapshot plus enough metadata to match a printed report back
// to the exact byte range it was produced from.
type DecodeSessionReport struct {
	SourceFile         string            `json:"sourceFile"`
	LogIndex           int               `json:"logIndex"`
	GeneratedAt        time.Time         `json:"generatedAt"`
	ContentSHA256      string            `json:"contentSha256"`
	TotalBytes         int64             `json:"totalBytes"`
	TotalCorruptFrames int64             `json:"totalCorruptFrames"`
	MainStreamValid    bool              `json:"mainStreamValid"`
	GPSHomeValid       bool              `json:"gpsHomeValid"`
	ByType             []FrameTypeHealth `json:"byType"`
}

var frameTypeOrder = []bbl.FrameType{bbl.FrameIntra, bbl.FrameInter, bbl.FrameGPS, bbl.FrameGPSHome, bbl.FrameEvent}

var frameTypeNames = map[bbl.FrameType]string{
	bbl.FrameIntra:   "I",
	bbl.FrameInter:   "P",
	bbl.FrameGPS:     "G",
	bbl.FrameGPSHome: "H",
	bbl.FrameEvent:   "E",
}

// BuildSessionReport flattens a decoder's live Statistics into the
// reporting shape, after Parse has returned.
func BuildSessionReport(d *bbl.Decoder, sourceFile string, logIndex int, contentSHA256 string) DecodeSessionReport {
	stats := d.Statistics()
	rep := DecodeSessionReport{
		SourceFile:         sourceFile,
		LogIndex:           logIndex,
		ContentSHA256:      contentSHA256,
		TotalBytes:         stats.TotalBytes,
		TotalCorruptFrames: stats.TotalCorruptFrames,
		MainStreamValid:    d.MainStreamValid(),
		GPSHomeValid:       d.GPSHomeValid(),
	}
	for _, ft := range frameTypeOrder {
		valid, corrupt, desync := stats.CountsForType(ft)
		rep.ByType = append(rep.ByType, FrameTypeHealth{
			Type:         frameTypeNames[ft],
			Bytes:        stats.BytesForType(ft),
			ValidCount:   valid,
			CorruptCount: corrupt,
			DesyncCount:  desync,
		})
	}
	return rep
}

func SaveSessionReportJSON(rep DecodeSessionReport, out string) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func LoadSessionReportJSON(path string) (DecodeSessionReport, error) {
	var rep DecodeSessionReport
	b, err := os.ReadFile(path)
	if err != nil {
		return rep, err
	}
	err = json.Unmarshal(b, &rep)
	return rep, err
}
