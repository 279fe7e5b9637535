package report

import (
	"os"
	"path/filepath"
	"testing"

	"example.com/bblparse/internal/bbl"
)

const markerLine = "H Product:Blackbox flight data recorder by Nicholas Sherlock\n"

func minimalLog(t *testing.T) []byte {
	t.Helper()
	var buf []byte
	buf = append(buf, []byte(markerLine)...)
	buf = append(buf, []byte("H Field I name:loopIteration,time\n")...)
	buf = append(buf, []byte("H Field I signed:0,0\n")...)
	buf = append(buf, []byte("H Field I predictor:0,0\n")...)
	buf = append(buf, []byte("H Field I encoding:1,1\n")...)
	buf = append(buf, 'I', 0x00, 0xE8, 0x07)
	return buf
}

func TestBuildSessionReportReflectsStatistics(t *testing.T) {
	dec, err := bbl.NewDecoder(minimalLog(t))
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	if !dec.Parse(0, false, nil, nil, nil) {
		t.Fatalf("Parse returned false")
	}

	rep := BuildSessionReport(dec, "flight.bbl", 0, "deadbeef")
	if rep.SourceFile != "flight.bbl" || rep.LogIndex != 0 {
		t.Errorf("rep = %+v, want SourceFile=flight.bbl LogIndex=0", rep)
	}
	if rep.TotalBytes == 0 {
		t.Errorf("TotalBytes = 0, want > 0")
	}
	if !rep.MainStreamValid {
		t.Errorf("MainStreamValid = false, want true")
	}
	var sawIntra bool
	for _, row := range rep.ByType {
		if row.Type == "I" {
			sawIntra = true
			if row.ValidCount != 1 {
				t.Errorf("intra ValidCount = %d, want 1", row.ValidCount)
			}
		}
	}
	if !sawIntra {
		t.Errorf("expected a row for frame type I")
	}
}

func TestSaveAndLoadSessionReportJSONRoundTrip(t *testing.T) {
	dec, err := bbl.NewDecoder(minimalLog(t))
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	dec.Parse(0, false, nil, nil, nil)
	rep := BuildSessionReport(dec, "flight.bbl", 0, "deadbeef")

	path := filepath.Join(t.TempDir(), "report.json")
	if err := SaveSessionReportJSON(rep, path); err != nil {
		t.Fatalf("SaveSessionReportJSON: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("report file missing: %v", err)
	}

	loaded, err := LoadSessionReportJSON(path)
	if err != nil {
		t.Fatalf("LoadSessionReportJSON: %v", err)
	}
	if loaded.ContentSHA256 != rep.ContentSHA256 || loaded.TotalBytes != rep.TotalBytes {
		t.Errorf("loaded = %+v, want %+v", loaded, rep)
	}
}

func TestSessionDigestToQRRejectsEmptyDigest(t *testing.T) {
	if _, err := SessionDigestToQR("", 64); err == nil {
		t.Errorf("expected an error for an empty digest")
	}
}

func TestSessionDigestToQRProducesPNGBytes(t *testing.T) {
	png, err := SessionDigestToQR("deadbeef", 64)
	if err != nil {
		t.Fatalf("SessionDigestToQR: %v", err)
	}
	if len(png) == 0 {
		t.Errorf("expected non-empty PNG bytes")
	}
}
