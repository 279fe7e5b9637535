// Package samples builds a deterministic synthetic blackbox log for use by
// tests, the way the teacher repository's
// own samples package builds a deterministic Chapter 10 capture.
package samples

import (
	"fmt"
	"os"
	"path/filepath"

	"example.com/bblparse/internal/bbl"
)

const (
	subLogMarker = "H Product:Blackbox flight data recorder by Nicholas Sherlock\n"

	// LogFileName is exposed for generator consumers.
	LogFileName = "sample.bbl"

	// Deterministic values embedded in the generated capture, exported so
	// tests can assert against them without re-deriving the encoding.
	IntraIteration int32 = 0
	IntraTimeUs    int32 = 1_000_000
	InterDeltaTime int32 = 2_000
	SyncBeepTimeUs uint32 = 1_000_050
)

func header(key, value string) string {
	return "H " + key + ":" + value + "\n"
}

// BuildBlackboxLog constructs a single deterministic sub-log: a two-field
// main stream (loopIteration, time), one I frame, one P frame, and a
// trailing SYNC_BEEP event.
func BuildBlackboxLog() ([]byte, error) {
	var buf []byte
	buf = append(buf, subLogMarker...)
	buf = append(buf, header("Firmware type", "Cleanflight")...)
	buf = append(buf, header("Data version", "2")...)
	buf = append(buf, header("I interval", "32")...)
	buf = append(buf, header("P interval", "1/1")...)
	buf = append(buf, header("minthrottle", "1150")...)
	buf = append(buf, header("vbatcellvoltage", "330,350,430")...)
	buf = append(buf, header("Field I name", "loopIteration,time")...)
	buf = append(buf, header("Field I signed", "0,0")...)
	buf = append(buf, header("Field I predictor", "0,1")...)
	buf = append(buf, header("Field I encoding", "1,1")...)

	buf = append(buf, 'I')
	buf = bbl.AppendUnsignedVB(buf, uint32(IntraIteration))
	buf = bbl.AppendUnsignedVB(buf, uint32(IntraTimeUs))

	buf = append(buf, 'P')
	buf = bbl.AppendUnsignedVB(buf, 1)
	buf = bbl.AppendUnsignedVB(buf, uint32(InterDeltaTime))

	buf = append(buf, 'E', 0x00)
	buf = bbl.AppendUnsignedVB(buf, SyncBeepTimeUs)

	return buf, nil
}

// WriteFiles materializes the generated capture under dir.
func WriteFiles(dir string) error {
	data, err := BuildBlackboxLog()
	if err != nil {
		return fmt.Errorf("build blackbox log: %w", err)
	}
	return writeFileIfChanged(filepath.Join(dir, LogFileName), data)
}

func writeFileIfChanged(path string, data []byte) error {
	existing, err := os.ReadFile(path)
	if err == nil && string(existing) == string(data) {
		return nil
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
