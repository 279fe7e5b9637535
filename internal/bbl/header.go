package bbl

import (
	"math"
	"strconv"
	"strings"
)

const maxHeaderLineLen = 1024

// handleHeaderLine parses one already-delimited header line (the bytes
// after the 'H' marker up to, not including, the trailing newline; the
// leading space is trimmed from the key). Malformed lines are silently
// dropped, matching the format's tolerance for header garbage.
func (d *Decoder) handleHeaderLine(line []byte) {
	if len(line) == 0 || len(line) > maxHeaderLineLen {
		return
	}
	for _, b := range line {
		if b == 0 {
			return
		}
	}
	colon := -1
	for i, b := range line {
		if b == ':' {
			colon = i
			break
		}
	}
	if colon < 0 {
		return
	}
	key := strings.TrimSpace(string(line[:colon]))
	value := string(line[colon+1:])
	d.applyHeaderKV(key, value)
}

func (d *Decoder) applyHeaderKV(key, value string) {
	switch key {
	case "Field I name":
		names := splitComma(value)
		d.setFieldNames(FrameIntra, names)
		d.setFieldNames(FrameInter, names)
		for i, n := range names {
			if n == "motor[0]" {
				d.motor0Index = i
			}
			if n == "loopIteration" {
				d.iterationIndex = i
			}
			if n == "time" {
				d.timeIndex = i
			}
		}
	case "Field P name":
		// informational only; main field tables come from "Field I name".
	case "Field G name":
		d.setFieldNames(FrameGPS, splitComma(value))
	case "Field H name":
		names := splitComma(value)
		d.setFieldNames(FrameGPSHome, names)
		for i, n := range names {
			if n == "GPS_home[0]" {
				d.home0Index = i
			}
			if n == "GPS_home[1]" {
				d.home1Index = i
			}
		}
	case "Field I signed":
		signed := splitCommaBoolFlags(value)
		def := d.frameDef(FrameIntra)
		def.Signed = signed
		d.frameDef(FrameInter).Signed = signed
	case "Field I predictor":
		d.setPredictors(FrameIntra, splitCommaInts(value))
	case "Field P predictor":
		d.setPredictors(FrameInter, splitCommaInts(value))
		d.interPredictorSet = true
	case "Field G predictor":
		d.setPredictors(FrameGPS, splitCommaInts(value))
	case "Field H predictor":
		d.setPredictors(FrameGPSHome, splitCommaInts(value))
	case "Field I encoding":
		d.setEncodings(FrameIntra, splitCommaInts(value))
	case "Field P encoding":
		d.setEncodings(FrameInter, splitCommaInts(value))
		d.interEncodingSet = true
	case "Field G encoding":
		d.setEncodings(FrameGPS, splitCommaInts(value))
	case "Field H encoding":
		d.setEncodings(FrameGPSHome, splitCommaInts(value))
	case "I interval":
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			if n < 1 {
				n = 1
			}
			d.tuning.FrameIntervalI = int32(n)
		}
	case "P interval":
		num, den := parseFraction(value)
		if den > 0 {
			d.tuning.FrameIntervalPNum = num
			d.tuning.FrameIntervalPDenom = den
		}
	case "Data version":
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			d.tuning.DataVersion = int32(n)
		}
	case "Firmware type":
		if strings.EqualFold(strings.TrimSpace(value), "Cleanflight") {
			d.tuning.FirmwareType = FirmwareCleanflight
		} else {
			d.tuning.FirmwareType = FirmwareBaseflight
		}
	case "minthrottle":
		d.tuning.MinThrottle = parseInt32(value)
	case "maxthrottle":
		d.tuning.MaxThrottle = parseInt32(value)
	case "rcRate":
		d.tuning.RcRate = parseInt32(value)
	case "vbatscale":
		d.tuning.VbatScale = parseInt32(value)
	case "vbatref":
		d.tuning.VbatRef = parseInt32(value)
	case "acc_1G":
		d.tuning.Acc1G = parseInt32(value)
	case "vbatcellvoltage":
		parts := splitCommaInts(value)
		if len(parts) == 3 {
			d.tuning.VbatMinCellVoltage = parts[0]
			d.tuning.VbatWarningVoltage = parts[1]
			d.tuning.VbatMaxCellVoltage = parts[2]
		}
	case "gyro.scale":
		d.tuning.GyroScale = parseGyroScale(value, d.tuning.FirmwareType)
	default:
		// unknown keys are ignored
	}
}

func (d *Decoder) setFieldNames(ft FrameType, names []string) {
	def := d.frameDef(ft)
	def.Names = names
	if len(def.Predictor) != len(names) {
		def.Predictor = make([]Predictor, len(names))
	}
	if len(def.Encoding) != len(names) {
		def.Encoding = make([]Encoding, len(names))
	}
	if len(def.Signed) != len(names) {
		def.Signed = make([]bool, len(names))
	}
}

func (d *Decoder) setPredictors(ft FrameType, values []int32) {
	def := d.frameDef(ft)
	out := make([]Predictor, len(values))
	for i, v := range values {
		out[i] = Predictor(v)
	}
	def.Predictor = out
}

func (d *Decoder) setEncodings(ft FrameType, values []int32) {
	def := d.frameDef(ft)
	out := make([]Encoding, len(values))
	for i, v := range values {
		out[i] = Encoding(v)
	}
	def.Encoding = out
}

func splitComma(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func splitCommaInts(s string) []int32 {
	parts := splitComma(s)
	out := make([]int32, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, int32(n))
	}
	return out
}

func splitCommaBoolFlags(s string) []bool {
	parts := splitComma(s)
	out := make([]bool, len(parts))
	for i, p := range parts {
		out[i] = p == "1"
	}
	return out
}

func parseInt32(s string) int32 {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return int32(n)
}

func parseFraction(s string) (num, den int32) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	n, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	dd, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0
	}
	return int32(n), int32(dd)
}

// parseGyroScale decodes the hex IEEE-754 binary32 representation carried by
// "gyro.scale" and applies the Cleanflight degrees-to-radians conversion
// when relevant.
func parseGyroScale(s string, firmware FirmwareType) float32 {
	s = strings.TrimSpace(s)
	bits, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0
	}
	scale := math.Float32frombits(uint32(bits))
	if firmware == FirmwareCleanflight {
		scale *= float32(math.Pi / 180.0 * 1e-6)
	}
	return scale
}
