package bbl

// fieldSource bundles everything parseFrame needs to resolve predictors and
// group widths for one frame, independent of which frame type it is.
type fieldSource struct {
	tuning      TuningConstants
	motor0Index int
	gpsHomePrev []int32
	home0Index  int
	home1Index  int
}

// parseFrame decodes fieldCount values from c into target according to def,
// using previous/previous2 (nil if absent) as prediction references.
// skippedFrames feeds the INC predictor and is 0 for frame types other than
// the main stream.
func parseFrame(c *cursor, def *FrameDef, target, previous, previous2 []int32, skippedFrames int32, raw bool, src fieldSource) error {
	fieldCount := def.fieldCount()
	i := 0
	for i < fieldCount {
		if def.Predictor[i] == PredictorInc {
			var prevVal int32
			if previous != nil {
				prevVal = previous[i]
			}
			target[i] = skippedFrames + 1 + prevVal
			i++
			continue
		}
		switch def.Encoding[i] {
		case EncodingSignedVB, EncodingUnsignedVB, EncodingNeg14Bit, EncodingNull:
			value := readScalar(c, def.Encoding[i])
			if err := applyFieldValue(target, previous, previous2, def, i, value, raw, src); err != nil {
				return err
			}
			i++
		case EncodingTag8_4S16:
			var vals [4]int32
			if src.tuning.DataVersion < 2 {
				vals = decodeTag8_4S16v1(c)
			} else {
				vals = decodeTag8_4S16v2(c)
			}
			for j := 0; j < 4 && i+j < fieldCount; j++ {
				if err := applyFieldValue(target, previous, previous2, def, i+j, vals[j], raw, src); err != nil {
					return err
				}
			}
			i += 4
		case EncodingTag2_3S32:
			vals := decodeTag2_3S32(c)
			for j := 0; j < 3 && i+j < fieldCount; j++ {
				if err := applyFieldValue(target, previous, previous2, def, i+j, vals[j], raw, src); err != nil {
					return err
				}
			}
			i += 3
		case EncodingTag8_8SVB:
			groupCount := 1
			for groupCount < 8 && i+groupCount < fieldCount && def.Encoding[i+groupCount] == EncodingTag8_8SVB {
				groupCount++
			}
			vals := decodeTag8_8SVB(c, groupCount)
			for j := 0; j < groupCount; j++ {
				if err := applyFieldValue(target, previous, previous2, def, i+j, vals[j], raw, src); err != nil {
					return err
				}
			}
			i += groupCount
		default:
			return fatalf("field %d: unknown encoding code %d", i, def.Encoding[i])
		}
	}
	return nil
}

func readScalar(c *cursor, enc Encoding) int32 {
	switch enc {
	case EncodingSignedVB:
		return readSignedVB(c)
	case EncodingUnsignedVB:
		return int32(readUnsignedVB(c))
	case EncodingNeg14Bit:
		u := readUnsignedVB(c)
		return -signExtend(u, 14)
	default: // EncodingNull
		return 0
	}
}

func applyFieldValue(target, previous, previous2 []int32, def *FrameDef, i int, raw int32, forceRaw bool, src fieldSource) error {
	pred := def.Predictor[i]
	if !pred.valid() {
		return fatalf("field %d: unknown predictor code %d", i, pred)
	}
	if forceRaw {
		pred = PredictorZero
	}
	ctx := predictorContext{
		current:     target,
		previous:    previous,
		previous2:   previous2,
		signed:      i < len(def.Signed) && def.Signed[i],
		tuning:      src.tuning,
		motor0Index: src.motor0Index,
		gpsHomePrev: src.gpsHomePrev,
		home0Index:  src.home0Index,
		home1Index:  src.home1Index,
	}
	val, err := applyPredictor(i, pred, raw, ctx)
	if err != nil {
		return err
	}
	target[i] = val
	return nil
}

// shouldHaveFrame reports whether the main-stream frame at logical index idx
// is expected to be emitted under the configured P-frame rate limiter.
func shouldHaveFrame(idx, frameIntervalI, pNum, pDenom int32) bool {
	if pDenom <= 0 {
		pDenom = 1
	}
	if pNum <= 0 {
		pNum = 1
	}
	if frameIntervalI <= 0 {
		frameIntervalI = 1
	}
	m := ((idx % frameIntervalI) + pNum - 1) % pDenom
	if m < 0 {
		m += pDenom
	}
	return m < pNum
}
