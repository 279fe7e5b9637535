package bbl

// predictorContext bundles the reference state the predictor engine may
// need beyond the field being decoded. previous/previous2 are nil when no
// prior main frame has been decoded yet.
type predictorContext struct {
	current     []int32
	previous    []int32
	previous2   []int32
	signed      bool
	tuning      TuningConstants
	motor0Index int
	gpsHomePrev []int32 // slot 1 of the GPS-home history; nil if never set
	home0Index  int
	home1Index  int
}

// applyPredictor recovers a field's true value from its raw, stream-carried
// residual. All addition is performed in unsigned 32-bit wrapping
// arithmetic; the result is always cast back to signed int32.
func applyPredictor(fieldIndex int, pred Predictor, raw int32, ctx predictorContext) (int32, error) {
	add := func(term int32) int32 {
		return int32(uint32(raw) + uint32(term))
	}
	switch pred {
	case PredictorZero:
		return raw, nil
	case PredictorPrevious:
		if ctx.previous == nil {
			return raw, nil
		}
		return add(ctx.previous[fieldIndex]), nil
	case PredictorStraightLine:
		if ctx.previous == nil {
			return raw, nil
		}
		p1 := uint32(ctx.previous[fieldIndex])
		p2 := uint32(ctx.previous2[fieldIndex])
		return add(int32(2*p1 - p2)), nil
	case PredictorAverage2:
		if ctx.previous == nil {
			return raw, nil
		}
		sum := uint32(ctx.previous[fieldIndex]) + uint32(ctx.previous2[fieldIndex])
		var avg int32
		if ctx.signed {
			avg = int32(sum) >> 1
		} else {
			avg = int32(sum >> 1)
		}
		return add(avg), nil
	case PredictorMinThrottle:
		return add(ctx.tuning.MinThrottle), nil
	case PredictorConst1500:
		return add(1500), nil
	case PredictorVBatRef:
		return add(ctx.tuning.VbatRef), nil
	case PredictorMotor0:
		if ctx.motor0Index == absentIndex {
			return 0, fatalf("predictor MOTOR_0: motor[0] field index absent")
		}
		return add(ctx.current[ctx.motor0Index]), nil
	case PredictorHomeCoord:
		if ctx.home0Index == absentIndex || ctx.gpsHomePrev == nil {
			return 0, fatalf("predictor HOME_COORD: GPS home field index absent")
		}
		return add(ctx.gpsHomePrev[ctx.home0Index]), nil
	case PredictorHomeCoord1:
		if ctx.home1Index == absentIndex || ctx.gpsHomePrev == nil {
			return 0, fatalf("predictor HOME_COORD_1: GPS home field index absent")
		}
		return add(ctx.gpsHomePrev[ctx.home1Index]), nil
	default:
		return 0, fatalf("unknown predictor code %d", pred)
	}
}
