package bbl

import "testing"

func TestApplyPredictorZero(t *testing.T) {
	got, err := applyPredictor(0, PredictorZero, 42, predictorContext{})
	if err != nil || got != 42 {
		t.Errorf("ZERO(42) = (%d,%v), want (42,nil)", got, err)
	}
}

func TestApplyPredictorPreviousAbsentReturnsRaw(t *testing.T) {
	got, err := applyPredictor(0, PredictorPrevious, 7, predictorContext{})
	if err != nil || got != 7 {
		t.Errorf("PREVIOUS with no history = (%d,%v), want (7,nil)", got, err)
	}
}

func TestApplyPredictorPreviousAdds(t *testing.T) {
	ctx := predictorContext{previous: []int32{100}}
	got, err := applyPredictor(0, PredictorPrevious, 5, ctx)
	if err != nil || got != 105 {
		t.Errorf("PREVIOUS(5, prev=100) = (%d,%v), want (105,nil)", got, err)
	}
}

func TestApplyPredictorStraightLine(t *testing.T) {
	ctx := predictorContext{previous: []int32{20}, previous2: []int32{10}}
	got, err := applyPredictor(0, PredictorStraightLine, 0, ctx)
	if err != nil || got != 30 {
		t.Errorf("STRAIGHT_LINE(0, prev=20, prev2=10) = (%d,%v), want (30,nil)", got, err)
	}
}

func TestApplyPredictorAverage2SignedVsUnsigned(t *testing.T) {
	ctx := predictorContext{previous: []int32{-1}, previous2: []int32{-3}, signed: true}
	got, _ := applyPredictor(0, PredictorAverage2, 0, ctx)
	if got != -2 {
		t.Errorf("signed AVERAGE_2(-1,-3) = %d, want -2", got)
	}

	ctxUnsigned := predictorContext{previous: []int32{-1}, previous2: []int32{-3}, signed: false}
	gotUnsigned, _ := applyPredictor(0, PredictorAverage2, 0, ctxUnsigned)
	if gotUnsigned == -2 {
		t.Errorf("unsigned AVERAGE_2 should differ from the signed arithmetic-shift result")
	}
}

func TestApplyPredictorConstants(t *testing.T) {
	tuning := TuningConstants{MinThrottle: 1150, VbatRef: 4095}
	ctx := predictorContext{tuning: tuning}
	if got, _ := applyPredictor(0, PredictorMinThrottle, 10, ctx); got != 1160 {
		t.Errorf("MINTHROTTLE(10) = %d, want 1160", got)
	}
	if got, _ := applyPredictor(0, PredictorConst1500, 10, ctx); got != 1510 {
		t.Errorf("1500(10) = %d, want 1510", got)
	}
	if got, _ := applyPredictor(0, PredictorVBatRef, 10, ctx); got != 4105 {
		t.Errorf("VBATREF(10) = %d, want 4105", got)
	}
}

func TestApplyPredictorMotor0FatalWhenAbsent(t *testing.T) {
	ctx := predictorContext{motor0Index: absentIndex}
	if _, err := applyPredictor(0, PredictorMotor0, 1, ctx); err == nil {
		t.Errorf("expected a fatal error for an absent motor0Index")
	}
}

func TestApplyPredictorMotor0UsesCurrentFrame(t *testing.T) {
	ctx := predictorContext{current: []int32{500, 0}, motor0Index: 0}
	got, err := applyPredictor(1, PredictorMotor0, 10, ctx)
	if err != nil || got != 510 {
		t.Errorf("MOTOR_0(10) = (%d,%v), want (510,nil)", got, err)
	}
}

func TestApplyPredictorHomeCoordFatalWhenAbsent(t *testing.T) {
	ctx := predictorContext{home0Index: absentIndex}
	if _, err := applyPredictor(0, PredictorHomeCoord, 1, ctx); err == nil {
		t.Errorf("expected a fatal error for an absent home0Index")
	}
	ctxNoHome := predictorContext{home0Index: 0, gpsHomePrev: nil}
	if _, err := applyPredictor(0, PredictorHomeCoord, 1, ctxNoHome); err == nil {
		t.Errorf("expected a fatal error when no home position has been published")
	}
}

func TestApplyPredictorHomeCoordAndHomeCoord1(t *testing.T) {
	home := []int32{111, 222}
	ctx := predictorContext{gpsHomePrev: home, home0Index: 0, home1Index: 1}
	lat, err := applyPredictor(0, PredictorHomeCoord, 5, ctx)
	if err != nil || lat != 116 {
		t.Errorf("HOME_COORD(5) = (%d,%v), want (116,nil)", lat, err)
	}
	lon, err := applyPredictor(1, PredictorHomeCoord1, 5, ctx)
	if err != nil || lon != 227 {
		t.Errorf("HOME_COORD_1(5) = (%d,%v), want (227,nil)", lon, err)
	}
}

func TestApplyPredictorUnknownCodeIsFatal(t *testing.T) {
	if _, err := applyPredictor(0, Predictor(99), 0, predictorContext{}); err == nil {
		t.Errorf("expected a fatal error for an unknown predictor code")
	}
}

func TestShouldHaveFrame(t *testing.T) {
	// I=32, P=1/1 means every index should have a frame.
	for i := int32(0); i < 40; i++ {
		if !shouldHaveFrame(i, 32, 1, 1) {
			t.Errorf("shouldHaveFrame(%d, 32, 1, 1) = false, want true", i)
		}
	}
	// I=32, P=1/2 means half the non-I-frame indices are rate-limited away.
	var present int
	for i := int32(0); i < 32; i++ {
		if shouldHaveFrame(i, 32, 1, 2) {
			present++
		}
	}
	if present != 16 {
		t.Errorf("present count = %d, want 16", present)
	}
}
