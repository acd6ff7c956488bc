package splash

import (
	"math"
	"testing"
	"time"
)

func TestStatusMessageBands(t *testing.T) {
	cases := []struct {
		progress float64
		want     string
	}{
		{0, MessageStarting},
		{19.9, MessageStarting},
		{20, MessageMapping},
		{45, MessageDetecting},
		{60, MessageProcessing},
		{99.5, MessageReporting},
		{100, MessageComplete},
	}
	for _, tc := range cases {
		if got := StatusMessage(tc.progress); got != tc.want {
			t.Errorf("StatusMessage(%v) = %q, want %q", tc.progress, got, tc.want)
		}
	}
}

func TestDronePoseFollowsStage(t *testing.T) {
	if got := DronePose(StagePlantsGrowing, 0.7, time.Second); got != poseHidden {
		t.Fatalf("drone must be hidden before entry, got %+v", got)
	}
	start := DronePose(StageDroneEntering, 0, 0)
	if start.X != -45 || start.Opacity != 0.2 {
		t.Fatalf("unexpected entry start pose %+v", start)
	}
	end := DronePose(StageDroneEntering, 1, 0)
	if end.X != 0 || math.Abs(end.Scale-1) > 1e-9 || math.Abs(end.Opacity-1) > 1e-9 {
		t.Fatalf("unexpected entry end pose %+v", end)
	}
	prev := start
	for i := 1; i <= 10; i++ {
		p := DronePose(StageDroneEntering, float64(i)/10, 0)
		if p.X < prev.X || p.Scale < prev.Scale {
			t.Fatalf("entry pose must move monotonically: %+v after %+v", p, prev)
		}
		prev = p
	}
	hover := DronePose(StageScanning, 1, 500*time.Millisecond)
	if math.Abs(hover.Y-(-2+math.Sin(1.5)*1.2)) > 1e-9 {
		t.Fatalf("unexpected hover offset %v", hover.Y)
	}
	if again := DronePose(StageScanning, 1, 500*time.Millisecond); again != hover {
		t.Fatalf("hover pose must be a pure function of elapsed time")
	}
	if got := DronePose(StageFinished, 1, 0); got != poseGone {
		t.Fatalf("drone must leave after the scan, got %+v", got)
	}
}

func TestEaseOutBounds(t *testing.T) {
	if EaseOut(-1) != 0 || EaseOut(0) != 0 || EaseOut(1) != 1 || EaseOut(2) != 1 {
		t.Fatalf("ease out must clamp to [0, 1]")
	}
	if EaseOut(0.5) <= 0.5 {
		t.Fatalf("ease out should lead a linear ramp at the midpoint")
	}
}

func TestMetrics(t *testing.T) {
	m := Metrics(50)
	if math.Abs(m.AreaHectares-12) > 1e-9 || m.Plants != 45 || m.QualityPercent != 98 {
		t.Fatalf("unexpected metrics %+v", m)
	}
	if Metrics(-5).Plants != 0 {
		t.Fatalf("negative progress must clamp to zero")
	}
}

func TestPlantGrowth(t *testing.T) {
	p := PlantDescriptor{GrowthDelay: time.Second}
	if PlantGrowth(p, 500*time.Millisecond) != 0 {
		t.Fatalf("plant must not grow before its delay")
	}
	mid := PlantGrowth(p, time.Second+PlantGrowDuration/2)
	if mid <= 0 || mid >= 1 {
		t.Fatalf("expected partial growth, got %v", mid)
	}
	if PlantGrowth(p, time.Second+PlantGrowDuration) != 1 {
		t.Fatalf("expected full growth after the grow duration")
	}
}

func TestStageString(t *testing.T) {
	if StageScanning.String() != "scanning" {
		t.Fatalf("unexpected name %q", StageScanning.String())
	}
	if Stage(42).String() != "stage(42)" {
		t.Fatalf("unexpected fallback name %q", Stage(42).String())
	}
}
