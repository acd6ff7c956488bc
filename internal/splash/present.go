package splash

import (
	"math"
	"time"
)

// Scan status lines, one per fifth of the scan plus the completed line.
const (
	MessageStarting   = "INICIANDO SCAN..."
	MessageMapping    = "MAPEANDO TERRENO..."
	MessageDetecting  = "DETECTANDO CULTIVOS..."
	MessageProcessing = "PROCESSANDO DADOS..."
	MessageReporting  = "GERANDO RELATÓRIO..."
	MessageComplete   = "SCAN COMPLETO!"
)

// StatusMessage picks the status line for a scan percentage.
func StatusMessage(progress float64) string {
	switch {
	case progress < 20:
		return MessageStarting
	case progress < 40:
		return MessageMapping
	case progress < 60:
		return MessageDetecting
	case progress < 80:
		return MessageProcessing
	case progress < 100:
		return MessageReporting
	default:
		return MessageComplete
	}
}

// Pose places the drone relative to the center of the frame. X and Y are
// percentages of the frame width and height.
type Pose struct {
	X       float64
	Y       float64
	Scale   float64
	Opacity float64
}

var (
	poseHidden = Pose{X: -45, Y: 25, Scale: 0.3, Opacity: 0}
	poseGone   = Pose{X: 50, Y: -20, Scale: 0.5, Opacity: 0}
)

// EaseOut maps t in [0, 1] onto a curve that decelerates into 1.
func EaseOut(t float64) float64 {
	t = clamp01(t)
	return 1 - math.Pow(1-t, 1.8)
}

// DronePose derives the drone transform from the stage, the normalized
// entry position and the time spent in the current stage. The hover bob
// while scanning depends only on sinceStage, never on the wall clock.
func DronePose(stage Stage, position float64, sinceStage time.Duration) Pose {
	switch {
	case stage < StageDroneEntering:
		return poseHidden
	case stage == StageDroneEntering:
		e := EaseOut(position)
		return Pose{
			X:       -45 + e*45,
			Y:       25 - e*28,
			Scale:   0.3 + e*0.7,
			Opacity: 0.2 + e*0.8,
		}
	case stage == StageScanning:
		ms := float64(sinceStage) / float64(time.Millisecond)
		return Pose{
			X:       0,
			Y:       -2 + math.Sin(ms*0.003)*1.2,
			Scale:   1,
			Opacity: 1,
		}
	default:
		return poseGone
	}
}

// ScanMetrics are the figures shown on the scan card.
type ScanMetrics struct {
	AreaHectares   float64
	Plants         int
	QualityPercent int
}

// Metrics derives the scan card figures from the scan percentage.
func Metrics(progress float64) ScanMetrics {
	if progress < 0 {
		progress = 0
	}
	return ScanMetrics{
		AreaHectares:   progress * 0.24,
		Plants:         int(math.Floor(progress * 0.9)),
		QualityPercent: 98,
	}
}

// PlantGrowDuration is how long one plant takes to reach full height once
// its growth delay has elapsed.
const PlantGrowDuration = 2500 * time.Millisecond

// PlantGrowth returns how grown a plant is, in [0, 1], sincePlants after
// the sequence entered StagePlantsGrowing.
func PlantGrowth(p PlantDescriptor, sincePlants time.Duration) float64 {
	elapsed := sincePlants - p.GrowthDelay
	if elapsed <= 0 {
		return 0
	}
	return EaseOut(float64(elapsed) / float64(PlantGrowDuration))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
