// internal/splash/stage.go
//
// The splash intro is a timed sequence of stages. Ground is revealed first,
// then plants grow, then the drone flies in and scans the field, and finally
// the sequence finishes and hands control back to the host.

package splash

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Stage is one phase of the splash sequence. Stages only move forward.
type Stage int

const (
	StageIdle Stage = iota
	StageGroundRevealed
	StagePlantsGrowing
	StageDroneEntering
	StageScanning
	StageFinished
)

var stageNames = map[Stage]string{
	StageIdle:           "idle",
	StageGroundRevealed: "ground-revealed",
	StagePlantsGrowing:  "plants-growing",
	StageDroneEntering:  "drone-entering",
	StageScanning:       "scanning",
	StageFinished:       "finished",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Timings holds the delays and tick rates that drive a run. Delays are
// measured from entry into the previous stage.
type Timings struct {
	GroundDelay time.Duration `yaml:"ground_delay"`
	PlantsDelay time.Duration `yaml:"plants_delay"`
	DroneDelay  time.Duration `yaml:"drone_delay"`

	DroneTick time.Duration `yaml:"drone_tick"`
	// DroneStep is added to the normalized drone position on every tick.
	DroneStep   float64       `yaml:"drone_step"`
	SettleDelay time.Duration `yaml:"settle_delay"`

	ProgressTick time.Duration `yaml:"progress_tick"`
	// ProgressStep is added to the scan percentage on every tick.
	ProgressStep float64       `yaml:"progress_step"`
	HoldDelay    time.Duration `yaml:"hold_delay"`

	// CompleteDelay separates entry into StageFinished from the completion
	// callback, leaving room for the fade out.
	CompleteDelay time.Duration `yaml:"complete_delay"`
}

// DefaultTimings returns a run of roughly sixteen and a half seconds.
func DefaultTimings() Timings {
	return Timings{
		GroundDelay:   200 * time.Millisecond,
		PlantsDelay:   1300 * time.Millisecond,
		DroneDelay:    4 * time.Second,
		DroneTick:     25 * time.Millisecond,
		DroneStep:     0.01,
		SettleDelay:   500 * time.Millisecond,
		ProgressTick:  50 * time.Millisecond,
		ProgressStep:  1,
		HoldDelay:     1500 * time.Millisecond,
		CompleteDelay: 1500 * time.Millisecond,
	}
}

// Validate reports the first field that cannot drive a run.
func (t Timings) Validate() error {
	delays := []struct {
		name  string
		value time.Duration
	}{
		{"ground_delay", t.GroundDelay},
		{"plants_delay", t.PlantsDelay},
		{"drone_delay", t.DroneDelay},
		{"settle_delay", t.SettleDelay},
		{"hold_delay", t.HoldDelay},
		{"complete_delay", t.CompleteDelay},
	}
	for _, d := range delays {
		if d.value < 0 {
			return fmt.Errorf("splash: %s must not be negative", d.name)
		}
	}
	if t.DroneTick <= 0 {
		return fmt.Errorf("splash: drone_tick must be positive")
	}
	if t.ProgressTick <= 0 {
		return fmt.Errorf("splash: progress_tick must be positive")
	}
	if t.DroneStep <= 0 || t.DroneStep > 1 {
		return fmt.Errorf("splash: drone_step must be in (0, 1]")
	}
	if t.ProgressStep <= 0 || t.ProgressStep > 100 {
		return fmt.Errorf("splash: progress_step must be in (0, 100]")
	}
	return nil
}

// DroneTicks is the number of interval ticks the drone needs to arrive.
func (t Timings) DroneTicks() int {
	return ticksToReach(1, t.DroneStep)
}

// ProgressTicks is the number of interval ticks the scan needs to finish.
func (t Timings) ProgressTicks() int {
	return ticksToReach(100, t.ProgressStep)
}

// Total is the natural length of a run, from Start to the completion
// callback.
func (t Timings) Total() time.Duration {
	return t.GroundDelay + t.PlantsDelay + t.DroneDelay +
		time.Duration(t.DroneTicks())*t.DroneTick + t.SettleDelay +
		time.Duration(t.ProgressTicks())*t.ProgressTick + t.HoldDelay +
		t.CompleteDelay
}

func ticksToReach(target, step float64) int {
	n := 0
	for accumulate(n, step, target) < target {
		n++
	}
	return n
}

// accumulate is the value after ticks steps, clamped to limit. Both
// accumulators derive their value from the tick count so repeated float
// addition cannot drift past or short of the limit.
func accumulate(ticks int, step, limit float64) float64 {
	v := float64(ticks) * step
	if v > limit {
		return limit
	}
	return v
}

// PlantDescriptor holds the per-run randomized parameters of one decorative
// plant. Descriptors never change after generation.
type PlantDescriptor struct {
	ID int
	// Offset is the horizontal position as a percentage of the field width.
	Offset float64
	// Height is the fully grown height in pixels of a 1080p reference frame.
	Height float64
	// GrowthDelay is measured from entry into StagePlantsGrowing.
	GrowthDelay time.Duration
	Variant     int
}

// PlantVariants is the number of distinct plant looks.
const PlantVariants = 3

// DefaultPlantCount is the number of plants generated for each run.
const DefaultPlantCount = 25

func generatePlants(rng *rand.Rand, count int) []PlantDescriptor {
	plants := make([]PlantDescriptor, count)
	for i := range plants {
		delay := 0.1 + rng.Float64()*1.5
		plants[i] = PlantDescriptor{
			ID:          i,
			Offset:      float64(i)*4 + rng.Float64()*3,
			Height:      80 + rng.Float64()*100,
			GrowthDelay: time.Duration(delay * float64(time.Second)),
			Variant:     rng.IntN(PlantVariants),
		}
	}
	return plants
}
