package main

import (
	"bytes"
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/agrovoo/internal/clock"
	"github.com/kingrea/agrovoo/internal/splash"
)

func newTestPlayer(t *testing.T) (*splashPlayer, *clock.Fake, *bytes.Buffer) {
	t.Helper()
	fake := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	var out bytes.Buffer
	player, err := newSplashPlayer(&out, fake, splash.WithRand(rand.New(rand.NewPCG(3, 4))))
	require.NoError(t, err)
	return player, fake, &out
}

func TestSplashPlayerPrintsTimeline(t *testing.T) {
	player, fake, out := newTestPlayer(t)
	completed, err := player.play(context.Background(), func(*splash.Run) {
		fake.Advance(splash.DefaultTimings().Total())
	})
	require.NoError(t, err)
	assert.True(t, completed)

	text := out.String()
	assert.Contains(t, text, "25 plants")
	assert.Contains(t, text, "   0.000s  idle")
	assert.Contains(t, text, "   0.200s  ground-revealed")
	assert.Contains(t, text, "   1.500s  plants-growing")
	assert.Contains(t, text, "   5.500s  drone-entering")
	for _, msg := range []string{
		splash.MessageStarting,
		splash.MessageMapping,
		splash.MessageDetecting,
		splash.MessageProcessing,
		splash.MessageReporting,
	} {
		assert.Equal(t, 1, strings.Count(text, "  "+msg+"\n"), "status %q printed once", msg)
	}
	// Reached once while scanning and repeated on the finished line.
	assert.Equal(t, 2, strings.Count(text, "  "+splash.MessageComplete+"\n"))
	assert.Contains(t, text, "finished")
	assert.True(t, strings.HasSuffix(text, "splash completed\n"))
	assert.Zero(t, fake.Pending())
}

func TestSplashPlayerCancelsOnContextDone(t *testing.T) {
	player, fake, out := newTestPlayer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var run *splash.Run
	completed, err := player.play(ctx, func(r *splash.Run) { run = r })
	require.NoError(t, err)
	assert.False(t, completed)
	assert.True(t, run.Canceled())
	assert.Zero(t, fake.Pending())
	assert.Contains(t, out.String(), "splash canceled during idle")

	fake.Advance(time.Minute)
	assert.False(t, run.Completed())
}

func TestSplashPlayerKeepsEveryStageOnLongRuns(t *testing.T) {
	tm := splash.DefaultTimings()
	tm.ProgressStep = 0.25
	fake := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	var out bytes.Buffer
	player, err := newSplashPlayer(&out, fake,
		splash.WithTimings(tm),
		splash.WithRand(rand.New(rand.NewPCG(3, 4))),
	)
	require.NoError(t, err)

	completed, err := player.play(context.Background(), func(*splash.Run) {
		fake.Advance(2 * tm.Total())
	})
	require.NoError(t, err)
	assert.True(t, completed)

	text := out.String()
	for _, stage := range []splash.Stage{
		splash.StageIdle,
		splash.StageGroundRevealed,
		splash.StagePlantsGrowing,
		splash.StageDroneEntering,
		splash.StageScanning,
		splash.StageFinished,
	} {
		assert.Contains(t, text, "s  "+stage.String(), "stage %s printed", stage)
	}
	assert.Equal(t, 1, strings.Count(text, "  "+splash.MessageReporting+"\n"))
	assert.Equal(t, 2, strings.Count(text, "  "+splash.MessageComplete+"\n"))
	assert.True(t, strings.HasSuffix(text, "splash completed\n"))
}
