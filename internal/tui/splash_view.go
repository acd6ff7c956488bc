// internal/tui/splash_view.go
//
// Draws the intro animation on a character grid: sky with the drone,
// the growing field, the ground line and the scan card.

package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/agrovoo/internal/splash"
)

const (
	skyRows   = 7
	fieldRows = 8

	// plantReferenceHeight is the tallest plant in descriptor units.
	plantReferenceHeight = 180.0
)

var (
	plantTops = [splash.PlantVariants]rune{'♣', '✿', '¥'}

	splashTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7CB342"))
	droneStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ECEFF1"))
	faintDroneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#78909C"))
	beamStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4FC3F7"))
	plantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#66BB6A"))
	groundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8D6E63"))
	scanCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4FC3F7")).
			Padding(0, 2)
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1B5E20")).
			Background(lipgloss.Color("#C8E6C9")).
			Padding(0, 1)
	fadeStyle = lipgloss.NewStyle().Faint(true)
)

func (a *App) renderSplash() string {
	width := a.width
	if width <= 0 {
		width = 80
	}
	f := a.frame
	now := a.clock.Now()
	var sinceStage time.Duration
	if !f.StageEntered.IsZero() {
		sinceStage = now.Sub(f.StageEntered)
	}

	pose := splash.DronePose(f.Stage, f.DronePosition, sinceStage)
	parts := []string{
		splashTitleStyle.Render("AGROVOO"),
		renderSky(width, pose, f.Stage == splash.StageScanning),
		renderField(width, a.plants, a.plantGrowth(f.Stage, now)),
		renderGround(width, f.Stage),
	}
	if card := a.renderScanCard(f); card != "" {
		parts = append(parts, card)
	}
	view := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if f.Stage == splash.StageFinished {
		view = fadeStyle.Render(view)
	}
	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render("esc pular · ctrl+c sair")
	return lipgloss.JoinVertical(lipgloss.Left, view, hint)
}

// plantGrowth returns a growth function for the current frame. Plants are
// fully grown once the sequence is past the growing stage even if the
// stage entry frame was never seen.
func (a *App) plantGrowth(stage splash.Stage, now time.Time) func(splash.PlantDescriptor) float64 {
	switch {
	case stage < splash.StagePlantsGrowing:
		return func(splash.PlantDescriptor) float64 { return 0 }
	case a.plantsAt.IsZero():
		return func(splash.PlantDescriptor) float64 { return 1 }
	}
	since := now.Sub(a.plantsAt)
	return func(p splash.PlantDescriptor) float64 {
		return splash.PlantGrowth(p, since)
	}
}

func blankGrid(rows, width int) [][]rune {
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	return grid
}

func put(row []rune, col int, glyph string) {
	for i, r := range []rune(glyph) {
		if c := col + i; c >= 0 && c < len(row) {
			row[c] = r
		}
	}
}

func renderSky(width int, pose splash.Pose, scanning bool) string {
	grid := blankGrid(skyRows, width)
	if pose.Opacity < 0.1 {
		return joinGrid(grid, lipgloss.NewStyle())
	}
	glyph := "-=[✦]=-"
	if pose.Scale < 0.6 {
		glyph = "=✦="
	}
	center := float64(width)/2 + pose.X/100*float64(width)
	col := int(math.Round(center)) - len([]rune(glyph))/2
	row := int(math.Round(float64(skyRows-1)/2 + pose.Y/100*float64(skyRows)*3))
	row = min(skyRows-1, max(0, row))

	style := droneStyle
	if pose.Opacity < 0.6 {
		style = faintDroneStyle
	}
	lines := make([]string, skyRows)
	for i := range grid {
		switch {
		case i == row:
			put(grid[i], col, glyph)
			lines[i] = style.Render(string(grid[i]))
		case scanning && i > row:
			put(grid[i], int(math.Round(center))-1, "╲│╱")
			lines[i] = beamStyle.Render(string(grid[i]))
		default:
			lines[i] = string(grid[i])
		}
	}
	return strings.Join(lines, "\n")
}

func renderField(width int, plants []splash.PlantDescriptor, growth func(splash.PlantDescriptor) float64) string {
	grid := blankGrid(fieldRows, width)
	for _, p := range plants {
		g := growth(p)
		if g <= 0 {
			continue
		}
		col := int(p.Offset / 100 * float64(width))
		col = min(width-1, max(0, col))
		h := int(math.Round(g * p.Height / plantReferenceHeight * fieldRows))
		h = min(fieldRows, max(1, h))
		top := fieldRows - h
		for r := top + 1; r < fieldRows; r++ {
			grid[r][col] = '│'
		}
		grid[top][col] = plantTops[p.Variant%splash.PlantVariants]
	}
	return joinGrid(grid, plantStyle)
}

func renderGround(width int, stage splash.Stage) string {
	if stage < splash.StageGroundRevealed {
		return strings.Repeat(" ", width)
	}
	return groundStyle.Render(strings.Repeat("▀", width))
}

func joinGrid(grid [][]rune, style lipgloss.Style) string {
	lines := make([]string, len(grid))
	for i, row := range grid {
		lines[i] = style.Render(string(row))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderScanCard(f splash.Frame) string {
	if f.Stage < splash.StageScanning {
		return ""
	}
	m := splash.Metrics(f.Progress)
	lines := []string{
		beamStyle.Render("◉ " + f.Message),
		fmt.Sprintf("%s %3.0f%%", a.scanBar.ViewAs(f.Progress/100), f.Progress),
		fmt.Sprintf("Área: %.1f ha · Plantas: %d · Qualidade: %d%%", m.AreaHectares, m.Plants, m.QualityPercent),
	}
	if f.Progress >= 100 {
		lines = append(lines, "", bannerStyle.Render("✓ SCAN COMPLETO · Iniciando aplicativo..."))
	}
	return scanCardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
