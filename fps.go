package strata

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// statsText formats the overlay shown when RunConfig.ShowStats is set.
func statsText(fps, tps float64, s FrameStats) string {
	return fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nnodes: %d\ndraws: %d\nprograms: %d (%d skipped)\ntextures: %d (%d skipped)",
		fps, tps, s.NodesVisited, s.DrawCalls,
		s.ProgramBinds, s.ProgramBindsSkipped,
		s.TextureBinds, s.TextureBindsSkipped)
}

// drawStatsOverlay prints frame rate and the frame's stats in the top-left
// corner of screen.
func drawStatsOverlay(screen *ebiten.Image, s FrameStats) {
	ebitenutil.DebugPrint(screen, statsText(ebiten.ActualFPS(), ebiten.ActualTPS(), s))
}
