package strata

import (
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// KeyAction is a built-in response Run performs when a bound key is pressed.
type KeyAction uint8

const (
	ActionQuit        KeyAction = iota + 1 // end Run as if OnUpdate returned ErrQuit
	ActionScreenshot                       // queue a screenshot labeled "key"
	ActionToggleStats                      // toggle RunConfig.ShowStats
)

// DefaultKeys binds Escape to quit, F12 to screenshot and F3 to the stats
// overlay.
func DefaultKeys() map[ebiten.Key]KeyAction {
	return map[ebiten.Key]KeyAction{
		ebiten.KeyEscape: ActionQuit,
		ebiten.KeyF12:    ActionScreenshot,
		ebiten.KeyF3:     ActionToggleStats,
	}
}

// pressedActions returns the actions whose key justPressed reports, in
// ascending key order so simultaneous presses resolve the same way every
// frame.
func pressedActions(keys map[ebiten.Key]KeyAction, justPressed func(ebiten.Key) bool) []KeyAction {
	if len(keys) == 0 {
		return nil
	}
	bound := make([]ebiten.Key, 0, len(keys))
	for k := range keys {
		bound = append(bound, k)
	}
	slices.Sort(bound)
	var out []KeyAction
	for _, k := range bound {
		if justPressed(k) {
			out = append(out, keys[k])
		}
	}
	return out
}

// handleKeys runs the bound actions for this tick. It reports whether a quit
// was requested.
func (g *game) handleKeys(justPressed func(ebiten.Key) bool) bool {
	quit := false
	for _, a := range pressedActions(g.cfg.Keys, justPressed) {
		switch a {
		case ActionQuit:
			quit = true
		case ActionScreenshot:
			g.dev.Screenshot("key")
		case ActionToggleStats:
			g.cfg.ShowStats = !g.cfg.ShowStats
		}
	}
	return quit
}

func justPressed(k ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(k)
}
