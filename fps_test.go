package strata

import (
	"strings"
	"testing"
)

func TestStatsText(t *testing.T) {
	got := statsText(59.94, 60, FrameStats{NodesVisited: 12, DrawCalls: 3, ProgramBinds: 2, ProgramBindsSkipped: 5})
	for _, want := range []string{"FPS: 59.9", "TPS: 60.0", "nodes: 12", "draws: 3", "programs: 2 (5 skipped)"} {
		if !strings.Contains(got, want) {
			t.Errorf("statsText missing %q in %q", want, got)
		}
	}
}
