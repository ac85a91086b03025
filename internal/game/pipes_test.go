package game

import (
	"testing"

	"github.com/avrobertson/flappyneat/internal/config"
)

func testPipeConfig() config.PipeConfig {
	return config.PipeConfig{
		SpawnFrequency:  10,
		Gap:             8,
		GapOffset:       2,
		OffScreenOffset: 10,
		Width:           6,
	}
}

func TestPipePairSharedX(t *testing.T) {
	f := NewPipeField(42, 100, 25, testPipeConfig())
	for i := 0; i < 5; i++ {
		f.spawn()
	}
	for _, p := range f.Pairs() {
		if p.TopRect().X != p.X || p.BottomRect(25).X != p.X || p.ZoneRect().X != p.X {
			t.Errorf("colliders of pair at %d do not share x", p.X)
		}
		if p.TopRect().Bottom() != p.ZoneRect().Y {
			t.Error("top collider does not end where the gap starts")
		}
		if p.ZoneRect().Bottom() != p.BottomRect(25).Y {
			t.Error("gap does not end where the bottom collider starts")
		}
	}
}

func TestPipeSpawnBounds(t *testing.T) {
	groundY := 25
	f := NewPipeField(7, 100, groundY, testPipeConfig())
	for i := 0; i < 50; i++ {
		f.spawn()
	}
	for _, p := range f.Pairs() {
		if p.GapY < 1 {
			t.Errorf("gap starts at %d, above the playable area", p.GapY)
		}
		if p.GapY+p.GapH > groundY-1 {
			t.Errorf("gap [%d, %d) reaches into the ground", p.GapY, p.GapY+p.GapH)
		}
		if p.GapH != testPipeConfig().Gap {
			t.Errorf("gap height = %d, expected %d", p.GapH, testPipeConfig().Gap)
		}
	}
}

func TestPipeSpawnCadence(t *testing.T) {
	f := NewPipeField(1, 100, 25, testPipeConfig())

	// The first pipe waits a full interval too; the run starts with open sky.
	if f.TrySpawn(1, 1.0) {
		t.Fatal("spawned before the first interval elapsed")
	}
	if f.TrySpawn(9, 1.0) {
		t.Error("spawned before the interval elapsed")
	}
	if !f.TrySpawn(10, 1.0) {
		t.Error("did not spawn after spawn_frequency frames")
	}
	if f.TrySpawn(15, 1.0) {
		t.Error("spawned before the next interval elapsed")
	}
	if !f.TrySpawn(20, 1.0) {
		t.Error("did not spawn one interval after the previous spawn")
	}

	// Higher speed shortens the interval proportionally.
	f.Reset(1)
	if f.TrySpawn(4, 2.0) {
		t.Error("spawned before the scaled interval elapsed")
	}
	if !f.TrySpawn(5, 2.0) {
		t.Error("did not spawn after spawn_frequency/speed frames")
	}
	if !f.TrySpawn(10, 2.0) {
		t.Error("did not spawn one scaled interval after the previous spawn")
	}
}

func TestPipeRetire(t *testing.T) {
	f := NewPipeField(1, 100, 25, testPipeConfig())
	f.pairs = append(f.pairs, PipePair{X: 2, GapY: 8, GapH: 8, Width: 6})

	f.Update(4.0)
	if len(f.Pairs()) != 1 {
		t.Fatal("pair retired while still partially on screen")
	}
	f.Update(4.0)
	if len(f.Pairs()) != 0 {
		t.Error("pair not retired after moving fully past the left edge")
	}
}

func TestPipeNearest(t *testing.T) {
	f := NewPipeField(1, 100, 25, testPipeConfig())
	f.pairs = append(f.pairs,
		PipePair{X: 5, GapY: 8, GapH: 8, Width: 6},
		PipePair{X: 30, GapY: 8, GapH: 8, Width: 6},
	)

	if p := f.Nearest(10); p == nil || p.X != 5 {
		t.Errorf("Nearest(10) = %+v, expected the pair at 5", p)
	}
	if p := f.Nearest(12); p == nil || p.X != 30 {
		t.Errorf("Nearest(12) = %+v, expected the pair at 30", p)
	}
	if p := f.Nearest(40); p != nil {
		t.Errorf("Nearest(40) = %+v, expected nil", p)
	}
}

func TestPipeFieldDeterminism(t *testing.T) {
	a := NewPipeField(99, 100, 25, testPipeConfig())
	b := NewPipeField(99, 100, 25, testPipeConfig())
	for i := 0; i < 10; i++ {
		a.spawn()
		b.spawn()
	}
	pa, pb := a.Pairs(), b.Pairs()
	if len(pa) != len(pb) {
		t.Fatalf("pair counts diverge: %d vs %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Errorf("pair %d diverges: %+v vs %+v", i, pa[i], pb[i])
		}
	}
}
