package mapgen

import (
	"testing"

	"github.com/freeeve/luxbot/pkg/lux"
)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7
	a := lux.EncodeUpdates(Generate(cfg))
	b := lux.EncodeUpdates(Generate(cfg))
	if len(a) != len(b) {
		t.Fatalf("line counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("line %d: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestGenerate_Mirrored(t *testing.T) {
	for _, seed := range []int64{1, 2, 3} {
		cfg := GenConfig{Width: 12, Height: 12, Seed: seed, Units: 3, Cities: 2}
		gs := Generate(cfg)

		for y := 0; y < cfg.Height; y++ {
			for x := 0; x < cfg.Width; x++ {
				c := gs.Map.Cell(x, y)
				m := gs.Map.Cell(cfg.Width-1-x, y)
				if c.HasResource() != m.HasResource() {
					t.Fatalf("seed %d: resource asymmetry at (%d, %d)", seed, x, y)
				}
				if c.HasResource() && *c.Resource != *m.Resource {
					t.Errorf("seed %d: %+v vs %+v", seed, *c.Resource, *m.Resource)
				}
			}
		}

		me, opp := gs.Players[0], gs.Players[1]
		if len(me.Units) != len(opp.Units) || len(me.Cities) != len(opp.Cities) {
			t.Fatalf("seed %d: teams differ", seed)
		}
		for i, u := range me.Units {
			o := opp.Units[i]
			if o.Pos != mirror(u.Pos, cfg.Width) || o.Cargo != u.Cargo || o.Team != 1 {
				t.Errorf("seed %d: unit %s not mirrored by %s", seed, u.ID, o.ID)
			}
		}
	}
}

func TestGenerate_Placement(t *testing.T) {
	cfg := GenConfig{Width: 16, Height: 16, Seed: 11, Units: 4, Cities: 2}
	gs := Generate(cfg)
	me := gs.Me()
	if len(me.Units) != cfg.Units || len(me.Cities) != cfg.Cities {
		t.Fatalf("got %d units, %d cities", len(me.Units), len(me.Cities))
	}

	seen := map[lux.Position]bool{}
	for _, p := range gs.Players {
		for _, u := range p.Units {
			if seen[u.Pos] {
				t.Errorf("two units at %s", u.Pos)
			}
			seen[u.Pos] = true
			if c := gs.Map.CellAt(u.Pos); !c.IsEmpty() {
				t.Errorf("unit %s placed on occupied cell %s", u.ID, u.Pos)
			}
			if u.Cargo.Total() > lux.WorkerCapacity {
				t.Errorf("unit %s over capacity: %+v", u.ID, u.Cargo)
			}
		}
		for _, c := range p.Cities {
			ct := gs.Map.CellAt(c.Tiles[0].Pos).CityTile
			if ct == nil || ct.CityID != c.ID {
				t.Errorf("city %s tile not on map", c.ID)
			}
		}
	}
	for _, u := range me.Units {
		if u.Pos.X >= cfg.Width/2 {
			t.Errorf("team 0 unit %s on the wrong side: %s", u.ID, u.Pos)
		}
	}
}

func TestGenerate_RoundTripsThroughDecoder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 5
	gs := Generate(cfg)
	lines := lux.EncodeUpdates(gs)
	back, err := lux.DecodeUpdates(0, cfg.Width, cfg.Height, 0, lines)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(back.Me().Units) != cfg.Units || back.Me().CityTileCount() != cfg.Cities {
		t.Errorf("decoded %d units, %d tiles", len(back.Me().Units), back.Me().CityTileCount())
	}
}
