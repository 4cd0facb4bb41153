package mapgen

import "testing"

func TestGenerateDeterministic(t *testing.T) {
	gridA, resA, err := Generate(60, 60, "424242")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	gridB, resB, err := Generate(60, 60, "424242")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(gridA.Tiles) != len(gridB.Tiles) {
		t.Fatalf("tile count mismatch: %d vs %d", len(gridA.Tiles), len(gridB.Tiles))
	}
	for i := range gridA.Tiles {
		if gridA.Tiles[i] != gridB.Tiles[i] {
			t.Fatalf("tile %d diverged: %s vs %s", i, gridA.Tiles[i], gridB.Tiles[i])
		}
	}
	if len(resA) != len(resB) {
		t.Fatalf("resource count mismatch: %d vs %d", len(resA), len(resB))
	}
	for i := range resA {
		if resA[i] != resB[i] {
			t.Fatalf("resource %d diverged: %+v vs %+v", i, resA[i], resB[i])
		}
	}
}

func TestGenerateDifferentSeedsDiverge(t *testing.T) {
	gridA, _, _ := Generate(60, 60, "seed-a")
	gridB, _, _ := Generate(60, 60, "seed-b")

	diverged := false
	for i := range gridA.Tiles {
		if gridA.Tiles[i] != gridB.Tiles[i] {
			diverged = true
			break
		}
	}
	if !diverged {
		t.Fatalf("expected different seeds to produce different maps")
	}
}

func TestSpawnAreasAreGrass(t *testing.T) {
	grid, _, err := Generate(60, 60, "spawn-safety")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	centers := [2][2]int{
		{int(0.15 * 60), int(0.15 * 60)},
		{int(0.85 * 60), int(0.85 * 60)},
	}
	for _, c := range centers {
		for dy := -3; dy <= 3; dy++ {
			for dx := -3; dx <= 3; dx++ {
				if got := grid.At(c[0]+dx, c[1]+dy); got != TileGrass {
					t.Fatalf("spawn tile (%d,%d) = %s, want grass", c[0]+dx, c[1]+dy, got)
				}
			}
		}
	}
}

func TestGenerateRejectsMalformedInput(t *testing.T) {
	if _, _, err := Generate(0, 60, "seed"); err == nil {
		t.Fatalf("expected error for zero width")
	}
	if _, _, err := Generate(60, 60, ""); err == nil {
		t.Fatalf("expected error for empty seed")
	}
}

func TestResourceAmountsWithinBounds(t *testing.T) {
	grid, nodes, err := Generate(60, 60, "resource-bounds")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, n := range nodes {
		switch n.Kind {
		case ResourceGold:
			if n.Max < goldMin || n.Max > goldMax {
				t.Fatalf("gold node %s max %d out of range", n.ID, n.Max)
			}
		case ResourceWood:
			if n.Max < forestMin || n.Max > forestMax {
				t.Fatalf("wood node %s max %d out of range", n.ID, n.Max)
			}
		}
		if grid.At(n.TileX, n.TileY).Passable() == false {
			t.Fatalf("resource node placed on impassable tile")
		}
	}
}
