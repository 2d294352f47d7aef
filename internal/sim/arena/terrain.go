package arena

import "gridclash.ai/internal/sim/arena/mathx"

type Terrain string

const (
	TerrainNormal   Terrain = "NORMAL"
	TerrainMountain Terrain = "MOUNTAIN"
	TerrainRiver    Terrain = "RIVER"
)

// ClassifyTerrain maps a cell to its terrain class: ~10% mountain, ~10%
// river, ~80% normal. Pure function of (seed, x, y); a cell's terrain never
// changes.
func ClassifyTerrain(seed int64, x, y int) Terrain {
	h := mathx.Hash2(seed, x, y) % 100
	switch {
	case h < 10:
		return TerrainMountain
	case h < 20:
		return TerrainRiver
	default:
		return TerrainNormal
	}
}

func (a *Arena) terrainAt(x, y int) Terrain {
	return ClassifyTerrain(a.cfg.Seed, x, y)
}
