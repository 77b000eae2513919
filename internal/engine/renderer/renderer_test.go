package renderer

import (
	"testing"
	"time"

	"github.com/Faultbox/islandrun/internal/game/effects"
	"github.com/Faultbox/islandrun/internal/game/entity"
	"github.com/Faultbox/islandrun/internal/game/player"
	"github.com/Faultbox/islandrun/pkg/math"
)

func TestTerrainColorStable(t *testing.T) {
	for _, name := range []string{"grass", "sand", "rock", ""} {
		if TerrainColor(name) != TerrainColor(name) {
			t.Errorf("colour for %q is not stable", name)
		}
	}
}

func TestEntityColorsDistinct(t *testing.T) {
	seen := map[[3]float32]string{}
	for _, e := range []*entity.Spawnable{
		{Kind: entity.KindEnemy},
		{Kind: entity.KindCollectible},
		{Kind: entity.KindPowerup, Variant: entity.VariantScoreDoubler},
		{Kind: entity.KindPowerup, Variant: entity.VariantInvulnerability},
		{Kind: entity.KindPowerup, Variant: entity.VariantShrink},
		{Kind: entity.KindVegetation},
		{Kind: entity.KindCloud},
	} {
		c := EntityColor(e)
		name := e.Kind.String() + "/" + e.Variant.String()
		if prev, ok := seen[c]; ok {
			t.Errorf("%s shares a colour with %s", name, prev)
		}
		seen[c] = name
	}
}

func TestPlayerColor(t *testing.T) {
	st := player.NewState(math.Vec3{})
	normal := PlayerColor(st)

	st.Effects[effects.Invulnerability] = 8 * time.Second
	if PlayerColor(st) == normal {
		t.Error("invulnerable player should be tinted")
	}
	st.Terminal = true
	if PlayerColor(st) == normal {
		t.Error("ended run should be tinted")
	}
}

func TestScale(t *testing.T) {
	m := scale(3)
	got := m.TransformVec3(math.Vec3{X: 1, Y: 1, Z: 1})
	if got != (math.Vec3{X: 3, Y: 3, Z: 3}) {
		t.Errorf("scale(3) * (1,1,1) = %+v", got)
	}
}
