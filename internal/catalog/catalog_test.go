package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "racao", Fold("  Ração "))
	assert.Equal(t, "cana-de-acucar", Fold("Cana-de-Açúcar"))
	assert.Equal(t, "cana_de_acucar", Slug("Cana-de-Açúcar"))
}

func TestCanonicalAliases(t *testing.T) {
	c := Default()
	cases := map[string]string{
		"trigo":             "wheat",
		"Trigo":             "wheat",
		"WHEAT":             "wheat",
		"Ração":             "animal_feed",
		"semente de trigo":  "wheat_seed",
		"seed_wheat":        "wheat_seed",
		"wheat seed":        "wheat_seed",
		"Sementes de Milho": "corn_seed",
		"galinhas":          "chicken",
		"Pá":                "shovel",
	}
	for raw, want := range cases {
		assert.Equal(t, want, c.Canonical(raw), raw)
	}
}

func TestCanonicalUnknownIsSlugged(t *testing.T) {
	c := Default()
	assert.Equal(t, "diamante_azul", c.Canonical("Diamante Azul"))
	assert.Equal(t, "", c.Canonical("  "))
}

func TestClassAndDisplayName(t *testing.T) {
	c := Default()
	assert.Equal(t, ClassMainCrop, c.Class("wheat"))
	assert.Equal(t, ClassSpecialtyCrop, c.Class("tomato"))
	assert.Equal(t, ClassSeed, c.Class("tomato_seed"))
	assert.Equal(t, ClassUnknown, c.Class("diamante"))
	assert.True(t, c.Class("wheat").IsPlant())
	assert.False(t, c.Class("wheat_seed").IsPlant())

	assert.Equal(t, "Trigo", c.DisplayName("wheat"))
	assert.Equal(t, "mystery", c.DisplayName("mystery"))
}

func TestToolCost(t *testing.T) {
	c := Default()
	cost, ok := c.ToolCost("hoe")
	require.True(t, ok)
	assert.True(t, cost.Equal(decimal.NewFromInt(15)))

	_, ok = c.ToolCost("wheat")
	assert.False(t, ok)
}

func TestAddOverridesExisting(t *testing.T) {
	c := New(nil)
	c.Add(Item{ID: "Golden Egg", Name: "Ovo de ouro", Aliases: []string{"ovo dourado"}})
	assert.Equal(t, "golden_egg", c.Canonical("ovo dourado"))
	assert.Equal(t, ClassUnknown, c.Class("golden_egg"))
	assert.Len(t, c.Items(), 1)
}
