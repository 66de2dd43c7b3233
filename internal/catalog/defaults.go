package catalog

import "github.com/shopspring/decimal"

type crop struct {
	id, name string
	aliases  []string
	class    ItemClass
}

var crops = []crop{
	{"wheat", "Trigo", []string{"trigo"}, ClassMainCrop},
	{"corn", "Milho", []string{"milho"}, ClassMainCrop},
	{"potato", "Batata", []string{"batata"}, ClassMainCrop},
	{"carrot", "Cenoura", []string{"cenoura"}, ClassMainCrop},
	{"sugarcane", "Cana-de-açúcar", []string{"cana", "cana de acucar", "sugar cane"}, ClassMainCrop},
	{"rice", "Arroz", []string{"arroz"}, ClassMainCrop},
	{"tomato", "Tomate", []string{"tomate"}, ClassSpecialtyCrop},
	{"strawberry", "Morango", []string{"morango"}, ClassSpecialtyCrop},
	{"grape", "Uva", []string{"uva"}, ClassSpecialtyCrop},
	{"pepper", "Pimenta", []string{"pimenta"}, ClassSpecialtyCrop},
	{"coffee_bean", "Grão de café", []string{"grao de cafe", "cafe em grao"}, ClassSpecialtyCrop},
	{"tobacco_leaf", "Folha de tabaco", []string{"folha de tabaco", "tabaco"}, ClassSpecialtyCrop},
}

// Default returns the stock catalog of the farm.
func Default() *Catalog {
	var items []Item
	for _, c := range crops {
		items = append(items, Item{ID: c.id, Name: c.name, Class: c.class, Aliases: c.aliases})
		seed := Item{
			ID:      c.id + "_seed",
			Name:    "Semente de " + c.name,
			Class:   ClassSeed,
			Aliases: []string{"seed " + c.id, "semente " + c.name},
		}
		for _, alias := range c.aliases {
			seed.Aliases = append(seed.Aliases, "semente de "+alias)
		}
		items = append(items, seed)
	}

	items = append(items,
		Item{ID: "chicken", Name: "Galinha", Class: ClassAnimal, Aliases: []string{"galinha", "frango"}},
		Item{ID: "cow", Name: "Vaca", Class: ClassAnimal, Aliases: []string{"vaca", "boi"}},
		Item{ID: "pig", Name: "Porco", Class: ClassAnimal, Aliases: []string{"porco"}},
		Item{ID: "sheep", Name: "Ovelha", Class: ClassAnimal, Aliases: []string{"ovelha"}},
		Item{ID: "goat", Name: "Cabra", Class: ClassAnimal, Aliases: []string{"cabra", "bode"}},

		Item{ID: "animal_feed", Name: "Ração", Class: ClassFeed, Aliases: []string{"racao", "racao animal", "feed"}},

		Item{ID: "water", Name: "Água", Class: ClassAllowance, Aliases: []string{"agua", "garrafa de agua"}},
		Item{ID: "bread", Name: "Pão", Class: ClassAllowance, Aliases: []string{"pao"}},
		Item{ID: "coffee", Name: "Café", Class: ClassAllowance, Aliases: []string{"cafe"}},
		Item{ID: "beer", Name: "Cerveja", Class: ClassAllowance, Aliases: []string{"cerveja"}},
		Item{ID: "stew", Name: "Ensopado", Class: ClassAllowance, Aliases: []string{"ensopado"}},
		Item{ID: "cigarette", Name: "Cigarro", Class: ClassAllowance, Aliases: []string{"cigarro"}},
		Item{ID: "cigar", Name: "Charuto", Class: ClassAllowance, Aliases: []string{"charuto"}},

		tool("hoe", "Enxada", "15", "enxada"),
		tool("watering_can", "Regador", "10", "regador"),
		tool("bucket", "Balde", "5", "balde"),
		tool("pitchfork", "Forcado", "15", "forcado", "garfo"),
		tool("shovel", "Pá", "12", "pa"),
		tool("scythe", "Foice", "12", "foice"),

		Item{ID: "box", Name: "Caixa", Class: ClassBox, Aliases: []string{"caixa", "caixa de entrega", "delivery box"}},
	)
	return New(items)
}

func tool(id, name, cost string, aliases ...string) Item {
	return Item{
		ID:              id,
		Name:            name,
		Class:           ClassTool,
		Aliases:         aliases,
		ReplacementCost: decimal.RequireFromString(cost),
	}
}
