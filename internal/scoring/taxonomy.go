package scoring

// FlavorCategory is one slice of the flavor wheel: a named group of
// subcategories, each holding the selectable descriptors. Order is
// significant — it drives UI layout and first-seen tie-breaking.
type FlavorCategory struct {
	Name          string
	Color         string
	Subcategories []FlavorSubcategory
}

type FlavorSubcategory struct {
	Name        string
	Descriptors []string
}

// FlavorWheel is the fixed descriptor taxonomy.
var FlavorWheel = []FlavorCategory{
	{
		Name:  "Fruity",
		Color: "#FF6B6B",
		Subcategories: []FlavorSubcategory{
			{Name: "Citrus", Descriptors: []string{"Grapefruit", "Orange", "Lemon", "Lime"}},
			{Name: "Berry", Descriptors: []string{"Blackberry", "Raspberry", "Blueberry", "Strawberry"}},
			{Name: "Stone Fruit", Descriptors: []string{"Peach", "Apricot", "Plum", "Cherry"}},
			{Name: "Tropical", Descriptors: []string{"Pineapple", "Mango", "Papaya", "Coconut"}},
		},
	},
	{
		Name:  "Sweet",
		Color: "#FFD93D",
		Subcategories: []FlavorSubcategory{
			{Name: "Brown Sugar", Descriptors: []string{"Molasses", "Maple Syrup", "Caramelized", "Honey"}},
			{Name: "Vanilla", Descriptors: []string{"Vanilla Extract", "Vanilla Bean"}},
			{Name: "Chocolate", Descriptors: []string{"Dark Chocolate", "Milk Chocolate", "Cocoa"}},
		},
	},
	{
		Name:  "Nutty",
		Color: "#A0522D",
		Subcategories: []FlavorSubcategory{
			{Name: "Tree Nuts", Descriptors: []string{"Almond", "Hazelnut", "Walnut"}},
			{Name: "Legumes", Descriptors: []string{"Peanut", "Fresh Peanuts"}},
		},
	},
	{
		Name:  "Spices",
		Color: "#FF8C00",
		Subcategories: []FlavorSubcategory{
			{Name: "Pungent", Descriptors: []string{"Pepper", "Clove", "Anise"}},
			{Name: "Warming", Descriptors: []string{"Cinnamon", "Nutmeg", "Cardamom"}},
		},
	},
	{
		Name:  "Floral",
		Color: "#DA70D6",
		Subcategories: []FlavorSubcategory{
			{Name: "Black Tea", Descriptors: []string{"Black Tea"}},
			{Name: "Floral", Descriptors: []string{"Chamomile", "Rose", "Jasmine"}},
		},
	},
	{
		Name:  "Other",
		Color: "#708090",
		Subcategories: []FlavorSubcategory{
			{Name: "Cereal", Descriptors: []string{"Grain", "Malt"}},
			{Name: "Roasted", Descriptors: []string{"Pipe Tobacco", "Burnt", "Ashy"}},
		},
	},
}

// Descriptors returns every selectable descriptor in wheel order.
func Descriptors() []string {
	var out []string
	for _, cat := range FlavorWheel {
		for _, sub := range cat.Subcategories {
			out = append(out, sub.Descriptors...)
		}
	}
	return out
}

// DescriptorCategory returns the wheel category a descriptor belongs to,
// or "" if the descriptor is not part of the taxonomy.
func DescriptorCategory(descriptor string) string {
	for _, cat := range FlavorWheel {
		for _, sub := range cat.Subcategories {
			for _, d := range sub.Descriptors {
				if d == descriptor {
					return cat.Name
				}
			}
		}
	}
	return ""
}
