package category

var (
	dhallQuantities = []string{"1kg", "1/2kg", "1/4kg", "1/3kg"}
	spiceQuantities = []string{"25g", "50g", "100g", "250g", "500g", "1kg"}
	oilQuantities   = []string{"1/2 litre", "1 litre", "2 litre", "5 litre", "tin"}

	brands = map[Category][]string{
		Oil:      {"SVS", "Gold Winner", "Ruchi"},
		Biscuits: {"Milk Bikis", "Marie Gold", "Good Day"},
		Dhall:    {"Aashirvaad", "Fortune", "Tata Sampann"},
		Spices:   {"MDH", "Everest", "Catch"},
		Masala:   {"MDH", "Everest", "Aachi"},
		Snacks:   {"Haldiram", "Bingo", "Lays"},
	}

	names = map[Category][]string{
		Dhall:  {"Toor Dal", "Moong Dal", "Urad Dal"},
		Spices: {"Turmeric Powder", "Chili Powder"},
		Masala: {"Sambar Masala", "Rasam Masala"},
		Snacks: {"Lays Chips", "Kurkure"},
	}
)

// Options groups the selectable values for one category.
type Options struct {
	Quantities []string
	Brands     []string
	Names      []string
}

// OptionsFor derives every choice set for c at once.
func OptionsFor(c Category) Options {
	return Options{
		Quantities: QuantityOptions(c),
		Brands:     BrandOptions(c),
		Names:      NameOptions(c),
	}
}

// QuantityOptions returns the quantity choices for c. An empty result means the
// quantity field is not shown.
func QuantityOptions(c Category) []string {
	switch c {
	case Dhall:
		return clone(dhallQuantities)
	case Spices, Masala:
		return clone(spiceQuantities)
	case Oil:
		return clone(oilQuantities)
	default:
		return []string{}
	}
}

func BrandOptions(c Category) []string {
	return clone(brands[c])
}

func NameOptions(c Category) []string {
	return clone(names[c])
}

// callers get their own copy, the tables stay read-only
func clone(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
