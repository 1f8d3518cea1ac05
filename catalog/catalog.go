// Package catalog holds the static Radikal service menu: shoot categories,
// packages, add-ons and the group pricing rules. Prices are in major
// currency units; conversion to payment subunits happens at payment time.
package catalog

// Category is one bookable shoot type.
type Category struct {
	ID               string
	Name             string
	IsGroup          bool
	DefaultGroupSize int     // head count included in the package price
	PerHeadRate      float64 // charge per head beyond DefaultGroupSize
}

// Package is one service tier within a category.
type Package struct {
	ID          string
	CategoryID  string
	Name        string
	Price       float64
	PhotoCount  int // edited photos delivered
	OutfitCount int // outfit changes included
}

// AddOn is an optional extra resolved by id at pricing time.
type AddOn struct {
	ID    string
	Name  string
	Price float64
}

var categories = []Category{
	{ID: "solo", Name: "Solo Portrait"},
	{ID: "couple", Name: "Couple Shoot"},
	{ID: "maternity", Name: "Maternity Shoot"},
	{ID: "birthday", Name: "Birthday Shoot"},
	{ID: "group", Name: "Family & Group", IsGroup: true, DefaultGroupSize: 2, PerHeadRate: 15000},
}

var packages = []Package{
	{ID: "solo-basic", CategoryID: "solo", Name: "Basic", Price: 50000, PhotoCount: 4, OutfitCount: 1},
	{ID: "solo-classic", CategoryID: "solo", Name: "Classic", Price: 85000, PhotoCount: 8, OutfitCount: 2},
	{ID: "solo-deluxe", CategoryID: "solo", Name: "Deluxe", Price: 140000, PhotoCount: 15, OutfitCount: 4},
	{ID: "couple-classic", CategoryID: "couple", Name: "Classic", Price: 120000, PhotoCount: 10, OutfitCount: 2},
	{ID: "couple-deluxe", CategoryID: "couple", Name: "Deluxe", Price: 180000, PhotoCount: 18, OutfitCount: 4},
	{ID: "maternity-glow", CategoryID: "maternity", Name: "Glow", Price: 110000, PhotoCount: 10, OutfitCount: 3},
	{ID: "birthday-spark", CategoryID: "birthday", Name: "Spark", Price: 95000, PhotoCount: 8, OutfitCount: 3},
	{ID: "group-base", CategoryID: "group", Name: "Together", Price: 150000, PhotoCount: 12, OutfitCount: 2},
}

var addOns = []AddOn{
	{ID: "extra-outfit", Name: "Extra Outfit Change", Price: 10000},
	{ID: "extra-photos", Name: "5 Extra Edited Photos", Price: 15000},
	{ID: "makeup-artist", Name: "Professional Makeup Artist", Price: 25000},
	{ID: "express-delivery", Name: "48h Express Delivery", Price: 20000},
	{ID: "framed-print", Name: "Framed A3 Print", Price: 30000},
}

// Categories returns the full category list in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryByID looks up a category; ok is false for unknown ids.
func CategoryByID(id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// PackageByID looks up a package; ok is false for unknown ids.
func PackageByID(id string) (Package, bool) {
	for _, p := range packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

// PackagesForCategory returns the packages of one category, cheapest first.
func PackagesForCategory(categoryID string) []Package {
	var out []Package
	for _, p := range packages {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out
}

// AddOnByID looks up an add-on; ok is false for unknown ids.
func AddOnByID(id string) (AddOn, bool) {
	for _, a := range addOns {
		if a.ID == id {
			return a, true
		}
	}
	return AddOn{}, false
}

// AddOnPrice resolves an add-on id to its price. Unknown ids contribute
// zero rather than erroring.
func AddOnPrice(id string) float64 {
	a, ok := AddOnByID(id)
	if !ok {
		return 0
	}
	return a.Price
}

// AddOns returns the full add-on list.
func AddOns() []AddOn {
	out := make([]AddOn, len(addOns))
	copy(out, addOns)
	return out
}

// GroupPrice computes the price of a package for a given head count. Heads
// beyond the category's default group size are charged at the per-head
// rate; smaller groups never pay less than the package price.
func GroupPrice(cat Category, pkg Package, groupSize int) float64 {
	if !cat.IsGroup {
		return pkg.Price
	}
	extra := groupSize - cat.DefaultGroupSize
	if extra < 0 {
		extra = 0
	}
	return pkg.Price + float64(extra)*cat.PerHeadRate
}

// BestFitPackage picks the smallest package of a category whose outfit
// allowance covers outfitCount. When the count exceeds every allowance the
// largest package is returned. Used by the wardrobe deep-link flow.
func BestFitPackage(categoryID string, outfitCount int) (Package, bool) {
	candidates := PackagesForCategory(categoryID)
	if len(candidates) == 0 {
		return Package{}, false
	}
	best := candidates[0]
	found := false
	for _, p := range candidates {
		if p.OutfitCount >= outfitCount {
			if !found || p.OutfitCount < best.OutfitCount || (p.OutfitCount == best.OutfitCount && p.Price < best.Price) {
				best = p
				found = true
			}
		}
	}
	if found {
		return best, true
	}
	// No allowance covers the count: fall back to the largest.
	largest := candidates[0]
	for _, p := range candidates {
		if p.OutfitCount > largest.OutfitCount {
			largest = p
		}
	}
	return largest, true
}
