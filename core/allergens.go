package core

// Allergen is a fixed enumeration of declarable allergens. Items store
// allergen names (strings) for serialization stability; the enum exists so
// classifier code can switch exhaustively.
type Allergen uint8

const (
	AllergenMilk Allergen = iota + 1
	AllergenEgg
	AllergenFish
	AllergenShellfish
	AllergenTreeNut
	AllergenPeanut
	AllergenWheat
	AllergenSoy
	AllergenSesame
	AllergenCelery
	AllergenMustard
	AllergenSulphite
	AllergenLupin
	AllergenMollusc
)

// AllAllergens lists every Allergen in declaration order.
var AllAllergens = [...]Allergen{
	AllergenMilk,
	AllergenEgg,
	AllergenFish,
	AllergenShellfish,
	AllergenTreeNut,
	AllergenPeanut,
	AllergenWheat,
	AllergenSoy,
	AllergenSesame,
	AllergenCelery,
	AllergenMustard,
	AllergenSulphite,
	AllergenLupin,
	AllergenMollusc,
}

var allergenNames = map[Allergen]string{
	AllergenMilk:      "milk",
	AllergenEgg:       "egg",
	AllergenFish:      "fish",
	AllergenShellfish: "shellfish",
	AllergenTreeNut:   "treeNut",
	AllergenPeanut:    "peanut",
	AllergenWheat:     "wheat",
	AllergenSoy:       "soy",
	AllergenSesame:    "sesame",
	AllergenCelery:    "celery",
	AllergenMustard:   "mustard",
	AllergenSulphite:  "sulphite",
	AllergenLupin:     "lupin",
	AllergenMollusc:   "mollusc",
}

// String returns the stable machine name of the allergen, as stored in item
// allergen sets.
func (a Allergen) String() string {
	if name, ok := allergenNames[a]; ok {
		return name
	}
	return "unknown"
}

// IsValid reports whether a is a known allergen.
func (a Allergen) IsValid() bool {
	_, ok := allergenNames[a]
	return ok
}
