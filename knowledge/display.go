package knowledge

import "github.com/poiesic/nutridex/core"

var nutrientDisplayNames = map[core.NutrientType]string{
	core.NutrientEnergy:             "Calories",
	core.NutrientProtein:            "Protein",
	core.NutrientTotalFat:           "Total Fat",
	core.NutrientSaturatedFat:       "Saturated Fat",
	core.NutrientMonounsaturatedFat: "Monounsaturated Fat",
	core.NutrientPolyunsaturatedFat: "Polyunsaturated Fat",
	core.NutrientPUFA182:            "PUFA 18:2 (Linoleic Acid)",
	core.NutrientPUFA183:            "PUFA 18:3 (Alpha-Linolenic Acid)",
	core.NutrientCholesterol:        "Cholesterol",
	core.NutrientCarbohydrates:      "Carbohydrates",
	core.NutrientSugar:              "Sugar",
	core.NutrientFiber:              "Fiber",
	core.NutrientWater:              "Water",
	core.NutrientCaffeine:           "Caffeine",
	core.NutrientCalcium:            "Calcium",
	core.NutrientIron:               "Iron",
	core.NutrientMagnesium:          "Magnesium",
	core.NutrientPhosphorus:         "Phosphorus",
	core.NutrientPotassium:          "Potassium",
	core.NutrientSodium:             "Sodium",
	core.NutrientZinc:               "Zinc",
	core.NutrientCopper:             "Copper",
	core.NutrientManganese:          "Manganese",
	core.NutrientSelenium:           "Selenium",
	core.NutrientVitaminA:           "Vitamin A",
	core.NutrientThiamin:            "Thiamin (B1)",
	core.NutrientRiboflavin:         "Riboflavin (B2)",
	core.NutrientNiacin:             "Niacin (B3)",
	core.NutrientVitaminB6:          "Vitamin B6",
	core.NutrientFolate:             "Folate",
	core.NutrientVitaminB12:         "Vitamin B12",
	core.NutrientVitaminC:           "Vitamin C",
	core.NutrientVitaminD:           "Vitamin D",
	core.NutrientVitaminE:           "Vitamin E",
	core.NutrientVitaminK:           "Vitamin K",
}

// DisplayName returns the stable human-readable label for a nutrient, used
// by callers for rendering chips and labels without duplicating the
// ontology.
func DisplayName(n core.NutrientType) string {
	if name, ok := nutrientDisplayNames[n]; ok {
		return name
	}
	return n.String()
}

// unit scale-up threshold: 1000 µg = 1 mg, 1000 mg = 1 g, 1000 g = 1 kg.
const unitScaleThreshold = 1000

func scaleUp(u core.Unit) (core.Unit, bool) {
	switch u {
	case core.UnitMicrogram:
		return core.UnitMilligram, true
	case core.UnitMilligram:
		return core.UnitGram, true
	case core.UnitGram:
		return core.UnitKilogram, true
	}
	return u, false
}

// ScaledValue auto-scales a nutrient amount to the largest unit that keeps
// the value below the overflow threshold: 1500 mg displays as 1.5 g.
func ScaledValue(value float64, unit core.Unit) (float64, core.Unit) {
	for value >= unitScaleThreshold {
		larger, ok := scaleUp(unit)
		if !ok {
			break
		}
		value /= unitScaleThreshold
		unit = larger
	}
	return value, unit
}

// unitAliases maps spelled-out unit words to units.
var unitAliases = map[string]core.Unit{
	"g":          core.UnitGram,
	"gram":       core.UnitGram,
	"grams":      core.UnitGram,
	"mg":         core.UnitMilligram,
	"milligram":  core.UnitMilligram,
	"milligrams": core.UnitMilligram,
	"µg":         core.UnitMicrogram,
	"ug":         core.UnitMicrogram,
	"mcg":        core.UnitMicrogram,
	"microgram":  core.UnitMicrogram,
	"micrograms": core.UnitMicrogram,
	"kg":         core.UnitKilogram,
	"kilogram":   core.UnitKilogram,
	"kilograms":  core.UnitKilogram,
	"kcal":       core.UnitKcal,
	"cal":        core.UnitKcal,
	"calorie":    core.UnitKcal,
	"calories":   core.UnitKcal,
}

// ParseUnit resolves a unit word from a query ("200 mg of calcium").
func ParseUnit(raw string) (core.Unit, bool) {
	unit, ok := unitAliases[NormalizeKey(raw)]
	return unit, ok
}

// ToBaseUnit converts a value in the given unit to the nutrient's base unit.
// Returns false when the units are not convertible (mass vs energy).
func ToBaseUnit(value float64, unit core.Unit, n core.NutrientType) (float64, bool) {
	base := n.BaseUnit()
	if unit == base {
		return value, true
	}
	factor, ok := massFactor(unit)
	if !ok {
		return 0, false
	}
	baseFactor, ok := massFactor(base)
	if !ok {
		return 0, false
	}
	return value * factor / baseFactor, true
}

// massFactor returns the unit's size in micrograms.
func massFactor(u core.Unit) (float64, bool) {
	switch u {
	case core.UnitMicrogram:
		return 1, true
	case core.UnitMilligram:
		return 1e3, true
	case core.UnitGram:
		return 1e6, true
	case core.UnitKilogram:
		return 1e9, true
	}
	return 0, false
}
