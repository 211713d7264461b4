package core

// NutrientType is a fixed enumeration of every nutrient the index knows
// about. Keeping this closed (rather than dynamic string keys) gives
// exhaustiveness via AllNutrients on every "for all nutrients" loop in
// ranking rebuilds and max-value computation.
type NutrientType uint8

const (
	NutrientEnergy NutrientType = iota + 1
	NutrientProtein
	NutrientTotalFat
	NutrientSaturatedFat
	NutrientMonounsaturatedFat
	NutrientPolyunsaturatedFat
	NutrientPUFA182 // linoleic acid, 18:2
	NutrientPUFA183 // alpha-linolenic acid, 18:3
	NutrientCholesterol
	NutrientCarbohydrates
	NutrientSugar
	NutrientFiber
	NutrientWater
	NutrientCaffeine
	NutrientCalcium
	NutrientIron
	NutrientMagnesium
	NutrientPhosphorus
	NutrientPotassium
	NutrientSodium
	NutrientZinc
	NutrientCopper
	NutrientManganese
	NutrientSelenium
	NutrientVitaminA
	NutrientThiamin
	NutrientRiboflavin
	NutrientNiacin
	NutrientVitaminB6
	NutrientFolate
	NutrientVitaminB12
	NutrientVitaminC
	NutrientVitaminD
	NutrientVitaminE
	NutrientVitaminK
)

// AllNutrients lists every NutrientType in declaration order.
var AllNutrients = [...]NutrientType{
	NutrientEnergy,
	NutrientProtein,
	NutrientTotalFat,
	NutrientSaturatedFat,
	NutrientMonounsaturatedFat,
	NutrientPolyunsaturatedFat,
	NutrientPUFA182,
	NutrientPUFA183,
	NutrientCholesterol,
	NutrientCarbohydrates,
	NutrientSugar,
	NutrientFiber,
	NutrientWater,
	NutrientCaffeine,
	NutrientCalcium,
	NutrientIron,
	NutrientMagnesium,
	NutrientPhosphorus,
	NutrientPotassium,
	NutrientSodium,
	NutrientZinc,
	NutrientCopper,
	NutrientManganese,
	NutrientSelenium,
	NutrientVitaminA,
	NutrientThiamin,
	NutrientRiboflavin,
	NutrientNiacin,
	NutrientVitaminB6,
	NutrientFolate,
	NutrientVitaminB12,
	NutrientVitaminC,
	NutrientVitaminD,
	NutrientVitaminE,
	NutrientVitaminK,
}

var nutrientKeys = map[NutrientType]string{
	NutrientEnergy:             "calories",
	NutrientProtein:            "protein",
	NutrientTotalFat:           "totalFat",
	NutrientSaturatedFat:       "saturatedFat",
	NutrientMonounsaturatedFat: "monounsaturatedFat",
	NutrientPolyunsaturatedFat: "polyunsaturatedFat",
	NutrientPUFA182:            "pufa18:2",
	NutrientPUFA183:            "pufa18:3",
	NutrientCholesterol:        "cholesterol",
	NutrientCarbohydrates:      "carbohydrates",
	NutrientSugar:              "sugar",
	NutrientFiber:              "fiber",
	NutrientWater:              "water",
	NutrientCaffeine:           "caffeine",
	NutrientCalcium:            "calcium",
	NutrientIron:               "iron",
	NutrientMagnesium:          "magnesium",
	NutrientPhosphorus:         "phosphorus",
	NutrientPotassium:          "potassium",
	NutrientSodium:             "sodium",
	NutrientZinc:               "zinc",
	NutrientCopper:             "copper",
	NutrientManganese:          "manganese",
	NutrientSelenium:           "selenium",
	NutrientVitaminA:           "vitaminA",
	NutrientThiamin:            "thiamin",
	NutrientRiboflavin:         "riboflavin",
	NutrientNiacin:             "niacin",
	NutrientVitaminB6:          "vitaminB6",
	NutrientFolate:             "folate",
	NutrientVitaminB12:         "vitaminB12",
	NutrientVitaminC:           "vitaminC",
	NutrientVitaminD:           "vitaminD",
	NutrientVitaminE:           "vitaminE",
	NutrientVitaminK:           "vitaminK",
}

// String returns the stable machine key of the nutrient.
// Human-readable labels live in the knowledge package.
func (n NutrientType) String() string {
	if key, ok := nutrientKeys[n]; ok {
		return key
	}
	return "unknown"
}

// IsValid reports whether n is a known nutrient.
func (n NutrientType) IsValid() bool {
	_, ok := nutrientKeys[n]
	return ok
}

// Unit is the measurement unit nutrient values are expressed in.
type Unit uint8

const (
	UnitKcal Unit = iota + 1
	UnitGram
	UnitMilligram
	UnitMicrogram
	UnitKilogram
)

// String returns the display symbol of the unit.
func (u Unit) String() string {
	switch u {
	case UnitKcal:
		return "kcal"
	case UnitGram:
		return "g"
	case UnitMilligram:
		return "mg"
	case UnitMicrogram:
		return "µg"
	case UnitKilogram:
		return "kg"
	}
	return "?"
}

var nutrientBaseUnits = map[NutrientType]Unit{
	NutrientEnergy:             UnitKcal,
	NutrientProtein:            UnitGram,
	NutrientTotalFat:           UnitGram,
	NutrientSaturatedFat:       UnitGram,
	NutrientMonounsaturatedFat: UnitGram,
	NutrientPolyunsaturatedFat: UnitGram,
	NutrientPUFA182:            UnitGram,
	NutrientPUFA183:            UnitGram,
	NutrientCholesterol:        UnitMilligram,
	NutrientCarbohydrates:      UnitGram,
	NutrientSugar:              UnitGram,
	NutrientFiber:              UnitGram,
	NutrientWater:              UnitGram,
	NutrientCaffeine:           UnitMilligram,
	NutrientCalcium:            UnitMilligram,
	NutrientIron:               UnitMilligram,
	NutrientMagnesium:          UnitMilligram,
	NutrientPhosphorus:         UnitMilligram,
	NutrientPotassium:          UnitMilligram,
	NutrientSodium:             UnitMilligram,
	NutrientZinc:               UnitMilligram,
	NutrientCopper:             UnitMilligram,
	NutrientManganese:          UnitMilligram,
	NutrientSelenium:           UnitMicrogram,
	NutrientVitaminA:           UnitMicrogram,
	NutrientThiamin:            UnitMilligram,
	NutrientRiboflavin:         UnitMilligram,
	NutrientNiacin:             UnitMilligram,
	NutrientVitaminB6:          UnitMilligram,
	NutrientFolate:             UnitMicrogram,
	NutrientVitaminB12:         UnitMicrogram,
	NutrientVitaminC:           UnitMilligram,
	NutrientVitaminD:           UnitMicrogram,
	NutrientVitaminE:           UnitMilligram,
	NutrientVitaminK:           UnitMicrogram,
}

// BaseUnit returns the unit nutrient values of this type are stored in.
func (n NutrientType) BaseUnit() Unit {
	if u, ok := nutrientBaseUnits[n]; ok {
		return u
	}
	return UnitGram
}
