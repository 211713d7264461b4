package knowledge

import (
	"strings"

	"github.com/poiesic/nutridex/core"
)

// Diet tag names as stored on items. Kept as plain strings for
// serialization stability.
const (
	DietVegan       = "vegan"
	DietVegetarian  = "vegetarian"
	DietPescatarian = "pescatarian"
	DietGlutenFree  = "glutenFree"
	DietLactoseFree = "lactoseFree"
	DietDairyFree   = "dairyFree"
	DietEggFree     = "eggFree"
	DietNutFree     = "nutFree"
	DietSoyFree     = "soyFree"
	DietSugarFree   = "sugarFree"
	DietLowCarb     = "lowCarb"
	DietKeto        = "keto"
	DietPaleo       = "paleo"
	DietHalal       = "halal"
	DietKosher      = "kosher"
)

// KnownDiets lists every recognized diet tag.
var KnownDiets = []string{
	DietVegan, DietVegetarian, DietPescatarian, DietGlutenFree,
	DietLactoseFree, DietDairyFree, DietEggFree, DietNutFree, DietSoyFree,
	DietSugarFree, DietLowCarb, DietKeto, DietPaleo, DietHalal, DietKosher,
}

// nutrientMap maps literal phrases to nutrient types. Keys cover both
// natural user phrasing ("vitamin c") and catalog header spellings
// ("vitamin c, total ascorbic acid"). Lookups go through
// NormalizeNutrientKey, so separators and casing do not matter.
var nutrientMap = map[string]core.NutrientType{
	"calories":                      core.NutrientEnergy,
	"energy":                        core.NutrientEnergy,
	"kcal":                          core.NutrientEnergy,
	"protein":                       core.NutrientProtein,
	"fat":                           core.NutrientTotalFat,
	"total fat":                     core.NutrientTotalFat,
	"total lipid fat":               core.NutrientTotalFat,
	"saturated fat":                 core.NutrientSaturatedFat,
	"fatty acids total saturated":   core.NutrientSaturatedFat,
	"monounsaturated fat":           core.NutrientMonounsaturatedFat,
	"mufa":                          core.NutrientMonounsaturatedFat,
	"polyunsaturated fat":           core.NutrientPolyunsaturatedFat,
	"pufa":                          core.NutrientPolyunsaturatedFat,
	"pufa 18:2":                     core.NutrientPUFA182,
	"pufa 18:2, linoleic acid":      core.NutrientPUFA182,
	"linoleic acid":                 core.NutrientPUFA182,
	"pufa 18:3":                     core.NutrientPUFA183,
	"alpha-linolenic acid":          core.NutrientPUFA183,
	"cholesterol":                   core.NutrientCholesterol,
	"carbohydrates":                 core.NutrientCarbohydrates,
	"carbs":                         core.NutrientCarbohydrates,
	"carbohydrate, by difference":   core.NutrientCarbohydrates,
	"sugar":                         core.NutrientSugar,
	"sugars":                        core.NutrientSugar,
	"sugars, total including nlea":  core.NutrientSugar,
	"fiber":                         core.NutrientFiber,
	"fibre":                         core.NutrientFiber,
	"fiber, total dietary":          core.NutrientFiber,
	"water":                         core.NutrientWater,
	"caffeine":                      core.NutrientCaffeine,
	"calcium":                       core.NutrientCalcium,
	"calcium, ca":                   core.NutrientCalcium,
	"iron":                          core.NutrientIron,
	"iron, fe":                      core.NutrientIron,
	"magnesium":                     core.NutrientMagnesium,
	"magnesium, mg":                 core.NutrientMagnesium,
	"phosphorus":                    core.NutrientPhosphorus,
	"phosphorus, p":                 core.NutrientPhosphorus,
	"potassium":                     core.NutrientPotassium,
	"potassium, k":                  core.NutrientPotassium,
	"sodium":                        core.NutrientSodium,
	"sodium, na":                    core.NutrientSodium,
	"salt":                          core.NutrientSodium,
	"zinc":                          core.NutrientZinc,
	"zinc, zn":                      core.NutrientZinc,
	"copper":                        core.NutrientCopper,
	"copper, cu":                    core.NutrientCopper,
	"manganese":                     core.NutrientManganese,
	"manganese, mn":                 core.NutrientManganese,
	"selenium":                      core.NutrientSelenium,
	"selenium, se":                  core.NutrientSelenium,
	"vitamin a":                     core.NutrientVitaminA,
	"vitamin a, rae":                core.NutrientVitaminA,
	"retinol":                       core.NutrientVitaminA,
	"thiamin":                       core.NutrientThiamin,
	"vitamin b1":                    core.NutrientThiamin,
	"riboflavin":                    core.NutrientRiboflavin,
	"vitamin b2":                    core.NutrientRiboflavin,
	"niacin":                        core.NutrientNiacin,
	"vitamin b3":                    core.NutrientNiacin,
	"vitamin b6":                    core.NutrientVitaminB6,
	"folate":                        core.NutrientFolate,
	"folate, total":                 core.NutrientFolate,
	"folic acid":                    core.NutrientFolate,
	"vitamin b12":                   core.NutrientVitaminB12,
	"cobalamin":                     core.NutrientVitaminB12,
	"vitamin c":                     core.NutrientVitaminC,
	"vitamin c, total ascorbic acid": core.NutrientVitaminC,
	"ascorbic acid":                 core.NutrientVitaminC,
	"vitamin d":                     core.NutrientVitaminD,
	"vitamin d (d2 + d3)":           core.NutrientVitaminD,
	"vitamin e":                     core.NutrientVitaminE,
	"vitamin e (alpha-tocopherol)":  core.NutrientVitaminE,
	"vitamin k":                     core.NutrientVitaminK,
	"vitamin k (phylloquinone)":     core.NutrientVitaminK,
}

// dietMap maps literal phrases to diet tags.
var dietMap = map[string]string{
	"vegan":        DietVegan,
	"plant based":  DietVegan,
	"vegetarian":   DietVegetarian,
	"veggie":       DietVegetarian,
	"pescatarian":  DietPescatarian,
	"gluten free":  DietGlutenFree,
	"lactose free": DietLactoseFree,
	"dairy free":   DietDairyFree,
	"egg free":     DietEggFree,
	"nut free":     DietNutFree,
	"soy free":     DietSoyFree,
	"sugar free":   DietSugarFree,
	"low carb":     DietLowCarb,
	"keto":         DietKeto,
	"ketogenic":    DietKeto,
	"paleo":        DietPaleo,
	"halal":        DietHalal,
	"kosher":       DietKosher,
}

// allergenKeywords expands each allergen into its natural-language synonyms.
// The allergen's own name is added as a fallback key at init.
var allergenKeywords = map[core.Allergen][]string{
	core.AllergenMilk:      {"dairy", "cheese", "lactose", "cream", "yogurt", "butter", "whey", "casein"},
	core.AllergenEgg:       {"eggs", "albumin", "mayonnaise", "mayo"},
	core.AllergenFish:      {"salmon", "tuna", "cod", "anchovy", "sardine"},
	core.AllergenShellfish: {"shrimp", "prawn", "crab", "lobster", "crayfish"},
	core.AllergenTreeNut:   {"tree nut", "nut", "nuts", "almond", "walnut", "cashew", "hazelnut", "pecan", "pistachio", "macadamia"},
	core.AllergenPeanut:    {"peanuts", "groundnut"},
	core.AllergenWheat:     {"gluten", "flour", "spelt", "rye", "barley"},
	core.AllergenSoy:       {"soya", "tofu", "edamame", "soybean"},
	core.AllergenSesame:    {"tahini", "sesame seed"},
	core.AllergenCelery:    {"celeriac"},
	core.AllergenMustard:   {},
	core.AllergenSulphite:  {"sulfite", "sulphites", "sulfites"},
	core.AllergenLupin:     {"lupine"},
	core.AllergenMollusc:   {"mussel", "oyster", "squid", "clam", "scallop", "octopus"},
}

// allergenAliasMap is the expanded alias table, keyed by normalized phrase.
// Built at init from allergenKeywords plus each enum's raw name.
var allergenAliasMap map[string]core.Allergen

// ingredientDietMap lets raw ingredient words imply a diet-restriction tag
// even when the user never typed a diet word: "no eggs" excludes items
// lacking the egg-free tag, not just items whose name contains "egg".
var ingredientDietMap = map[string]string{
	"egg":     DietEggFree,
	"eggs":    DietEggFree,
	"gluten":  DietGlutenFree,
	"wheat":   DietGlutenFree,
	"milk":    DietDairyFree,
	"dairy":   DietDairyFree,
	"lactose": DietLactoseFree,
	"nut":     DietNutFree,
	"nuts":    DietNutFree,
	"peanut":  DietNutFree,
	"peanuts": DietNutFree,
	"soy":     DietSoyFree,
	"sugar":   DietSugarFree,
	"meat":    DietVegetarian,
}

// phKeywords trigger pH-subject classification. Checked before nutrients
// because "acid" and "base" are ordinary English words.
var phKeywords = map[string]core.PHClass{
	"ph":       0, // bare "ph" has no class of its own
	"acid":     core.PHAcidic,
	"acidic":   core.PHAcidic,
	"sour":     core.PHAcidic,
	"alkaline": core.PHAlkaline,
	"basic":    core.PHAlkaline,
	"base":     core.PHAlkaline,
	"neutral":  core.PHNeutral,
}

// operatorPhrases maps multi-word comparison phrases to operators. Keys are
// normalized with NormalizeKey.
var operatorPhrases = map[string]core.Operator{
	"at least":     core.OpGreaterOrEqual,
	"no less than": core.OpGreaterOrEqual,
	"minimum":      core.OpGreaterOrEqual,
	"at most":      core.OpLessOrEqual,
	"no more than": core.OpLessOrEqual,
	"maximum":      core.OpLessOrEqual,
	"up to":        core.OpLessOrEqual,
	"under":        core.OpLess,
	"below":        core.OpLess,
	"less than":    core.OpLess,
	"fewer than":   core.OpLess,
	"over":         core.OpGreater,
	"above":        core.OpGreater,
	"more than":    core.OpGreater,
	"exactly":      core.OpEqual,
	"equal to":     core.OpEqual,
	"not equal to": core.OpNotEqual,
}

// comparativeAdjectives normalize bare comparatives into operators.
var comparativeAdjectives = map[string]core.Operator{
	"less":  core.OpLess,
	"fewer": core.OpLess,
	"low":   core.OpLess,
	"more":  core.OpGreater,
	"high":  core.OpGreater,
	"rich":  core.OpGreater,
}

// operatorSymbols recognizes literal symbol forms. Two-character symbols
// must be checked before their one-character prefixes.
var operatorSymbols = []struct {
	symbol string
	op     core.Operator
}{
	{"<=", core.OpLessOrEqual},
	{">=", core.OpGreaterOrEqual},
	{"!=", core.OpNotEqual},
	{"<", core.OpLess},
	{">", core.OpGreater},
	{"=", core.OpEqual},
}

// negationTerms resolve to an exclusion intent on the following subject.
var negationTerms = map[string]struct{}{
	"no": {}, "without": {}, "free": {}, "non": {}, "except": {},
	"zero": {}, "avoid": {}, "exclude": {}, "excluding": {}, "skip": {},
	"omit": {},
}

// suffixNegations resolve to an exclusion intent on the preceding subject,
// as in "sugar-free" or "sugarless".
var suffixNegations = map[string]struct{}{
	"free": {}, "zero": {}, "less": {},
}

// Normalized lookup tables, built once at init.
var (
	normalizedNutrientKeys map[string]nutrientKey
	normalizedDietMap      map[string]string
	normalizedAllergenMap  map[string]core.Allergen
)

type nutrientKey struct {
	nutrient core.NutrientType
	keyLen   int // length of the original dictionary key, for tie-breaking
}

func init() {
	normalizedNutrientKeys = make(map[string]nutrientKey, len(nutrientMap))
	for key, nutrient := range nutrientMap {
		norm := NormalizeNutrientKey(key)
		// Longer original keys win when two spellings normalize identically.
		if existing, ok := normalizedNutrientKeys[norm]; ok && existing.keyLen >= len(key) {
			continue
		}
		normalizedNutrientKeys[norm] = nutrientKey{nutrient: nutrient, keyLen: len(key)}
	}

	normalizedDietMap = make(map[string]string, len(dietMap))
	for key, diet := range dietMap {
		normalizedDietMap[NormalizeNutrientKey(key)] = diet
	}

	normalizedAllergenMap = make(map[string]core.Allergen, len(core.AllAllergens))
	allergenAliasMap = make(map[string]core.Allergen)
	for _, allergen := range core.AllAllergens {
		normalizedAllergenMap[NormalizeNutrientKey(allergen.String())] = allergen
		for _, keyword := range allergenKeywords[allergen] {
			allergenAliasMap[NormalizeNutrientKey(keyword)] = allergen
		}
	}
}

// BestNutrientMatch finds the nutrient whose dictionary key is the longest
// contiguous token subsequence of the phrase. An exact full-phrase match
// short-circuits. Ties between keys spanning the same number of phrase
// tokens are broken by key string length. Returns false when nothing in the
// phrase names a nutrient.
func BestNutrientMatch(phrase string) (core.NutrientType, bool) {
	if exact, ok := normalizedNutrientKeys[NormalizeNutrientKey(phrase)]; ok {
		return exact.nutrient, true
	}

	tokens := splitWords(phrase)
	if len(tokens) == 0 {
		return 0, false
	}

	var (
		best      core.NutrientType
		bestSpan  int
		bestKey   int
		found     bool
	)
	for span := len(tokens); span >= 1; span-- {
		for start := 0; start+span <= len(tokens); start++ {
			candidate := NormalizeNutrientKey(strings.Join(tokens[start:start+span], ""))
			entry, ok := normalizedNutrientKeys[candidate]
			if !ok {
				continue
			}
			if !found || span > bestSpan || (span == bestSpan && entry.keyLen > bestKey) {
				best = entry.nutrient
				bestSpan = span
				bestKey = entry.keyLen
				found = true
			}
		}
		if found {
			// No shorter span can beat a match at this span.
			break
		}
	}
	return best, found
}

// ExactNutrientMatch resolves a phrase only on an exact normalized
// dictionary key, with no contiguous-subsequence fallback. Query parsing
// uses this for multi-word lookahead so a nutrient word cannot swallow its
// neighbors.
func ExactNutrientMatch(phrase string) (core.NutrientType, bool) {
	entry, ok := normalizedNutrientKeys[NormalizeNutrientKey(phrase)]
	return entry.nutrient, ok
}

// DietMatch resolves a phrase to a diet tag.
func DietMatch(phrase string) (string, bool) {
	diet, ok := normalizedDietMap[NormalizeNutrientKey(phrase)]
	return diet, ok
}

// AllergenMatch resolves a phrase to an allergen. The alias map is consulted
// first, then the base map of enum names.
func AllergenMatch(phrase string) (core.Allergen, bool) {
	norm := NormalizeNutrientKey(phrase)
	if allergen, ok := allergenAliasMap[norm]; ok {
		return allergen, true
	}
	allergen, ok := normalizedAllergenMap[norm]
	return allergen, ok
}

// InferDietFromIngredient maps a raw ingredient word to the diet tag its
// exclusion implies.
func InferDietFromIngredient(word string) (string, bool) {
	diet, ok := ingredientDietMap[NormalizeNutrientKey(word)]
	return diet, ok
}

// PHKeyword resolves a word to a pH class. The second return is true for any
// pH-related word including bare "ph", which carries no class.
func PHKeyword(word string) (core.PHClass, bool) {
	class, ok := phKeywords[NormalizeNutrientKey(word)]
	return class, ok
}

// SubjectKind discriminates what a query term refers to.
type SubjectKind int

const (
	// SubjectUnknown marks terms that resolve to nothing structured; they are
	// treated as plain lexical tokens.
	SubjectUnknown SubjectKind = iota
	// SubjectPH marks pH-related terms.
	SubjectPH
	// SubjectNutrient marks nutrient terms.
	SubjectNutrient
	// SubjectDiet marks diet-tag terms.
	SubjectDiet
	// SubjectAllergen marks allergen terms.
	SubjectAllergen
	// SubjectOperator marks comparison-operator phrases. Only produced for
	// lexicon entries; ClassifySubject itself never returns it.
	SubjectOperator
)

// Subject is the classification of a query term.
type Subject struct {
	Kind     SubjectKind
	Nutrient core.NutrientType
	Diet     string
	Allergen core.Allergen
	PHClass  core.PHClass // zero when the term was bare "ph"
	Operator core.Operator
}

// ClassifySubject is the single authoritative classifier for query subjects.
// Precedence is strict: pH keyword first, then nutrient fuzzy match, then
// diet, then allergen. Anything else is unknown and degrades to a plain
// lexical token.
func ClassifySubject(raw string) Subject {
	words := splitWords(raw)
	for _, word := range words {
		if class, ok := PHKeyword(word); ok {
			return Subject{Kind: SubjectPH, PHClass: class}
		}
	}

	if nutrient, ok := BestNutrientMatch(raw); ok {
		return Subject{Kind: SubjectNutrient, Nutrient: nutrient}
	}

	if diet, ok := DietMatch(raw); ok {
		return Subject{Kind: SubjectDiet, Diet: diet}
	}

	if allergen, ok := AllergenMatch(raw); ok {
		return Subject{Kind: SubjectAllergen, Allergen: allergen}
	}

	return Subject{Kind: SubjectUnknown}
}

// MatchOperatorPhrase tries to match an operator phrase starting at words[i],
// longest phrase first. Returns the operator and the number of words
// consumed.
func MatchOperatorPhrase(words []string, i int) (core.Operator, int, bool) {
	for span := 3; span >= 1; span-- {
		if i+span > len(words) {
			continue
		}
		phrase := strings.Join(words[i:i+span], " ")
		if op, ok := operatorPhrases[phrase]; ok {
			return op, span, true
		}
	}
	return 0, 0, false
}

// ComparativeAdjective resolves a bare comparative word to an operator.
func ComparativeAdjective(word string) (core.Operator, bool) {
	op, ok := comparativeAdjectives[strings.ToLower(word)]
	return op, ok
}

// ParseOperatorSymbol recognizes a literal operator symbol at the start of
// the string, returning the operator and the remaining text.
func ParseOperatorSymbol(s string) (core.Operator, string, bool) {
	for _, candidate := range operatorSymbols {
		if strings.HasPrefix(s, candidate.symbol) {
			return candidate.op, s[len(candidate.symbol):], true
		}
	}
	return 0, s, false
}

// IsNegationTerm reports whether the word signals exclusion of the following
// subject.
func IsNegationTerm(word string) bool {
	_, ok := negationTerms[strings.ToLower(word)]
	return ok
}

// IsSuffixNegation reports whether the word negates the preceding subject,
// as the "free" in "sugar-free".
func IsSuffixNegation(word string) bool {
	_, ok := suffixNegations[strings.ToLower(word)]
	return ok
}

// TrimSuffixNegation strips a suffix negation from a single word, returning
// the subject part: "sugarfree" becomes "sugar". Returns false when the word
// carries no such suffix.
func TrimSuffixNegation(word string) (string, bool) {
	lower := strings.ToLower(word)
	for suffix := range suffixNegations {
		if trimmed, ok := strings.CutSuffix(lower, suffix); ok && trimmed != "" {
			return trimmed, true
		}
	}
	return word, false
}

// Phrase pairs an ontology phrase with its resolved meaning. The semantic
// lexicon embeds every Phrase so that near-miss query terms can fall back to
// the closest known concept.
type Phrase struct {
	Text    string
	Subject Subject
}

// AllPhrases returns every literal phrase across the nutrient, diet,
// allergen and operator tables with its resolved subject.
func AllPhrases() []Phrase {
	phrases := make([]Phrase, 0, len(nutrientMap)+len(dietMap)+len(operatorPhrases)+64)
	for key, nutrient := range nutrientMap {
		phrases = append(phrases, Phrase{
			Text:    key,
			Subject: Subject{Kind: SubjectNutrient, Nutrient: nutrient},
		})
	}
	for key, diet := range dietMap {
		phrases = append(phrases, Phrase{
			Text:    key,
			Subject: Subject{Kind: SubjectDiet, Diet: diet},
		})
	}
	for _, allergen := range core.AllAllergens {
		phrases = append(phrases, Phrase{
			Text:    allergen.String(),
			Subject: Subject{Kind: SubjectAllergen, Allergen: allergen},
		})
		for _, keyword := range allergenKeywords[allergen] {
			phrases = append(phrases, Phrase{
				Text:    keyword,
				Subject: Subject{Kind: SubjectAllergen, Allergen: allergen},
			})
		}
	}
	for key, op := range operatorPhrases {
		phrases = append(phrases, Phrase{
			Text:    key,
			Subject: Subject{Kind: SubjectOperator, Operator: op},
		})
	}
	return phrases
}
