package search

import (
	"github.com/poiesic/nutridex/core"
)

// NutrientConstraint is a single structured condition extracted from the
// query, evaluated against item density (amount per 100 reference units).
// Thresholds are expressed in the nutrient's base unit.
type NutrientConstraint struct {
	Nutrient  core.NutrientType
	Operator  core.Operator
	Threshold float64
}

// ParsedQuery is the structured plan extracted from a free-text query.
// Anything the parser could not resolve structurally ends up in
// LexicalTokens.
type ParsedQuery struct {
	Raw               string
	LexicalTokens     []string
	Constraints       []NutrientConstraint
	RequiredDiets     []string
	ExcludedAllergens []core.Allergen

	// PHTarget is the requested pH class, zero when the query names none.
	// MentionsPH is set even for a bare "ph" mention so that callers can
	// surface pH in rendering without a class filter being active.
	PHTarget   core.PHClass
	MentionsPH bool

	// SortNutrient orders results by that nutrient's density when SortSet
	// is true. SortAscending flips the direction, as in "low sugar".
	SortNutrient  core.NutrientType
	SortSet       bool
	SortAscending bool
}

// HasStructure reports whether the query resolved to any structured
// condition at all.
func (p *ParsedQuery) HasStructure() bool {
	return len(p.Constraints) > 0 || len(p.RequiredDiets) > 0 ||
		len(p.ExcludedAllergens) > 0 || p.PHTarget != 0 || p.SortSet
}
