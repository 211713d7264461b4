// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"context"
	"strconv"
	"strings"

	"github.com/poiesic/nutridex/core"
	"github.com/poiesic/nutridex/knowledge"
	"github.com/poiesic/nutridex/lexicon"
)

// maxSubjectSpan bounds multi-word subject lookahead ("vitamin c", "saturated
// fat").
const maxSubjectSpan = 3

// pendingConstraint accumulates the pieces of a nutrient condition as they
// appear, in either order ("protein > 20g" and ">20g protein" both work).
type pendingConstraint struct {
	nutrient    core.NutrientType
	hasNutrient bool
	op          core.Operator
	hasOp       bool
	value       float64
	hasValue    bool
	unit        core.Unit
	hasUnit     bool
	negated     bool
}

func (p *pendingConstraint) reset() {
	*p = pendingConstraint{}
}

// Parse extracts the structured plan from a free-text query. Resolution per
// term follows a strict precedence: literal operator symbol, operator
// phrase, comparative adjective, subject classification, semantic lexicon
// fallback, plain lexical token. Parsing never fails: unresolvable terms
// degrade to lexical tokens.
//
// The lexicon is optional; without it the semantic fallback step is skipped.
func Parse(ctx context.Context, query string, lex *lexicon.Lexicon) ParsedQuery {
	parsed := ParsedQuery{Raw: query}
	words := queryWords(query)

	var pending pendingConstraint
	negateNext := false

	for i := 0; i < len(words); i++ {
		word := words[i]

		// Literal operator symbol, possibly glued to a number (">20g").
		if op, rest, ok := knowledge.ParseOperatorSymbol(word); ok {
			pending.op, pending.hasOp = op, true
			if rest != "" {
				consumeNumber(&pending, rest)
			}
			continue
		}

		// Bare number, possibly with a glued unit ("20g", "0.5mg").
		if consumeNumber(&pending, word) {
			continue
		}

		// Unit word following a bare number ("20 grams").
		if unit, ok := knowledge.ParseUnit(word); ok && pending.hasValue && !pending.hasUnit {
			pending.unit, pending.hasUnit = unit, true
			continue
		}

		if op, span, ok := knowledge.MatchOperatorPhrase(words, i); ok {
			pending.op, pending.hasOp = op, true
			i += span - 1
			continue
		}

		// A standalone suffix negation ("sugar free") binds to the
		// nutrient already pending; elsewhere these words act as prefix
		// negations.
		if knowledge.IsSuffixNegation(word) && pending.hasNutrient {
			pending.negated = true
			continue
		}

		if knowledge.IsNegationTerm(word) {
			negateNext = true
			continue
		}

		if op, ok := knowledge.ComparativeAdjective(word); ok {
			pending.op, pending.hasOp = op, true
			continue
		}

		// Suffix negation fused into one word ("sugar-free", "sugarless").
		if trimmed, ok := knowledge.TrimSuffixNegation(word); ok {
			subject := knowledge.ClassifySubject(trimmed)
			if subject.Kind == knowledge.SubjectNutrient {
				flushConstraint(&parsed, &pending)
				parsed.Constraints = append(parsed.Constraints, NutrientConstraint{
					Nutrient:  subject.Nutrient,
					Operator:  core.OpLessOrEqual,
					Threshold: 0,
				})
				continue
			}
			if applyNegatedSubject(&parsed, subject, trimmed) {
				continue
			}
		}

		// Subject classification, longest span first.
		subject, span := classifySpan(words, i)
		term := strings.Join(words[i:i+span], " ")
		if subject.Kind == knowledge.SubjectUnknown && lex != nil {
			if match, ok, err := lex.BestMatch(ctx, word); err == nil && ok {
				subject = match.Entry.Subject
			}
		}

		switch subject.Kind {
		case knowledge.SubjectPH:
			parsed.MentionsPH = true
			if subject.PHClass != 0 {
				parsed.PHTarget = subject.PHClass
			}
			negateNext = false
		case knowledge.SubjectOperator:
			pending.op, pending.hasOp = subject.Operator, true
		case knowledge.SubjectNutrient:
			if pending.hasNutrient {
				flushConstraint(&parsed, &pending)
			}
			pending.nutrient, pending.hasNutrient = subject.Nutrient, true
			if negateNext {
				pending.negated = true
				negateNext = false
			}
		case knowledge.SubjectDiet:
			// A diet tag is a requirement whether or not it was negated:
			// "no gluten" and "gluten free" both mean the gluten-free tag.
			parsed.RequiredDiets = appendUnique(parsed.RequiredDiets, subject.Diet)
			negateNext = false
		case knowledge.SubjectAllergen:
			if negateNext {
				applyNegatedSubject(&parsed, subject, term)
				negateNext = false
			} else {
				// Without exclusion intent an allergen word is just a food
				// word ("peanut butter").
				parsed.LexicalTokens = appendTokens(parsed.LexicalTokens, term)
			}
		default:
			if negateNext {
				negateNext = false
				if applyNegatedSubject(&parsed, subject, term) {
					continue
				}
			}
			parsed.LexicalTokens = appendTokens(parsed.LexicalTokens, term)
		}
		if span > 1 {
			i += span - 1
		}
	}

	flushConstraint(&parsed, &pending)
	return parsed
}

// classifySpan resolves the longest subject starting at words[i]. Spans
// longer than one word only count on exact dictionary hits ("vitamin c",
// "gluten free"); the fuzzy subsequence policy applies to single words
// through ClassifySubject, so "banana water" stays two separate words.
func classifySpan(words []string, i int) (knowledge.Subject, int) {
	for span := maxSubjectSpan; span >= 2; span-- {
		if i+span > len(words) {
			continue
		}
		phrase := strings.Join(words[i:i+span], " ")
		if nutrient, ok := knowledge.ExactNutrientMatch(phrase); ok {
			return knowledge.Subject{Kind: knowledge.SubjectNutrient, Nutrient: nutrient}, span
		}
		if diet, ok := knowledge.DietMatch(phrase); ok {
			return knowledge.Subject{Kind: knowledge.SubjectDiet, Diet: diet}, span
		}
		if allergen, ok := knowledge.AllergenMatch(phrase); ok {
			return knowledge.Subject{Kind: knowledge.SubjectAllergen, Allergen: allergen}, span
		}
	}
	return knowledge.ClassifySubject(words[i]), 1
}

// applyNegatedSubject records the exclusion intent for a negated term:
// allergen terms exclude the allergen, and ingredient words imply a
// diet-restriction tag ("no eggs" requires the egg-free tag, not the absence
// of "egg" in the name).
func applyNegatedSubject(parsed *ParsedQuery, subject knowledge.Subject, word string) bool {
	applied := false
	if subject.Kind == knowledge.SubjectAllergen {
		parsed.ExcludedAllergens = appendUniqueAllergen(parsed.ExcludedAllergens, subject.Allergen)
		applied = true
	}
	if diet, ok := knowledge.InferDietFromIngredient(word); ok {
		parsed.RequiredDiets = appendUnique(parsed.RequiredDiets, diet)
		applied = true
	}
	return applied
}

// flushConstraint turns the pending pieces into a constraint or a sort
// emphasis and resets the accumulator.
func flushConstraint(parsed *ParsedQuery, pending *pendingConstraint) {
	defer pending.reset()
	if !pending.hasNutrient {
		return
	}

	if pending.negated {
		parsed.Constraints = append(parsed.Constraints, NutrientConstraint{
			Nutrient:  pending.nutrient,
			Operator:  core.OpLessOrEqual,
			Threshold: 0,
		})
		return
	}

	if pending.hasOp && pending.hasValue {
		threshold := pending.value
		if pending.hasUnit {
			if converted, ok := knowledge.ToBaseUnit(pending.value, pending.unit, pending.nutrient); ok {
				threshold = converted
			}
		}
		parsed.Constraints = append(parsed.Constraints, NutrientConstraint{
			Nutrient:  pending.nutrient,
			Operator:  pending.op,
			Threshold: threshold,
		})
		return
	}

	// A valueless comparative ("high protein", "low sugar") or a bare
	// nutrient mention orders results by that nutrient's density.
	if !parsed.SortSet {
		parsed.SortNutrient = pending.nutrient
		parsed.SortSet = true
		parsed.SortAscending = pending.hasOp &&
			(pending.op == core.OpLess || pending.op == core.OpLessOrEqual)
	}
	// Descending emphasis also requires the nutrient to be present at all.
	if !pending.hasOp || pending.op == core.OpGreater || pending.op == core.OpGreaterOrEqual {
		parsed.Constraints = append(parsed.Constraints, NutrientConstraint{
			Nutrient:  pending.nutrient,
			Operator:  core.OpGreater,
			Threshold: 0,
		})
	}
}

// consumeNumber parses a number with an optional glued unit suffix into the
// pending constraint. Returns false when the word is not numeric.
func consumeNumber(pending *pendingConstraint, word string) bool {
	digits := len(word)
	for j, r := range word {
		if (r < '0' || r > '9') && r != '.' {
			digits = j
			break
		}
	}
	if digits == 0 {
		return false
	}
	value, err := strconv.ParseFloat(word[:digits], 64)
	if err != nil {
		return false
	}
	pending.value, pending.hasValue = value, true
	if suffix := word[digits:]; suffix != "" {
		if unit, ok := knowledge.ParseUnit(suffix); ok {
			pending.unit, pending.hasUnit = unit, true
		}
	}
	return true
}

// queryWords lowercases and splits the query, trimming sentence punctuation
// but keeping operator symbols and glued units intact.
func queryWords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ",.?;()\"'")
		if f == "" {
			continue
		}
		words = append(words, f)
	}
	return words
}

func appendTokens(tokens []string, word string) []string {
	for token := range knowledge.MakeTokens(word) {
		tokens = appendUnique(tokens, token)
	}
	return tokens
}

func appendUnique(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}

func appendUniqueAllergen(list []core.Allergen, a core.Allergen) []core.Allergen {
	for _, have := range list {
		if have == a {
			return list
		}
	}
	return append(list, a)
}
