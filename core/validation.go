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


package core

import "fmt"

// ValidateFoodItem validates a FoodItem according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - ReferenceWeightG must not be negative (0 is allowed; the item is then
//     simply excluded from nutrient ranking)
//   - PH must be 0 (unknown) or within 0-14
//   - MinAgeMonths must be >= -1
//   - Every nutrient key must be a known NutrientType
//
// NOT validated:
//   - ID (0 is valid before the catalog assigns one)
//   - TokenCache (derived, may be empty)
func ValidateFoodItem(item *FoodItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidFoodItem)
	}

	if item.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFoodItem, ErrEmptyName)
	}

	if item.ReferenceWeightG < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidFoodItem, ErrInvalidReferenceWeight)
	}

	if item.PH < 0 || item.PH > 14 {
		return fmt.Errorf("%w: %w", ErrInvalidFoodItem, ErrInvalidPH)
	}

	if item.MinAgeMonths < -1 {
		return fmt.Errorf("%w: %w", ErrInvalidFoodItem, ErrInvalidAge)
	}

	for n := range item.Nutrients {
		if !n.IsValid() {
			return fmt.Errorf("%w: %w: %d", ErrInvalidFoodItem, ErrUnknownNutrient, n)
		}
	}

	return nil
}

// ValidateCompactItem validates a CompactItem before it enters the index.
//
// Validation rules:
//   - Name must not be empty
//   - ReferenceWeightG must not be negative
//   - NutrientValues must hold only strictly positive values for known types
func ValidateCompactItem(item *CompactItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidCompactItem)
	}

	if item.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCompactItem, ErrEmptyName)
	}

	if item.ReferenceWeightG < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCompactItem, ErrInvalidReferenceWeight)
	}

	for n, v := range item.NutrientValues {
		if !n.IsValid() {
			return fmt.Errorf("%w: %w: %d", ErrInvalidCompactItem, ErrUnknownNutrient, n)
		}
		if v <= 0 {
			return fmt.Errorf("%w: nutrient %s has non-positive value %g", ErrInvalidCompactItem, n, v)
		}
	}

	return nil
}
