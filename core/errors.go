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

import "errors"

// Domain validation errors
var (
	// ErrInvalidFoodItem indicates a FoodItem failed validation.
	ErrInvalidFoodItem = errors.New("invalid food item")

	// ErrInvalidCompactItem indicates a CompactItem failed validation.
	ErrInvalidCompactItem = errors.New("invalid compact item")

	// ErrEmptyName indicates the Name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrInvalidReferenceWeight indicates a negative reference weight.
	ErrInvalidReferenceWeight = errors.New("reference weight cannot be negative")

	// ErrUnknownNutrient indicates a nutrient value keyed by an unknown type.
	ErrUnknownNutrient = errors.New("unknown nutrient type")

	// ErrInvalidPH indicates a pH outside the 0-14 range.
	ErrInvalidPH = errors.New("ph must be between 0 and 14")

	// ErrInvalidAge indicates a minimum age below the -1 sentinel.
	ErrInvalidAge = errors.New("minimum age cannot be below -1")
)
