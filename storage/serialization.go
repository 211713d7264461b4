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


package storage

import (
	"fmt"

	"github.com/poiesic/nutridex/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalFoodItem serializes a FoodItem to bytes.
func MarshalFoodItem(item *core.FoodItem) []byte {
	buf := make([]byte, core.FoodItemMUS.Size(*item))
	core.FoodItemMUS.Marshal(*item, buf)
	return buf
}

// UnmarshalFoodItem deserializes a FoodItem from bytes.
func UnmarshalFoodItem(data []byte) (*core.FoodItem, error) {
	item, _, err := core.FoodItemMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &item, nil
}

// MarshalCacheRecord serializes a CacheRecord to bytes.
func MarshalCacheRecord(record *core.CacheRecord) []byte {
	buf := make([]byte, core.CacheRecordMUS.Size(*record))
	core.CacheRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalCacheRecord deserializes a CacheRecord from bytes.
func UnmarshalCacheRecord(data []byte) (*core.CacheRecord, error) {
	record, _, err := core.CacheRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}
