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
	"errors"
	"fmt"

	"github.com/mus-format/mus-go"
	"github.com/poiesic/memlane/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, n, err := core.IDMUS.Unmarshal(data)
	if err := decodeError("id", data, n, err); err != nil {
		return 0, err
	}
	return id, nil
}

// MarshalItem serializes an Item to bytes.
func MarshalItem(item *core.Item) []byte {
	buf := make([]byte, core.ItemMUS.Size(*item))
	core.ItemMUS.Marshal(*item, buf)
	return buf
}

// UnmarshalItem deserializes an Item from bytes.
func UnmarshalItem(data []byte) (*core.Item, error) {
	item, n, err := core.ItemMUS.Unmarshal(data)
	if err := decodeError("item", data, n, err); err != nil {
		return nil, err
	}
	return &item, nil
}

// decodeError classifies a mus decode result. Short input is reported as
// ErrTruncatedData, anything else that does not consume the whole value as
// ErrSerializationFailed. Both match ErrSerializationFailed.
func decodeError(what string, data []byte, n int, err error) error {
	switch {
	case err == nil && n == len(data):
		return nil
	case err == nil:
		return fmt.Errorf("%w: %s has %d trailing bytes", ErrSerializationFailed, what, len(data)-n)
	case len(data) == 0 || errors.Is(err, mus.ErrTooSmallByteSlice):
		return fmt.Errorf("%w: %w: %s: %w", ErrSerializationFailed, ErrTruncatedData, what, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrSerializationFailed, what, err)
	}
}
