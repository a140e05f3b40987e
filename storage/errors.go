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

import "errors"

// Sentinel errors shared by the storage backends. Wrapped errors keep these
// as their chain root so callers can test with errors.Is.
var (
	// ErrNotFound is returned when an item does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when a new item would overwrite an
	// existing one.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrTransactionFailed wraps a commit failure.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrStorageClosed is returned by repository calls made after the
	// backend was closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidQuery rejects malformed query parameters.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrSerializationFailed is returned when a stored value cannot be
	// decoded.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrTruncatedData marks a stored value that ends before decoding
	// completes. It is always reported alongside ErrSerializationFailed.
	ErrTruncatedData = errors.New("truncated data")
)
