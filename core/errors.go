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
	// ErrInvalidItem indicates an Item failed validation.
	ErrInvalidItem = errors.New("invalid item")

	// ErrInvalidEnrichment indicates an Enrichment failed validation.
	ErrInvalidEnrichment = errors.New("invalid enrichment")

	// ErrMissingUser indicates the UserId field is zero.
	ErrMissingUser = errors.New("user id is required")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrSummaryTooLong indicates the summary exceeds MaxSummaryLength.
	ErrSummaryTooLong = errors.New("summary too long")

	// ErrTooManyKeywords indicates the keyword list exceeds the configured limit.
	ErrTooManyKeywords = errors.New("too many keywords")

	// ErrScoreOutOfRange indicates a sentiment score outside [-1, 1].
	ErrScoreOutOfRange = errors.New("sentiment score out of range")

	// ErrUnknownEmotion indicates an emotion label outside the closed set.
	ErrUnknownEmotion = errors.New("unknown emotion")
)
