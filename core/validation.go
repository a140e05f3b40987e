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

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// ValidateItem validates an Item according to domain rules.
//
// Validation rules:
//   - UserId must be set
//   - CreatedAt must not be in the future
//   - the current enrichment must be valid
//
// NOT validated:
//   - ID (0 is valid until the repository assigns one)
//   - Content (empty captures are accepted and enrich to empty output)
func ValidateItem(item *Item) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidItem)
	}

	if item.UserId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrMissingUser)
	}

	if !item.CreatedAt.IsZero() && !IsValidTimestamp(item.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrInvalidTimestamp)
	}

	if err := ValidateEnrichment(item.Enrichment(), DefaultKeywordLimit); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}

	return nil
}

// ValidateEnrichment checks the enrichment invariants.
// An empty emotion is accepted; any other label must be in the closed set.
func ValidateEnrichment(e Enrichment, keywordLimit int) error {
	if utf8.RuneCountInString(e.Summary) > MaxSummaryLength {
		return fmt.Errorf("%w: %w", ErrInvalidEnrichment, ErrSummaryTooLong)
	}
	if len(e.Keywords) > keywordLimit {
		return fmt.Errorf("%w: %w (%d > %d)", ErrInvalidEnrichment, ErrTooManyKeywords, len(e.Keywords), keywordLimit)
	}
	if e.SentimentScore < -1 || e.SentimentScore > 1 {
		return fmt.Errorf("%w: %w: %f", ErrInvalidEnrichment, ErrScoreOutOfRange, e.SentimentScore)
	}
	if e.Emotion != "" {
		if _, ok := ParseEmotion(string(e.Emotion)); !ok {
			return fmt.Errorf("%w: %w: %q", ErrInvalidEnrichment, ErrUnknownEmotion, e.Emotion)
		}
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
