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


package ingest

import "regexp"

const (
	ssnPlaceholder  = "[REDACTED_SSN]"
	cardPlaceholder = "[REDACTED_CARD]"
)

var (
	ssnPattern  = regexp.MustCompile(`\d{3}-\d{2}-\d{4}`)
	cardPattern = regexp.MustCompile(`\d{16}`)
)

// Redact replaces SSN-shaped patterns (ddd-dd-dddd) and 16-digit runs with
// fixed placeholder tokens. This is best-effort pattern matching, not a
// guarantee of complete PII removal. Idempotent: placeholders contain no
// digits, so a second pass changes nothing.
func Redact(text string) string {
	text = ssnPattern.ReplaceAllString(text, ssnPlaceholder)
	text = cardPattern.ReplaceAllString(text, cardPlaceholder)
	return text
}
