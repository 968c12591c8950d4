// Copyright 2025 Code Weaver Project
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

package fallback

import (
	"regexp"
	"strings"
)

// Name extraction patterns, tried in order. Quoted phrases are the most
// explicit signal, then "called X" / "named X", then "for X".
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`"([^"]{2,60})"`),
	regexp.MustCompile(`'([^']{2,60})'`),
	regexp.MustCompile(`(?i)\bcalled\s+([A-Z][\w&'-]*(?:\s+[A-Z][\w&'-]*){0,4})`),
	regexp.MustCompile(`(?i)\bnamed\s+([A-Z][\w&'-]*(?:\s+[A-Z][\w&'-]*){0,4})`),
	regexp.MustCompile(`(?i)\bfor\s+([A-Z][\w&'-]*(?:\s+[A-Z][\w&'-]*){0,4})`),
}

// trailingNoise strips filler that pattern capture tends to drag along.
var trailingNoise = regexp.MustCompile(`(?i)\s+(with|that|which|featuring|offering|in|on|and)\b.*$`)

// ExtractSiteName pulls a candidate site name out of the prompt, falling
// back to the category's generic name when nothing matches.
func ExtractSiteName(prompt string, cat Category) string {
	for _, pat := range namePatterns {
		m := pat.FindStringSubmatch(prompt)
		if len(m) < 2 {
			continue
		}
		name := strings.TrimSpace(trailingNoise.ReplaceAllString(m[1], ""))
		name = strings.Trim(name, ".,!? ")
		if isPlausibleName(name) {
			return name
		}
	}
	return cat.GenericName
}

// isPlausibleName rejects captures that are clearly sentence fragments
// rather than names.
func isPlausibleName(name string) bool {
	if len(name) < 2 || len(name) > 60 {
		return false
	}
	if strings.Count(name, " ") > 4 {
		return false
	}
	lower := strings.ToLower(name)
	for _, stop := range []string{"a ", "an ", "the website", "my ", "website", "site", "page", "me"} {
		if lower == strings.TrimSpace(stop) || strings.HasPrefix(lower, stop) {
			return false
		}
	}
	return true
}
