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

// Package fileset defines the fixed-key file mapping that constitutes one
// generated website. A FileSet is produced whole by either the AI extraction
// path or the deterministic fallback generator; the two sources are never
// merged.
package fileset

import (
	"fmt"
	"strings"
)

// Logical filenames of a generated website. The key set is fixed and known
// in advance; lookups for missing keys yield the empty string.
const (
	KeyHTML   = "index.html"
	KeyCSS    = "styles.css"
	KeyJS     = "app.js"
	KeyConfig = "netlify.toml"
)

// Keys lists the logical filenames in deterministic order.
var Keys = []string{KeyHTML, KeyCSS, KeyJS, KeyConfig}

// FileSet maps logical filenames to file contents.
type FileSet map[string]string

// New returns a FileSet with every known key present, defaulted to "".
func New() FileSet {
	fs := make(FileSet, len(Keys))
	for _, k := range Keys {
		fs[k] = ""
	}
	return fs
}

// Get returns the content for a key, or "" when absent.
func (fs FileSet) Get(key string) string {
	if fs == nil {
		return ""
	}
	return fs[key]
}

// HTML returns the index.html content.
func (fs FileSet) HTML() string { return fs.Get(KeyHTML) }

// Normalize fills in any missing known keys with empty strings so that
// downstream consumers can rely on the full key set being present.
func (fs FileSet) Normalize() FileSet {
	if fs == nil {
		return New()
	}
	for _, k := range Keys {
		if _, ok := fs[k]; !ok {
			fs[k] = ""
		}
	}
	return fs
}

// ValidateDocument checks that the HTML entry carries the markers of a
// complete document: a doctype declaration plus opening and closing
// structural tags. It is the shared definition of "renderable" used by both
// the response extractor and the orchestrator's output guarantee.
func (fs FileSet) ValidateDocument() error {
	html := strings.ToLower(fs.HTML())
	if strings.TrimSpace(html) == "" {
		return fmt.Errorf("index.html is empty")
	}
	if !strings.Contains(html, "<!doctype") {
		return fmt.Errorf("index.html missing doctype declaration")
	}
	if !strings.Contains(html, "<html") {
		return fmt.Errorf("index.html missing opening <html> tag")
	}
	if !strings.Contains(html, "</html>") {
		return fmt.Errorf("index.html missing closing </html> tag")
	}
	if !strings.Contains(html, "<body") {
		return fmt.Errorf("index.html missing <body> tag")
	}
	return nil
}

// Clone returns a deep copy. Callers that persist a FileSet and keep
// mutating the original should clone first.
func (fs FileSet) Clone() FileSet {
	out := make(FileSet, len(fs))
	for k, v := range fs {
		out[k] = v
	}
	return out
}
