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

package generator

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/your-org/code-weaver/internal/fileset"
	"github.com/your-org/code-weaver/internal/llm"
)

// ExtractFileSet turns a raw model response into a validated FileSet.
// Strategies are tried in order: strict JSON decode of the documented
// response shape, a quote-aware field scan for responses with mangled JSON
// framing, and finally lifting a bare HTML document out of the text. Any
// result whose HTML fails document validation is a parse failure, which the
// rotation policy counts against the attempt budget.
func ExtractFileSet(raw string) (fileset.FileSet, error) {
	body := stripFences(strings.TrimSpace(raw))
	if body == "" {
		return nil, llm.NewFailure(llm.FailureParse, "empty model response", nil)
	}

	if fs, ok := decodeStrict(body); ok {
		if err := fs.ValidateDocument(); err == nil {
			return fs, nil
		}
	}

	if fs, ok := scanFileFields(body); ok {
		if err := fs.ValidateDocument(); err == nil {
			return fs, nil
		}
	}

	if fs, ok := liftBareHTML(body); ok {
		if err := fs.ValidateDocument(); err == nil {
			return fs, nil
		}
	}

	return nil, llm.NewFailure(llm.FailureParse, "no valid website document in model response", nil)
}

// stripFences removes a single wrapping markdown code fence, which models
// add despite instructions often enough to handle unconditionally.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

type filesEnvelope struct {
	Files map[string]string `json:"files"`
}

// decodeStrict parses the documented {"files": {...}} envelope. The decoder
// tolerates leading or trailing prose by narrowing to the outermost braces.
func decodeStrict(body string) (fileset.FileSet, bool) {
	start := strings.IndexByte(body, '{')
	end := strings.LastIndexByte(body, '}')
	if start < 0 || end <= start {
		return nil, false
	}

	var env filesEnvelope
	if err := json.Unmarshal([]byte(body[start:end+1]), &env); err != nil {
		return nil, false
	}
	if len(env.Files) == 0 {
		return nil, false
	}

	fs := fileset.New()
	for key, value := range env.Files {
		fs[key] = decodeFileValue(value)
	}
	return fs.Normalize(), true
}

// decodeFileValue handles the base64 contract, falling back to the raw
// value for models that ignore the encoding instruction.
func decodeFileValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil || !utf8.Valid(decoded) {
		return value
	}
	return string(decoded)
}

// scanFileFields recovers file values from responses whose JSON framing is
// broken but whose "key": "value" pairs are intact. The value scan honors
// backslash escapes, so an embedded alt=\"hero\" does not end the value
// early the way a naive first-quote scan would.
func scanFileFields(body string) (fileset.FileSet, bool) {
	fs := fileset.New()
	found := false
	for _, key := range fileset.Keys {
		value, ok := scanQuotedField(body, key)
		if !ok {
			continue
		}
		fs[key] = decodeFileValue(value)
		found = true
	}
	if !found {
		return nil, false
	}
	return fs.Normalize(), true
}

// scanQuotedField locates `"key"` followed by a colon and decodes the JSON
// string value that follows. A truncated value with no closing quote is
// returned as-is; document validation decides whether the partial content
// is usable.
func scanQuotedField(body, key string) (string, bool) {
	marker := `"` + key + `"`
	idx := strings.Index(body, marker)
	if idx < 0 {
		return "", false
	}
	rest := body[idx+len(marker):]

	i := 0
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t' || rest[i] == '\n' || rest[i] == '\r') {
		i++
	}
	if i >= len(rest) || rest[i] != ':' {
		return "", false
	}
	i++
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t' || rest[i] == '\n' || rest[i] == '\r') {
		i++
	}
	if i >= len(rest) || rest[i] != '"' {
		return "", false
	}

	return decodeJSONString(rest[i+1:])
}

// decodeJSONString consumes a JSON string body starting just after the
// opening quote, stopping at the first unescaped closing quote.
func decodeJSONString(s string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			return b.String(), true
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			break
		}
		switch s[i] {
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case '/':
			b.WriteByte('/')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'u':
			if i+4 < len(s) {
				if code, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					r := rune(code)
					i += 4
					// Characters outside the BMP arrive as a surrogate
					// pair of \u escapes; combine them into one rune.
					if utf16.IsSurrogate(r) && i+6 < len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
						if low, err := strconv.ParseUint(s[i+3:i+7], 16, 32); err == nil {
							if combined := utf16.DecodeRune(r, rune(low)); combined != utf8.RuneError {
								r = combined
								i += 6
							}
						}
					}
					b.WriteRune(r)
					continue
				}
			}
			b.WriteByte('u')
		default:
			b.WriteByte(s[i])
		}
	}
	// Truncated response: hand back what was recovered.
	return b.String(), b.Len() > 0
}

// liftBareHTML extracts a standalone HTML document for models that answer
// with markup instead of the JSON envelope. CSS and JS stay empty; the
// document itself may inline them.
func liftBareHTML(body string) (fileset.FileSet, bool) {
	lower := lowerASCII(body)
	start := strings.Index(lower, "<!doctype")
	if start < 0 {
		start = strings.Index(lower, "<html")
	}
	if start < 0 {
		return nil, false
	}
	end := strings.LastIndex(lower, "</html>")
	if end < 0 || end < start {
		return nil, false
	}

	fs := fileset.New()
	fs[fileset.KeyHTML] = body[start : end+len("</html>")]
	return fs, true
}

// lowerASCII folds only A-Z. Unlike strings.ToLower it never changes the
// byte length, so indexes found in the result are valid in the original.
func lowerASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
