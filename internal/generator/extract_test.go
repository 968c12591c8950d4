package generator

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/code-weaver/internal/fileset"
	"github.com/your-org/code-weaver/internal/llm"
)

const validHTML = `<!DOCTYPE html>
<html lang="en">
<head><title>Iron Temple</title></head>
<body><img src="hero.jpg" alt="hero"><h1>Iron Temple</h1></body>
</html>`

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func envelopeJSON(html, css, js, toml string) string {
	return fmt.Sprintf(`{"files": {"index.html": %q, "styles.css": %q, "app.js": %q, "netlify.toml": %q}}`,
		b64(html), b64(css), b64(js), b64(toml))
}

func TestExtractFileSet_StrictEnvelope(t *testing.T) {
	raw := envelopeJSON(validHTML, "body{margin:0}", "console.log(1)", "[build]")

	fs, err := ExtractFileSet(raw)
	require.NoError(t, err)
	assert.Equal(t, validHTML, fs.HTML())
	assert.Equal(t, "body{margin:0}", fs.Get(fileset.KeyCSS))
	assert.Equal(t, "console.log(1)", fs.Get(fileset.KeyJS))
	assert.Equal(t, "[build]", fs.Get(fileset.KeyConfig))
}

func TestExtractFileSet_FencedEnvelope(t *testing.T) {
	raw := "```json\n" + envelopeJSON(validHTML, "", "", "") + "\n```"

	fs, err := ExtractFileSet(raw)
	require.NoError(t, err)
	assert.Equal(t, validHTML, fs.HTML())
}

func TestExtractFileSet_PlainTextValues(t *testing.T) {
	// Models that ignore the base64 instruction still get parsed.
	raw := fmt.Sprintf(`{"files": {"index.html": %q}}`, validHTML)

	fs, err := ExtractFileSet(raw)
	require.NoError(t, err)
	assert.Equal(t, validHTML, fs.HTML())
}

func TestExtractFileSet_SurroundingProse(t *testing.T) {
	raw := "Here is your website:\n" + envelopeJSON(validHTML, "", "", "") + "\nEnjoy!"

	fs, err := ExtractFileSet(raw)
	require.NoError(t, err)
	assert.Equal(t, validHTML, fs.HTML())
}

func TestExtractFileSet_RecoveryScanHonorsEscapedQuotes(t *testing.T) {
	// Broken framing: trailing garbage after the object makes strict JSON
	// fail, forcing the field scanner. The embedded alt=\"hero\" must not
	// end the value early.
	escaped := `<!DOCTYPE html>\n<html>\n<body><img src=\"x.jpg\" alt=\"hero\"><p>after the quote</p></body>\n</html>`
	raw := `{"files": {"index.html": "` + escaped + `", "styles.css": "body{}"` + "\x00 garbage tail"

	fs, err := ExtractFileSet(raw)
	require.NoError(t, err)
	assert.Contains(t, fs.HTML(), `alt="hero"`)
	assert.Contains(t, fs.HTML(), "after the quote")
	assert.Contains(t, fs.HTML(), "</html>")
}

func TestExtractFileSet_RecoveryScanDecodesEscapes(t *testing.T) {
	raw := `broken { "index.html": "<!DOCTYPE html>\n<html><body>\tTabbed A</body></html>"`

	fs, err := ExtractFileSet(raw)
	require.NoError(t, err)
	assert.Contains(t, fs.HTML(), "\tTabbed A")
}

func TestExtractFileSet_RecoveryScanDecodesSurrogatePairs(t *testing.T) {
	raw := `broken { "index.html": "<!DOCTYPE html>\n<html><body>\ud83d\ude00 Welcome</body></html>"`

	fs, err := ExtractFileSet(raw)
	require.NoError(t, err)
	assert.Contains(t, fs.HTML(), "\U0001F600 Welcome")
}

func TestExtractFileSet_BareHTMLAfterMultibytePreamble(t *testing.T) {
	// Preamble runes whose lowercase form is longer in UTF-8 must not skew
	// the document offsets; uppercase tags exercise the case folding.
	doc := "<!DOCTYPE HTML>\n<HTML>\n<BODY><h1>Iron Temple</h1></BODY>\n</HTML>"
	raw := strings.Repeat("Ⱥ", 100) + "\n" + doc + "\ntrailing prose"

	fs, err := ExtractFileSet(raw)
	require.NoError(t, err)
	assert.Equal(t, doc, fs.HTML())
}

func TestExtractFileSet_BareHTMLDocument(t *testing.T) {
	raw := "Sure! Here is the site:\n\n" + validHTML + "\n\nLet me know if you need changes."

	fs, err := ExtractFileSet(raw)
	require.NoError(t, err)
	assert.Equal(t, validHTML, fs.HTML())
	assert.Empty(t, fs.Get(fileset.KeyCSS))
}

func TestExtractFileSet_ParseFailures(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{"empty response", ""},
		{"whitespace only", "   \n\t"},
		{"prose without document", "I cannot generate that website."},
		{"incomplete document", `{"files": {"index.html": "` + b64("<html><body>no doctype</body></html>") + `"}}`},
		{"truncated before body", `{"files": {"index.html": "<!DOCTYPE html>\n<html><head>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractFileSet(tc.raw)
			require.Error(t, err)
			assert.Equal(t, llm.FailureParse, llm.KindOf(err))
		})
	}
}

func TestDecodeFileValue(t *testing.T) {
	assert.Equal(t, "<html>", decodeFileValue(b64("<html>")))
	assert.Equal(t, "<html>", decodeFileValue("<html>"))
	assert.Equal(t, "", decodeFileValue("  "))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
}
