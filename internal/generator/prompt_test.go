package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/your-org/code-weaver/internal/fileset"
	"github.com/your-org/code-weaver/internal/images"
)

func TestBuildUserPrompt_CreateMode(t *testing.T) {
	got := BuildUserPrompt(GenerationRequest{Prompt: "a restaurant with a menu and booking"}, nil)

	assert.Contains(t, got, "Create a complete website")
	assert.Contains(t, got, "a restaurant with a menu and booking")
	assert.Contains(t, got, "menu section")
	assert.Contains(t, got, "booking or appointment")
	assert.NotContains(t, got, "Current site files")
}

func TestBuildUserPrompt_EditModeIncludesExistingFiles(t *testing.T) {
	existing := fileset.New()
	existing[fileset.KeyHTML] = "<!DOCTYPE html><html><body>old</body></html>"
	existing[fileset.KeyCSS] = "body{color:red}"

	got := BuildUserPrompt(GenerationRequest{
		Prompt:        "make the header blue",
		EditMode:      true,
		ExistingFiles: existing,
	}, nil)

	assert.Contains(t, got, "Update the existing website")
	assert.Contains(t, got, "--- index.html ---")
	assert.Contains(t, got, "body{color:red}")
	// Empty files are omitted from the context block.
	assert.NotContains(t, got, "--- app.js ---")
}

func TestBuildUserPrompt_ImageURLs(t *testing.T) {
	imgs := []images.Image{
		{URL: "https://img.example/1.jpg", Photographer: "Ada", Source: "Unsplash"},
	}

	got := BuildUserPrompt(GenerationRequest{Prompt: "a gym"}, imgs)

	assert.Contains(t, got, "https://img.example/1.jpg")
	assert.Contains(t, got, "Ada")
}

func TestCollectHints_NoDuplicatePerGroup(t *testing.T) {
	hints := collectHints("restaurant cafe food menu")

	var menuHints int
	for _, h := range hints {
		if strings.Contains(h, "menu section") {
			menuHints++
		}
	}
	assert.Equal(t, 1, menuHints)
}

func TestSystemPromptPinsContract(t *testing.T) {
	assert.Contains(t, systemPrompt, `"files"`)
	for _, key := range fileset.Keys {
		assert.Contains(t, systemPrompt, key)
	}
	assert.Contains(t, systemPrompt, "base64")
}
