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
	"fmt"
	"strings"

	"github.com/your-org/code-weaver/internal/fileset"
	"github.com/your-org/code-weaver/internal/images"
)

// systemPrompt pins the model to the machine-readable contract the
// extractor parses. File contents are base64 so the model never has to
// escape HTML inside JSON strings.
const systemPrompt = `You are an expert web developer generating complete, production-quality websites.

Respond with a single JSON object and nothing else. No markdown fences, no prose before or after.

The JSON object must have this exact shape:
{
  "files": {
    "index.html": "<base64-encoded HTML>",
    "styles.css": "<base64-encoded CSS>",
    "app.js": "<base64-encoded JavaScript>",
    "netlify.toml": "<base64-encoded deploy config>"
  }
}

Every value under "files" must be the base64 encoding of the full file content.

Requirements for the generated site:
- index.html is a complete document: doctype, html, head, and body tags.
- Modern, responsive design that works on mobile and desktop.
- Real, specific copy for the business described. Never use lorem ipsum.
- styles.css holds all styling. app.js holds all behavior. No inline styles or scripts.
- Smooth scrolling navigation, a hero section, and a contact section.
- netlify.toml publishes the site root.`

// requirementHints maps prompt keywords to concrete checklist items that get
// appended to the user prompt. Matching is substring-based on the lowered
// prompt, same as the fallback category detector.
var requirementHints = []struct {
	keywords []string
	hint     string
}{
	{[]string{"menu", "restaurant", "cafe", "food"}, "Include a menu section with named dishes and prices."},
	{[]string{"gallery", "photo", "portfolio"}, "Include an image gallery or portfolio grid."},
	{[]string{"booking", "appointment", "reservation", "schedule"}, "Include a booking or appointment section with a form."},
	{[]string{"pricing", "price", "plans", "cost"}, "Include a pricing section with at least three tiers."},
	{[]string{"testimonial", "review"}, "Include a testimonials section with quoted customer reviews."},
	{[]string{"team", "staff", "about us"}, "Include a team or about section introducing the people."},
	{[]string{"contact", "email", "phone", "location", "address", "map"}, "Include a contact section with a form and business details."},
	{[]string{"faq", "question"}, "Include an FAQ section with expandable answers."},
	{[]string{"dark", "minimal", "modern", "elegant", "playful", "bold"}, "Match the visual style the prompt asks for throughout the design."},
}

// BuildUserPrompt assembles the user-role message: the request itself, a
// keyword-derived requirements checklist, curated image URLs when the image
// chain produced any, and the current files when editing an existing site.
func BuildUserPrompt(req GenerationRequest, imgs []images.Image) string {
	var b strings.Builder

	if req.EditMode && len(req.ExistingFiles) > 0 {
		b.WriteString("Update the existing website below according to this request:\n\n")
	} else {
		b.WriteString("Create a complete website for this request:\n\n")
	}
	b.WriteString(strings.TrimSpace(req.Prompt))
	b.WriteString("\n")

	if hints := collectHints(req.Prompt); len(hints) > 0 {
		b.WriteString("\nMake sure the site includes:\n")
		for _, h := range hints {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}

	if len(imgs) > 0 {
		b.WriteString("\nUse these image URLs in the design (hero, sections, gallery):\n")
		for _, img := range imgs {
			fmt.Fprintf(&b, "- %s (credit: %s via %s)\n", img.URL, img.Photographer, img.Source)
		}
	}

	if req.EditMode && len(req.ExistingFiles) > 0 {
		b.WriteString("\nCurrent site files follow. Preserve everything the request does not ask to change.\n")
		for _, key := range fileset.Keys {
			content := req.ExistingFiles.Get(key)
			if content == "" {
				continue
			}
			fmt.Fprintf(&b, "\n--- %s ---\n%s\n", key, content)
		}
	}

	return b.String()
}

func collectHints(prompt string) []string {
	p := strings.ToLower(prompt)
	var hints []string
	for _, rh := range requirementHints {
		for _, kw := range rh.keywords {
			if strings.Contains(p, kw) {
				hints = append(hints, rh.hint)
				break
			}
		}
	}
	return hints
}
