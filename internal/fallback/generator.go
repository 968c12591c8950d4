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

// Package fallback deterministically synthesizes a complete, styled website
// from prompt keywords alone. It is the terminal safety net of the
// generation pipeline: no network, no randomness, total over all inputs.
package fallback

import (
	"fmt"
	"html"
	"strings"

	"github.com/your-org/code-weaver/internal/fileset"
)

// Generate builds a full FileSet from the prompt. The function is pure:
// identical prompts produce byte-identical output.
func Generate(prompt string) fileset.FileSet {
	cat := DetectCategory(prompt)
	name := ExtractSiteName(prompt, cat)

	fs := fileset.New()
	fs[fileset.KeyHTML] = renderHTML(name, cat)
	fs[fileset.KeyCSS] = renderCSS()
	fs[fileset.KeyJS] = renderJS()
	fs[fileset.KeyConfig] = renderNetlifyTOML()
	return fs
}

func renderHTML(name string, cat Category) string {
	esc := html.EscapeString
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html lang=\"en\">\n<head>\n")
	b.WriteString("    <meta charset=\"UTF-8\">\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&b, "    <title>%s | %s</title>\n", esc(name), esc(cat.Label))
	b.WriteString("    <link rel=\"stylesheet\" href=\"styles.css\">\n")
	b.WriteString("</head>\n<body>\n")

	// Navigation
	b.WriteString("    <header class=\"site-header\">\n")
	b.WriteString("        <nav class=\"nav container\">\n")
	fmt.Fprintf(&b, "            <a href=\"#home\" class=\"brand\">%s</a>\n", esc(name))
	b.WriteString("            <button class=\"menu-toggle\" aria-label=\"Toggle menu\" aria-expanded=\"false\">&#9776;</button>\n")
	b.WriteString("            <ul class=\"nav-links\">\n")
	b.WriteString("                <li><a href=\"#home\">Home</a></li>\n")
	b.WriteString("                <li><a href=\"#about\">About</a></li>\n")
	b.WriteString("                <li><a href=\"#services\">Services</a></li>\n")
	b.WriteString("                <li><a href=\"#contact\">Contact</a></li>\n")
	b.WriteString("            </ul>\n")
	b.WriteString("        </nav>\n")
	b.WriteString("    </header>\n\n")

	// Hero
	b.WriteString("    <section id=\"home\" class=\"hero\">\n")
	b.WriteString("        <div class=\"container\">\n")
	fmt.Fprintf(&b, "            <h1>%s</h1>\n", esc(name))
	fmt.Fprintf(&b, "            <p class=\"tagline\">%s</p>\n", esc(cat.Tagline))
	fmt.Fprintf(&b, "            <a href=\"#contact\" class=\"btn btn-primary\">%s</a>\n", esc(cat.CallToAct))
	b.WriteString("        </div>\n")
	b.WriteString("    </section>\n\n")

	// About
	b.WriteString("    <section id=\"about\" class=\"section about\">\n")
	b.WriteString("        <div class=\"container\">\n")
	fmt.Fprintf(&b, "            <h2>About %s</h2>\n", esc(name))
	fmt.Fprintf(&b, "            <p>%s</p>\n", esc(cat.About))
	b.WriteString("        </div>\n")
	b.WriteString("    </section>\n\n")

	// Services
	b.WriteString("    <section id=\"services\" class=\"section services\">\n")
	b.WriteString("        <div class=\"container\">\n")
	b.WriteString("            <h2>What We Offer</h2>\n")
	b.WriteString("            <div class=\"card-grid\">\n")
	for _, svc := range cat.Services {
		b.WriteString("                <div class=\"card\">\n")
		fmt.Fprintf(&b, "                    <h3>%s</h3>\n", esc(svc.Title))
		fmt.Fprintf(&b, "                    <p>%s</p>\n", esc(svc.Body))
		b.WriteString("                </div>\n")
	}
	b.WriteString("            </div>\n")
	b.WriteString("        </div>\n")
	b.WriteString("    </section>\n\n")

	// Contact
	b.WriteString("    <section id=\"contact\" class=\"section contact\">\n")
	b.WriteString("        <div class=\"container\">\n")
	b.WriteString("            <h2>Get in Touch</h2>\n")
	fmt.Fprintf(&b, "            <p>Ready to get started? Reach out and the %s team will get back to you.</p>\n", esc(name))
	b.WriteString("            <form class=\"contact-form\" action=\"#\" method=\"post\">\n")
	b.WriteString("                <input type=\"text\" name=\"name\" placeholder=\"Your name\" required>\n")
	b.WriteString("                <input type=\"email\" name=\"email\" placeholder=\"Your email\" required>\n")
	b.WriteString("                <textarea name=\"message\" rows=\"4\" placeholder=\"How can we help?\" required></textarea>\n")
	b.WriteString("                <button type=\"submit\" class=\"btn btn-primary\">Send Message</button>\n")
	b.WriteString("            </form>\n")
	b.WriteString("        </div>\n")
	b.WriteString("    </section>\n\n")

	// Footer
	b.WriteString("    <footer class=\"site-footer\">\n")
	b.WriteString("        <div class=\"container\">\n")
	fmt.Fprintf(&b, "            <p>%s &middot; %s</p>\n", esc(name), esc(cat.Label))
	b.WriteString("            <p class=\"fine-print\">Built with Code Weaver.</p>\n")
	b.WriteString("        </div>\n")
	b.WriteString("    </footer>\n\n")

	b.WriteString("    <script src=\"app.js\"></script>\n")
	b.WriteString("</body>\n</html>\n")

	return b.String()
}

func renderCSS() string {
	return `* {
    margin: 0;
    padding: 0;
    box-sizing: border-box;
}

:root {
    --primary: #667eea;
    --primary-dark: #764ba2;
    --text: #2d3142;
    --text-muted: #5c6370;
    --surface: #ffffff;
    --surface-alt: #f6f7fb;
}

body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
    color: var(--text);
    line-height: 1.6;
    background: var(--surface);
}

.container {
    max-width: 1080px;
    margin: 0 auto;
    padding: 0 20px;
}

.site-header {
    position: sticky;
    top: 0;
    z-index: 10;
    background: var(--surface);
    box-shadow: 0 1px 8px rgba(0, 0, 0, 0.08);
}

.nav {
    display: flex;
    align-items: center;
    justify-content: space-between;
    padding: 16px 20px;
}

.brand {
    font-size: 1.25rem;
    font-weight: 700;
    color: var(--text);
    text-decoration: none;
}

.menu-toggle {
    display: none;
    background: none;
    border: none;
    font-size: 1.5rem;
    cursor: pointer;
    color: var(--text);
}

.nav-links {
    display: flex;
    gap: 24px;
    list-style: none;
}

.nav-links a {
    color: var(--text-muted);
    text-decoration: none;
    font-weight: 500;
    transition: color 0.2s ease;
}

.nav-links a:hover {
    color: var(--primary);
}

.hero {
    background: linear-gradient(135deg, var(--primary) 0%, var(--primary-dark) 100%);
    color: white;
    text-align: center;
    padding: 110px 20px;
}

.hero h1 {
    font-size: 3rem;
    margin-bottom: 16px;
    animation: fadeInDown 0.8s ease;
}

.tagline {
    font-size: 1.25rem;
    opacity: 0.92;
    max-width: 640px;
    margin: 0 auto 32px;
}

.btn {
    display: inline-block;
    padding: 14px 36px;
    border: none;
    border-radius: 50px;
    font-size: 1rem;
    font-weight: 600;
    cursor: pointer;
    text-decoration: none;
    transition: transform 0.2s ease, box-shadow 0.2s ease;
}

.btn-primary {
    background: white;
    color: var(--primary-dark);
}

.section .btn-primary {
    background: linear-gradient(135deg, var(--primary) 0%, var(--primary-dark) 100%);
    color: white;
}

.btn:hover {
    transform: translateY(-2px);
    box-shadow: 0 10px 20px rgba(0, 0, 0, 0.15);
}

.section {
    padding: 80px 0;
}

.section h2 {
    font-size: 2rem;
    text-align: center;
    margin-bottom: 24px;
}

.about p {
    max-width: 720px;
    margin: 0 auto;
    text-align: center;
    color: var(--text-muted);
    font-size: 1.1rem;
}

.services {
    background: var(--surface-alt);
}

.card-grid {
    display: grid;
    grid-template-columns: repeat(auto-fit, minmax(280px, 1fr));
    gap: 24px;
    margin-top: 16px;
}

.card {
    background: var(--surface);
    padding: 32px;
    border-radius: 14px;
    box-shadow: 0 8px 30px rgba(0, 0, 0, 0.08);
    animation: fadeInUp 0.8s ease;
}

.card h3 {
    margin-bottom: 12px;
    color: var(--primary-dark);
}

.card p {
    color: var(--text-muted);
}

.contact-form {
    max-width: 520px;
    margin: 24px auto 0;
    display: grid;
    gap: 14px;
}

.contact-form input,
.contact-form textarea {
    padding: 14px 16px;
    border: 1px solid #d7dae2;
    border-radius: 10px;
    font-size: 1rem;
    font-family: inherit;
}

.contact-form input:focus,
.contact-form textarea:focus {
    outline: none;
    border-color: var(--primary);
}

.contact p {
    text-align: center;
    color: var(--text-muted);
}

.site-footer {
    background: var(--text);
    color: white;
    text-align: center;
    padding: 32px 20px;
}

.fine-print {
    opacity: 0.6;
    font-size: 0.875rem;
    margin-top: 8px;
}

@keyframes fadeInDown {
    from {
        opacity: 0;
        transform: translateY(-20px);
    }
    to {
        opacity: 1;
        transform: translateY(0);
    }
}

@keyframes fadeInUp {
    from {
        opacity: 0;
        transform: translateY(20px);
    }
    to {
        opacity: 1;
        transform: translateY(0);
    }
}

@media (max-width: 768px) {
    .hero h1 {
        font-size: 2rem;
    }

    .menu-toggle {
        display: block;
    }

    .nav-links {
        display: none;
        position: absolute;
        top: 100%;
        left: 0;
        right: 0;
        flex-direction: column;
        gap: 0;
        background: var(--surface);
        box-shadow: 0 8px 16px rgba(0, 0, 0, 0.1);
    }

    .nav-links.open {
        display: flex;
    }

    .nav-links li {
        border-top: 1px solid #eceef3;
    }

    .nav-links a {
        display: block;
        padding: 14px 20px;
    }
}
`
}

func renderJS() string {
	return `// Mobile menu toggle
const toggle = document.querySelector('.menu-toggle');
const links = document.querySelector('.nav-links');

if (toggle && links) {
    toggle.addEventListener('click', () => {
        const open = links.classList.toggle('open');
        toggle.setAttribute('aria-expanded', String(open));
    });
}

// Smooth scroll for in-page anchors
document.querySelectorAll('a[href^="#"]').forEach((anchor) => {
    anchor.addEventListener('click', (e) => {
        const target = document.querySelector(anchor.getAttribute('href'));
        if (target) {
            e.preventDefault();
            target.scrollIntoView({ behavior: 'smooth' });
            if (links) {
                links.classList.remove('open');
            }
        }
    });
});

// Contact form is a static placeholder until a backend is wired up
const form = document.querySelector('.contact-form');
if (form) {
    form.addEventListener('submit', (e) => {
        e.preventDefault();
        alert('Thanks for reaching out! We will get back to you soon.');
        form.reset();
    });
}
`
}

func renderNetlifyTOML() string {
	return `[build]
  publish = "."

[[redirects]]
  from = "/api/*"
  to = "/.netlify/functions/:splat"
  status = 200
`
}
