package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GoldmarkRenderer is the built-in renderer: it converts a tree of Markdown
// files into an HTML site with directory-index layout (guide.md becomes
// guide/index.html) so the edge resolver's rewrite rule lands on real keys.
// Non-Markdown files are copied through verbatim as static assets.
//
// It exists for sources with no site generator installed and for hermetic
// tests; production sites normally use the hugo renderer.
type GoldmarkRenderer struct {
	// SiteTitle is placed in each page's <title>, default "Documentation".
	SiteTitle string

	md    goldmark.Markdown
	caser cases.Caser
}

// NewGoldmarkRenderer creates a built-in Markdown renderer.
func NewGoldmarkRenderer(siteTitle string) *GoldmarkRenderer {
	if siteTitle == "" {
		siteTitle = "Documentation"
	}
	return &GoldmarkRenderer{
		SiteTitle: siteTitle,
		md:        goldmark.New(),
		caser:     cases.Title(language.English),
	}
}

// Render converts every .md file under sourceDir into HTML under outDir and
// copies all other files through unchanged.
func (r *GoldmarkRenderer) Render(ctx context.Context, sourceDir, outDir string) error {
	root := filepath.Clean(sourceDir)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path) // #nosec G304 - path from walking the source tree
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}

		if strings.EqualFold(filepath.Ext(rel), ".md") {
			return r.renderPage(outDir, rel, data)
		}
		return writeFile(filepath.Join(outDir, rel), data)
	})
}

func (r *GoldmarkRenderer) renderPage(outDir, rel string, src []byte) error {
	var body bytes.Buffer
	if err := r.md.Convert(src, &body); err != nil {
		return fmt.Errorf("render %s: %w", rel, err)
	}

	title := r.pageTitle(rel)
	var page bytes.Buffer
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s — %s</title>\n</head>\n<body>\n",
		html.EscapeString(title), html.EscapeString(r.SiteTitle))
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	return writeFile(filepath.Join(outDir, outputPath(rel)), page.Bytes())
}

// outputPath maps a markdown source path to its directory-index HTML key:
// index.md stays in place, anything else becomes <name>/index.html.
func outputPath(rel string) string {
	rel = filepath.ToSlash(rel)
	base := strings.TrimSuffix(rel, filepath.Ext(rel))
	if strings.EqualFold(filepath.Base(base), "index") || strings.EqualFold(filepath.Base(base), "readme") {
		return filepath.FromSlash(filepath.ToSlash(filepath.Dir(rel)) + "/index.html")
	}
	return filepath.FromSlash(base + "/index.html")
}

// pageTitle derives a display title from the file name: getting-started.md
// becomes "Getting Started".
func (r *GoldmarkRenderer) pageTitle(rel string) string {
	base := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	if strings.EqualFold(base, "index") || strings.EqualFold(base, "readme") {
		base = filepath.Base(filepath.Dir(rel))
		if base == "." || base == string(filepath.Separator) {
			base = "Home"
		}
	}
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return r.caser.String(base)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 - rendered site is public content
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	return abs, nil
}
