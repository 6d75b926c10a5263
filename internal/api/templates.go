package api

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
)

var pageNames = []string{
	"index",
	"login",
	"done",
	"admin_index",
	"admin_user",
	"admin_product",
	"not_found",
}

// parsePages parses base.html once and clones it for every page, so each page
// gets its own "content" block on top of the shared layout.
func parsePages(templateDir string, funcMap template.FuncMap) (map[string]*template.Template, error) {
	base, err := template.New("base").Funcs(funcMap).ParseFiles(filepath.Join(templateDir, "base.html"))
	if err != nil {
		return nil, fmt.Errorf("parse base template: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		layout, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone base template for %s: %w", name, err)
		}
		page, err := layout.ParseFiles(filepath.Join(templateDir, name+".html"))
		if err != nil {
			return nil, fmt.Errorf("parse page template %s: %w", name, err)
		}
		pages[name] = page
	}
	return pages, nil
}

// render executes the page into a buffer first so a template error still
// produces a clean 500 instead of a half-written page.
func (handler *Handler) render(c *fiber.Ctx, name string, data fiber.Map) error {
	page, ok := handler.templates[name]
	if !ok {
		return fmt.Errorf("unknown page template %q", name)
	}

	var output bytes.Buffer
	if err := page.ExecuteTemplate(&output, "base", handler.withTemplateDefaults(c, data)); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	c.Type("html", "utf-8")
	return c.Send(output.Bytes())
}
