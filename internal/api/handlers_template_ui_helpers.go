package api

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/terraincognita07/drinktab/internal/models"
)

var styleClassSanitizer = regexp.MustCompile(`[^a-z0-9-]+`)

// templateStyleClass turns the free-form product style into a css modifier.
func templateStyleClass(style string) string {
	normalized := strings.ToLower(strings.TrimSpace(style))
	normalized = styleClassSanitizer.ReplaceAllString(normalized, "-")
	normalized = strings.Trim(normalized, "-")
	if normalized == "" {
		return "product"
	}
	return "product product-" + normalized
}

// isActiveTemplateRoute marks a nav link active for its own path and every
// path below it. "/" only matches the home page itself.
func isActiveTemplateRoute(currentPath string, route string) bool {
	path, _, _ := strings.Cut(strings.TrimSpace(currentPath), "?")
	if path == "" {
		path = "/"
	}
	if route == "/" {
		return path == "/"
	}
	return path == route || strings.HasPrefix(path, strings.TrimSuffix(route, "/")+"/")
}

func templateQuantities() []int {
	values := make([]int, 0, models.MaxQuantity-models.MinQuantity+1)
	for value := models.MinQuantity; value <= models.MaxQuantity; value++ {
		values = append(values, value)
	}
	return values
}

func templateDict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("dict requires key-value pairs")
	}
	result := make(map[string]any, len(values)/2)
	for index := 0; index < len(values); index += 2 {
		key, ok := values[index].(string)
		if !ok {
			return nil, fmt.Errorf("dict key at index %d is not a string", index)
		}
		result[key] = values[index+1]
	}
	return result, nil
}
