package api

import (
	"time"

	"github.com/terraincognita07/drinktab/internal/services"
)

func formatTemplateDate(value time.Time, layout string) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(layout)
}

func formatTemplatePrice(value float64) string {
	return services.FormatPrice(value)
}
