package api

import (
	"html/template"
)

func newTemplateFuncMap() template.FuncMap {
	return template.FuncMap{
		"formatDate":  formatTemplateDate,
		"formatPrice": formatTemplatePrice,
		"t":           templateTranslate,
		"monthLabel":  templateMonthLabel,
		"styleClass":  templateStyleClass,
		"isActive":    isActiveTemplateRoute,
		"quantities":  templateQuantities,
		"dict":        templateDict,
	}
}
