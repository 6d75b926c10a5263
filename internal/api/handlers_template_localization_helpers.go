package api

import "time"

func templateTranslate(messages map[string]string, key string) string {
	return translateMessage(messages, key)
}

func templateMonthLabel(messages map[string]string, month time.Month) string {
	return localizedMonthName(messages, month)
}
