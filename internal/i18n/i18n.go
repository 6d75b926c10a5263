package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	LangEN = "en"
	LangPT = "pt"
)

var requiredLanguages = []string{LangEN, LangPT}

// Manager holds one message catalog per language. Catalogs are merged with
// the default language at load time, so a key missing from a translation
// falls back to the default text. Returned maps are shared and read-only.
type Manager struct {
	defaultLanguage string
	catalogs        map[string]map[string]string
	supported       []string
}

func NewManager(defaultLanguage string, localesDir string) (*Manager, error) {
	raw, err := loadLocales(localesDir)
	if err != nil {
		return nil, err
	}
	for _, required := range requiredLanguages {
		if _, ok := raw[required]; !ok {
			return nil, fmt.Errorf("required locale %q missing", required)
		}
	}

	manager := &Manager{catalogs: make(map[string]map[string]string, len(raw))}
	for language := range raw {
		manager.supported = append(manager.supported, language)
	}
	sort.Strings(manager.supported)

	manager.defaultLanguage = LangEN
	if tag := normalizeLanguageTag(defaultLanguage); tag != "" {
		if _, ok := raw[tag]; ok {
			manager.defaultLanguage = tag
		}
	}

	fallback := raw[manager.defaultLanguage]
	for language, messages := range raw {
		merged := make(map[string]string, len(fallback)+len(messages))
		for key, value := range fallback {
			merged[key] = value
		}
		for key, value := range messages {
			if strings.TrimSpace(value) != "" {
				merged[key] = value
			}
		}
		manager.catalogs[language] = merged
	}
	return manager, nil
}

func loadLocales(localesDir string) (map[string]map[string]string, error) {
	entries, err := os.ReadDir(localesDir)
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}

	locales := map[string]map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		language := strings.ToLower(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		content, err := os.ReadFile(filepath.Join(localesDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", language, err)
		}

		messages := map[string]string{}
		if err := json.Unmarshal(content, &messages); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", language, err)
		}
		if len(messages) == 0 {
			return nil, fmt.Errorf("locale %s is empty", language)
		}
		locales[language] = messages
	}

	if len(locales) == 0 {
		return nil, fmt.Errorf("no locales found in %s", localesDir)
	}
	return locales, nil
}

func (manager *Manager) DefaultLanguage() string {
	return manager.defaultLanguage
}

func (manager *Manager) SupportedLanguages() []string {
	result := make([]string, len(manager.supported))
	copy(result, manager.supported)
	return result
}

// NormalizeLanguage maps tags like "pt-BR" or "EN_us" onto a supported
// language, or the default when nothing matches.
func (manager *Manager) NormalizeLanguage(raw string) string {
	if tag := normalizeLanguageTag(raw); manager.isSupported(tag) {
		return tag
	}
	return manager.defaultLanguage
}

// DetectFromAcceptLanguage picks the supported language with the highest
// q-value. Ties keep header order.
func (manager *Manager) DetectFromAcceptLanguage(header string) string {
	type candidate struct {
		tag     string
		quality float64
	}

	candidates := make([]candidate, 0)
	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(part, ";")
		tag := normalizeLanguageTag(fields[0])
		if tag == "" {
			continue
		}

		quality := 1.0
		for _, param := range fields[1:] {
			name, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || strings.TrimSpace(name) != "q" {
				continue
			}
			parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err == nil {
				quality = parsed
			}
		}
		if quality <= 0 {
			continue
		}
		candidates = append(candidates, candidate{tag: tag, quality: quality})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].quality > candidates[j].quality
	})
	for _, candidate := range candidates {
		if manager.isSupported(candidate.tag) {
			return candidate.tag
		}
	}
	return manager.defaultLanguage
}

func (manager *Manager) Messages(language string) map[string]string {
	return manager.catalogs[manager.NormalizeLanguage(language)]
}

func (manager *Manager) Translate(language string, key string) string {
	if value, ok := manager.Messages(language)[key]; ok {
		return value
	}
	return key
}

func (manager *Manager) isSupported(language string) bool {
	if language == "" {
		return false
	}
	_, ok := manager.catalogs[language]
	return ok
}

func normalizeLanguageTag(raw string) string {
	language := strings.ToLower(strings.TrimSpace(raw))
	language = strings.ReplaceAll(language, "_", "-")
	if separator := strings.Index(language, "-"); separator >= 0 {
		language = language[:separator]
	}
	return language
}
