package i18n

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

const DefaultLocale = "en"

//go:embed messages.yaml
var defaultMessages []byte

// Catalog resolves message keys for one locale, falling back to
// DefaultLocale and finally to the key itself.
type Catalog struct {
	locale   string
	messages map[string]map[string]string
}

func Load(locale string) (*Catalog, error) {
	return Parse(defaultMessages, locale)
}

func Parse(data []byte, locale string) (*Catalog, error) {
	var messages map[string]map[string]string
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse message catalog: %w", err)
	}
	if _, ok := messages[DefaultLocale]; !ok {
		return nil, fmt.Errorf("message catalog has no %q locale", DefaultLocale)
	}
	if locale == "" {
		locale = DefaultLocale
	}
	return &Catalog{locale: locale, messages: messages}, nil
}

func (c *Catalog) Locale() string {
	return c.locale
}

func (c *Catalog) T(key string) string {
	if msg, ok := c.messages[c.locale][key]; ok {
		return msg
	}
	if msg, ok := c.messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

func (c *Catalog) Tf(key string, args ...any) string {
	return fmt.Sprintf(c.T(key), args...)
}
