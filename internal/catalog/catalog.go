// Package catalog holds the static service catalog, topic rule sets, and
// canned reply texts for the assistant.
//
// The catalog is immutable after process start. Deployments override the
// built-in defaults with a YAML file; entries not present in the file keep
// their default values.
package catalog

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// ServiceEntry maps a catalog service name to its self-service widget link.
type ServiceEntry struct {
	Name      string `yaml:"name" json:"name"`
	ActionURL string `yaml:"action_url" json:"action_url"`
}

// Replies holds the fixed user-facing texts sent outside the generation path.
type Replies struct {
	// Greeting is sent in response to the /start command, above the service menu.
	Greeting string `yaml:"greeting"`
	// OffCatalog is sent for catalog-adjacent topics not offered online.
	// It is also used for messages with no recognizable insurance keyword.
	OffCatalog string `yaml:"off_catalog"`
	// Disallowed is sent for topics the assistant must not discuss.
	Disallowed string `yaml:"disallowed"`
	// Apology is sent when the completion provider fails.
	Apology string `yaml:"apology"`
	// ServiceLink is the HTML body for a service link reply; the single
	// %s verb receives the service name.
	ServiceLink string `yaml:"service_link"`
	// LinkButtonLabel labels the inline URL button on service link replies.
	LinkButtonLabel string `yaml:"link_button_label"`
}

// Catalog bundles the service catalog and the three topic rule sets.
type Catalog struct {
	Services []ServiceEntry `yaml:"services"`
	// OffCatalogTriggers match insurance products that are not sold online.
	OffCatalogTriggers []string `yaml:"off_catalog_triggers"`
	// DisallowedTriggers match topics excluded for compliance reasons.
	DisallowedTriggers []string `yaml:"disallowed_triggers"`
	// OnTopicKeywords form the allow-list; a free-text message must contain
	// at least one of these to reach the generation path.
	OnTopicKeywords []string `yaml:"on_topic_keywords"`
	Replies         Replies  `yaml:"replies"`

	byName map[string]string
}

// Default returns the built-in catalog matching the production deployment.
func Default() *Catalog {
	c := &Catalog{
		Services: []ServiceEntry{
			{Name: "ОСАГО", ActionURL: "https://widgets.inssmart.ru/contract/eosago"},
			{Name: "МИНИ-КАСКО", ActionURL: "https://widgets.inssmart.ru/contract/kasko"},
			{Name: "Ипотека", ActionURL: "https://widgets.inssmart.ru/contract/mortgage"},
			{Name: "Страхование имущества", ActionURL: "https://widgets.inssmart.ru/contract/property"},
			{Name: "Путешествия", ActionURL: "https://widgets.inssmart.ru/contract/travel"},
		},
		OffCatalogTriggers: []string{
			"КАСКО ПО РИСКАМ",
			"ТОТАЛ",
			"УГОН",
			"ДМС",
			"СТРАХОВАНИЕ БИЗНЕСА",
		},
		DisallowedTriggers: []string{
			"ИНВЕСТИЦ",
			"КРИПТОВАЛЮТ",
			"ПОЛИТИК",
		},
		OnTopicKeywords: []string{
			"СТРАХ",
			"ПОЛИС",
			"ОСАГО",
			"КАСКО",
			"ИПОТЕК",
			"ИМУЩЕСТВ",
			"ПУТЕШЕСТВ",
			"ВЫПЛАТ",
			"ФРАНШИЗ",
		},
		Replies: Replies{
			Greeting: "👋 Здравствуйте! Я ваш помощник. Выберите услугу или задайте вопрос:",
			OffCatalog: "К сожалению, нужный вид страхования в онлайн-приложении не представлен.\n" +
				"Пожалуйста, свяжитесь с нами:\n\n" +
				"📧 info@straxovka-go.ru\n" +
				"🌐 https://straxovka-go.ru\n" +
				"📱 WhatsApp: +7 989 120 66 37\n\n" +
				"Мы — операторы ПДн. Политика конфиденциальности: https://straxovka-go.ru/privacy",
			Disallowed:      "К сожалению, я не могу обсуждать эту тему. Я отвечаю только на вопросы о страховании Straxovka-Go.",
			Apology:         "Упс, ошибка при обращении к модели. Попробуйте позже.",
			ServiceLink:     "Перейдите по ссылке для оформления <b>%s</b>:",
			LinkButtonLabel: "▶ Открыть виджет",
		},
	}
	c.reindex()
	return c
}

// LoadFile loads a catalog from a YAML file, applying it over the defaults.
func LoadFile(path string) (*Catalog, error) {
	slog.Debug("catalog.LoadFile: loading catalog file", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	c.reindex()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog file %s: %w", path, err)
	}
	slog.Info("catalog.LoadFile: catalog loaded", "path", path, "services", len(c.Services))
	return c, nil
}

// Validate checks catalog consistency: non-empty unique service names with URLs.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Services))
	for _, s := range c.Services {
		if s.Name == "" {
			return fmt.Errorf("service with empty name")
		}
		if s.ActionURL == "" {
			return fmt.Errorf("service %q has no action URL", s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate service name %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// LookupService returns the action URL for an exact service name.
func (c *Catalog) LookupService(name string) (string, bool) {
	url, ok := c.byName[name]
	return url, ok
}

// ServiceNames returns the catalog service names in menu order.
func (c *Catalog) ServiceNames() []string {
	names := make([]string, 0, len(c.Services))
	for _, s := range c.Services {
		names = append(names, s.Name)
	}
	return names
}

func (c *Catalog) reindex() {
	c.byName = make(map[string]string, len(c.Services))
	for _, s := range c.Services {
		c.byName[s.Name] = s.ActionURL
	}
}
