package links

import (
	"embed"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Special links point at a platform-specific deep link (wa.me, t.me, mailto,
// tel, ...) built from a handle or number instead of a raw destination URL.

//go:embed templates/special_links.yml
var templateFiles embed.FS

// SpecialTemplate describes how one platform's deep link is assembled.
type SpecialTemplate struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	StripKey string `yaml:"strip"`
}

var (
	specialTemplates  map[string]SpecialTemplate
	loadTemplatesOnce sync.Once
)

func loadTemplates() {
	loadTemplatesOnce.Do(func() {
		specialTemplates = make(map[string]SpecialTemplate)
		data, err := templateFiles.ReadFile("templates/special_links.yml")
		if err != nil {
			return
		}
		if err := yaml.Unmarshal(data, &specialTemplates); err != nil {
			specialTemplates = make(map[string]SpecialTemplate)
		}
	})
}

// SpecialTypes lists the supported special link types, sorted.
func SpecialTypes() []string {
	loadTemplates()
	types := make([]string, 0, len(specialTemplates))
	for key := range specialTemplates {
		types = append(types, key)
	}
	sort.Strings(types)
	return types
}

// BuildSpecialDestination renders the deep-link URL for a special type and
// user-supplied code (handle, phone number, address).
func BuildSpecialDestination(specialType, specialCode string) (string, error) {
	loadTemplates()

	template, ok := specialTemplates[strings.ToLower(specialType)]
	if !ok {
		return "", fmt.Errorf("unknown special link type: %s", specialType)
	}

	code := strings.TrimSpace(specialCode)
	if code == "" {
		return "", fmt.Errorf("special link type %s requires a code", specialType)
	}
	if template.StripKey != "" {
		code = strings.TrimPrefix(code, template.StripKey)
	}

	return strings.ReplaceAll(template.URL, "{code}", url.PathEscape(code)), nil
}
