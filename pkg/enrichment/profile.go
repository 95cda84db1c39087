// Package enrichment loads company profile data used to pre-fill interview
// questions.
package enrichment

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CompanyProfile is what is known about a company before the interview,
// typically extracted from its website.
type CompanyProfile struct {
	CompanyName               string   `yaml:"company_name"`
	Website                   string   `yaml:"website"`
	Segment                   string   `yaml:"segment"`
	ProductsDescription       string   `yaml:"products_description"`
	TargetAudience            string   `yaml:"target_audience"`
	CommunicationTone         string   `yaml:"communication_tone"`
	PaymentMethodsMentioned   []string `yaml:"payment_methods_mentioned"`
	CollectionRelevantContext string   `yaml:"collection_relevant_context"`
}

// ErrEmptyProfile is returned when a profile file carries no usable field.
var ErrEmptyProfile = errors.New("company profile is empty")

// Map flattens the profile into the enrichment map. Blank fields are omitted
// and payment methods are joined with ", ".
func (p *CompanyProfile) Map() map[string]string {
	out := make(map[string]string)
	put := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			out[key] = v
		}
	}
	put("company_name", p.CompanyName)
	put("website", p.Website)
	put("segment", p.Segment)
	put("products_description", p.ProductsDescription)
	put("target_audience", p.TargetAudience)
	put("communication_tone", p.CommunicationTone)
	put("collection_relevant_context", p.CollectionRelevantContext)

	methods := make([]string, 0, len(p.PaymentMethodsMentioned))
	for _, m := range p.PaymentMethodsMentioned {
		if m = strings.TrimSpace(m); m != "" {
			methods = append(methods, m)
		}
	}
	put("payment_methods_mentioned", strings.Join(methods, ", "))
	return out
}

// ParseProfile decodes a YAML (or JSON) profile document.
func ParseProfile(data []byte) (*CompanyProfile, error) {
	var p CompanyProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse company profile: %w", err)
	}
	if len(p.Map()) == 0 {
		return nil, ErrEmptyProfile
	}
	return &p, nil
}

// LoadProfile reads a profile file.
func LoadProfile(path string) (*CompanyProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read company profile %s: %w", path, err)
	}
	p, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
