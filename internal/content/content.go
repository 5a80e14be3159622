// Package content holds the marketing copy: hero variants, FAQs and
// pricing plans, baked into the binary as YAML.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var siteYAML []byte

const DefaultVariant = "default"

type Hero struct {
	ID          string `yaml:"id" json:"id"`
	Headline    string `yaml:"headline" json:"headline"`
	Subheadline string `yaml:"subheadline" json:"subheadline"`
	CTA         string `yaml:"cta" json:"cta"`
}

type FAQ struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
	Category string `yaml:"category" json:"category"`
}

type Plan struct {
	ID         string   `yaml:"id" json:"id"`
	Name       string   `yaml:"name" json:"name"`
	PricePence int      `yaml:"price_pence" json:"price_pence"`
	Period     string   `yaml:"period" json:"period"`
	Features   []string `yaml:"features" json:"features"`
}

// Price formats the plan price in pounds.
func (p Plan) Price() string {
	if p.PricePence%100 == 0 {
		return fmt.Sprintf("£%d", p.PricePence/100)
	}
	return fmt.Sprintf("£%d.%02d", p.PricePence/100, p.PricePence%100)
}

type Site struct {
	Heroes      []Hero `yaml:"heroes"`
	FAQList     []FAQ  `yaml:"faqs"`
	Plans       []Plan `yaml:"pricing"`
	defaultHero string
}

// Load parses the embedded site content. defaultVariant picks the hero used
// when a visitor asks for an unknown one; empty means DefaultVariant.
func Load(defaultVariant string) (*Site, error) {
	return Parse(bytes.NewReader(siteYAML), defaultVariant)
}

func Parse(r io.Reader, defaultVariant string) (*Site, error) {
	var s Site
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode site content: %w", err)
	}
	if len(s.Heroes) == 0 {
		return nil, errors.New("site content has no hero variants")
	}
	if defaultVariant == "" {
		defaultVariant = DefaultVariant
	}
	if !s.HasVariant(defaultVariant) {
		return nil, fmt.Errorf("default hero variant %q not found", defaultVariant)
	}
	s.defaultHero = defaultVariant
	return &s, nil
}

func (s *Site) HasVariant(id string) bool {
	for _, h := range s.Heroes {
		if h.ID == id {
			return true
		}
	}
	return false
}

// Hero returns the requested variant or the default one.
func (s *Site) Hero(variant string) Hero {
	for _, h := range s.Heroes {
		if h.ID == variant {
			return h
		}
	}
	for _, h := range s.Heroes {
		if h.ID == s.defaultHero {
			return h
		}
	}
	return s.Heroes[0]
}

// FAQs filters by category; an empty category returns them all.
func (s *Site) FAQs(category string) []FAQ {
	out := []FAQ{}
	for _, f := range s.FAQList {
		if category == "" || f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

// Categories lists FAQ categories in first-seen order.
func (s *Site) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range s.FAQList {
		if !seen[f.Category] {
			seen[f.Category] = true
			out = append(out, f.Category)
		}
	}
	return out
}

func (s *Site) Pricing() []Plan {
	return s.Plans
}
