// Package catalog loads the product catalog and flattens it into text
// chunks suitable for embedding and vector search.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/emergingssoftware/faqbot/domain/entities"
)

// DefaultPath is where the catalog file is expected relative to the
// working directory.
const DefaultPath = "product_files/product_catalog.json"

// Load reads and validates the product catalog from path
func Load(path string) ([]entities.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	var products []entities.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("no products found in %s", path)
	}

	return products, nil
}

// Flatten converts products into document chunks for vector search. Every
// section of a product (campaign types, benefits, FAQs, contact details,
// SEO services and process steps) becomes its own chunk.
func Flatten(products []entities.Product) []string {
	var docs []string

	for i := range products {
		p := &products[i]
		docs = append(docs, fmt.Sprintf("%s: %s", p.Name(), p.Describe()))

		for _, campaignType := range sortedKeys(p.TypesOfCampaigns) {
			info := p.TypesOfCampaigns[campaignType]
			docs = append(docs, fmt.Sprintf("%s: %s - Ideal For: %s", campaignType, info.Description, info.IdealFor))
		}

		for _, key := range sortedKeys(p.Benefits) {
			docs = append(docs, fmt.Sprintf("Benefit - %s: %s", key, p.Benefits[key]))
		}

		for _, key := range sortedKeys(p.WhyChooseUs) {
			docs = append(docs, fmt.Sprintf("Why Choose Us - %s: %s", key, p.WhyChooseUs[key]))
		}

		for _, faq := range p.FAQs {
			if faq.Question != "" && faq.Answer != "" {
				docs = append(docs, fmt.Sprintf("FAQ - Q: %s A: %s", faq.Question, faq.Answer))
			}
		}

		if c := p.Contact; c != nil {
			if c.Phone != "" {
				docs = append(docs, fmt.Sprintf("Contact Phone: %s", c.Phone))
			}
			if c.Email != "" {
				docs = append(docs, fmt.Sprintf("Contact Email: %s", c.Email))
			}
			if c.Title != "" {
				docs = append(docs, fmt.Sprintf("Contact Title: %s", c.Title))
			}
			if c.Description != "" {
				docs = append(docs, fmt.Sprintf("About Us: %s", c.Description))
			}
			for _, country := range sortedKeys(c.Offices) {
				docs = append(docs, fmt.Sprintf("Office in %s: %s", capitalize(country), c.Offices[country]))
			}
		}

		for _, service := range sortedKeys(p.SEOServices) {
			docs = append(docs, fmt.Sprintf("SEO Service - %s: %s", service, p.SEOServices[service].Description))
		}

		for _, step := range p.SEOProcess {
			docs = append(docs, fmt.Sprintf("Process Step - %s: %s", step.Step, step.Description))
		}
	}

	return docs
}

// sortedKeys returns map keys in a stable order so chunk ordering is
// deterministic across runs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
