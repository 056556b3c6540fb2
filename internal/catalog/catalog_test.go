package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emergingssoftware/faqbot/domain/entities"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "product_catalog.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write catalog fixture: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeCatalog(t, `[{"service":"SEO","description":"Search engine optimization."}]`)

	products, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(products) != 1 {
		t.Fatalf("Expected 1 product, got %d", len(products))
	}

	if products[0].Service != "SEO" {
		t.Errorf("Expected service SEO, got %s", products[0].Service)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeCatalog(t, `{"service":"not a list"}`)
	if _, err := Load(path); err == nil {
		t.Error("Expected error for non-list catalog")
	}

	path = writeCatalog(t, `not json at all`)
	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestLoadEmptyCatalog(t *testing.T) {
	path := writeCatalog(t, `[]`)
	if _, err := Load(path); err == nil {
		t.Error("Expected error for empty catalog")
	}
}

func TestFlatten(t *testing.T) {
	products := []entities.Product{
		{
			Service:     "Email Marketing",
			Description: "Campaigns that convert.",
			TypesOfCampaigns: map[string]entities.Campaign{
				"Newsletters": {Description: "Regular updates", IdealFor: "Retention"},
			},
			Benefits: map[string]string{
				"Reach": "Direct line to customers",
			},
			WhyChooseUs: map[string]string{
				"Experience": "A decade in the field",
			},
			FAQs: []entities.FAQ{
				{Question: "What is your return policy?", Answer: "30 days"},
				{Question: "Incomplete", Answer: ""},
			},
			Contact: &entities.Contact{
				Phone:   "+1 830 631 0316",
				Email:   "director@emergingssoftware.com",
				Offices: map[string]string{"qatar": "Doha, West Bay"},
			},
		},
	}

	docs := Flatten(products)

	want := []string{
		"Email Marketing: Campaigns that convert.",
		"Newsletters: Regular updates - Ideal For: Retention",
		"Benefit - Reach: Direct line to customers",
		"Why Choose Us - Experience: A decade in the field",
		"FAQ - Q: What is your return policy? A: 30 days",
		"Contact Phone: +1 830 631 0316",
		"Contact Email: director@emergingssoftware.com",
		"Office in Qatar: Doha, West Bay",
	}

	if len(docs) != len(want) {
		t.Fatalf("Expected %d chunks, got %d: %v", len(want), len(docs), docs)
	}

	for i, doc := range docs {
		if doc != want[i] {
			t.Errorf("Chunk %d: expected %q, got %q", i, want[i], doc)
		}
	}
}

func TestFlattenDefaults(t *testing.T) {
	docs := Flatten([]entities.Product{{}})

	if len(docs) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(docs))
	}

	if !strings.HasPrefix(docs[0], "Unnamed Product: ") {
		t.Errorf("Expected unnamed product fallback, got %q", docs[0])
	}

	if !strings.HasSuffix(docs[0], "No description available.") {
		t.Errorf("Expected description fallback, got %q", docs[0])
	}
}

func TestFlattenSEOSections(t *testing.T) {
	products := []entities.Product{
		{
			Service:     "SEO",
			Description: "Rank higher.",
			SEOServices: map[string]entities.SEOService{
				"On-Page": {Description: "Content and structure"},
			},
			SEOProcess: []entities.SEOStep{
				{Step: "Audit", Description: "Review the site"},
			},
		},
	}

	docs := Flatten(products)

	want := []string{
		"SEO: Rank higher.",
		"SEO Service - On-Page: Content and structure",
		"Process Step - Audit: Review the site",
	}

	if len(docs) != len(want) {
		t.Fatalf("Expected %d chunks, got %d: %v", len(want), len(docs), docs)
	}

	for i, doc := range docs {
		if doc != want[i] {
			t.Errorf("Chunk %d: expected %q, got %q", i, want[i], doc)
		}
	}
}
