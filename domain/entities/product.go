package entities

// FAQ is a question/answer pair attached to a product
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Campaign describes one campaign type offered under a product
type Campaign struct {
	Description string `json:"description"`
	IdealFor    string `json:"idealFor"`
}

// Contact holds company contact details attached to a product
type Contact struct {
	Phone       string            `json:"phone,omitempty"`
	Email       string            `json:"email,omitempty"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Offices     map[string]string `json:"offices,omitempty"`
}

// SEOService describes one SEO sub-service
type SEOService struct {
	Description string `json:"description"`
}

// SEOStep is one step of the SEO delivery process
type SEOStep struct {
	Step        string `json:"step"`
	Description string `json:"description"`
}

// Product is one entry of the product catalog
type Product struct {
	Service          string                `json:"service"`
	Description      string                `json:"description"`
	TypesOfCampaigns map[string]Campaign   `json:"typesOfCampaigns,omitempty"`
	Benefits         map[string]string     `json:"benefits,omitempty"`
	WhyChooseUs      map[string]string     `json:"whyChooseUs,omitempty"`
	FAQs             []FAQ                 `json:"faqs,omitempty"`
	Contact          *Contact              `json:"contact,omitempty"`
	SEOServices      map[string]SEOService `json:"seoServices,omitempty"`
	SEOProcess       []SEOStep             `json:"seoProcess,omitempty"`
}

// Name returns the product's display name with a fallback for unnamed entries
func (p *Product) Name() string {
	if p.Service == "" {
		return "Unnamed Product"
	}
	return p.Service
}

// Describe returns the product description with a fallback when absent
func (p *Product) Describe() string {
	if p.Description == "" {
		return "No description available."
	}
	return p.Description
}
