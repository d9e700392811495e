package catalog

import "time"

type Image struct {
	URL     string `bson:"url" json:"url"`
	AltText string `bson:"alt_text,omitempty" json:"altText,omitempty"`
}

type Product struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Description  string    `bson:"description" json:"description"`
	Price        float64   `bson:"price" json:"price"`
	CountInStock int       `bson:"count_in_stock" json:"countInStock"`
	SKU          string    `bson:"sku" json:"sku"`
	Category     string    `bson:"category" json:"category"`
	Brand        string    `bson:"brand,omitempty" json:"brand,omitempty"`
	Sizes        []string  `bson:"sizes" json:"sizes"`
	Colors       []string  `bson:"colors" json:"colors"`
	Collections  string    `bson:"collections,omitempty" json:"collections,omitempty"`
	Material     string    `bson:"material,omitempty" json:"material,omitempty"`
	Gender       string    `bson:"gender,omitempty" json:"gender,omitempty"`
	Images       []Image   `bson:"images" json:"images"`
	IsActive     bool      `bson:"is_active" json:"isActive"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// FirstImageURL returns the primary image, or empty when none was uploaded.
func (p *Product) FirstImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}
