package catalog

import (
	"encoding/json"
	"strings"
)

// Product is the storefront view of a catalog item.
type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      Rating  `json:"rating"`
}

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

type sourceProduct struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Rating      float64  `json:"rating"`
	Stock       *int     `json:"stock"`
	Thumbnail   string   `json:"thumbnail"`
	Images      []string `json:"images"`
}

type productPage struct {
	Products []sourceProduct `json:"products"`
}

func (p sourceProduct) transform() Product {
	image := p.Thumbnail
	if image == "" && len(p.Images) > 0 {
		image = p.Images[0]
	}
	count := 0
	if p.Stock != nil {
		count = *p.Stock
	}
	return Product{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
		Image:       image,
		Rating:      Rating{Rate: p.Rating, Count: count},
	}
}

func (p productPage) transform() []Product {
	out := make([]Product, 0, len(p.Products))
	for _, raw := range p.Products {
		out = append(out, raw.transform())
	}
	return out
}

// parseCategories accepts both plain slugs and {slug, name} objects.
func parseCategories(raw []json.RawMessage) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var slug string
		if err := json.Unmarshal(item, &slug); err != nil {
			var obj struct {
				Slug string `json:"slug"`
				Name string `json:"name"`
			}
			if json.Unmarshal(item, &obj) != nil {
				continue
			}
			slug = obj.Slug
			if slug == "" {
				slug = obj.Name
			}
		}
		if strings.TrimSpace(slug) != "" {
			out = append(out, slug)
		}
	}
	return out
}
