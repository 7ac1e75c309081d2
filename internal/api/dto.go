package api

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/perxlab/catalog-widget/pkg/types"
)

// goodRecord mirrors one element of the /api/goods/ response.
type goodRecord struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Image      string          `json:"image,omitempty"`
	Logo       string          `json:"logo,omitempty"`
	Dealer     string          `json:"dealer,omitempty"`
	DealerName string          `json:"dealer_name,omitempty"`
}

func (g goodRecord) toProduct(baseURL, placeholder string) types.Product {
	image := g.Logo
	if image == "" {
		image = g.Image
	}

	dealerName := g.DealerName
	if dealerName == "" {
		dealer := g.Dealer
		if dealer == "" {
			dealer = "unknown"
		}
		dealerName = fmt.Sprintf("Dealer %s", dealer)
	}

	return types.Product{
		ID:         g.ID,
		Title:      g.Name,
		Price:      g.Price,
		Image:      resolveImageURL(baseURL, placeholder, image),
		DealerID:   g.Dealer,
		DealerName: dealerName,
	}
}

// resolveImageURL normalizes the image reference returned by the backend:
// absolute URLs pass through, rooted paths are prefixed with the API base,
// bare filenames live under /logo/, and a missing value falls back to the
// configured placeholder.
func resolveImageURL(baseURL, placeholder, path string) string {
	if path == "" {
		return placeholder
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return baseURL + path
	}
	return baseURL + "/logo/" + path
}
