package product

import (
	domcategory "example.com/grocery-form/internal/domain/category"
)

// Product is owned by the remote catalog; ID is assigned server-side.
type Product struct {
	ID       string
	Category domcategory.Category
	Name     string
	Brand    string
	Price    string
	Quantity string
	ImageRef string
}

// DisplayName: tên hiển thị trên card, fallback sang brand khi không có name
func (p *Product) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Brand
}

// Image is the file picked for a single submission. It is uploaded as binary and
// never kept after the request.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Draft is the payload of a create or update request.
type Draft struct {
	Category domcategory.Category
	Name     string
	Brand    string
	Price    string
	Quantity string
	Image    *Image
}
