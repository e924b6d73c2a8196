package form

import (
	domcategory "example.com/grocery-form/internal/domain/category"
	domproduct "example.com/grocery-form/internal/domain/product"
)

type Field string

const (
	FieldCategory Field = "category"
	FieldName     Field = "name"
	FieldBrand    Field = "brand"
	FieldPrice    Field = "price"
	FieldQuantity Field = "quantity"
)

// Fields is the editable part of a product as typed into the form. The zero value
// is the empty form.
type Fields struct {
	Category domcategory.Category
	Name     string
	Brand    string
	Price    string
	Quantity string
}

// Relevant reports whether field applies to the current category.
func (f Fields) Relevant(field Field) bool {
	switch field {
	case FieldName:
		return !f.Category.IsNameless()
	case FieldQuantity:
		return !f.Category.IsQuantityExempt()
	default:
		return true
	}
}

// withCategory switches category and clears whatever the new category does not use.
func (f Fields) withCategory(c domcategory.Category) Fields {
	f.Category = c
	return f.clearIrrelevant()
}

func (f Fields) clearIrrelevant() Fields {
	if !f.Relevant(FieldName) {
		f.Name = ""
	}
	if !f.Relevant(FieldQuantity) {
		f.Quantity = ""
	}
	return f
}

func (f Fields) with(field Field, value string) Fields {
	switch field {
	case FieldName:
		f.Name = value
	case FieldBrand:
		f.Brand = value
	case FieldPrice:
		f.Price = value
	case FieldQuantity:
		f.Quantity = value
	}
	return f
}

// Draft builds the request payload; image is attached by the caller.
func (f Fields) Draft(image *domproduct.Image) *domproduct.Draft {
	return &domproduct.Draft{
		Category: f.Category,
		Name:     f.Name,
		Brand:    f.Brand,
		Price:    f.Price,
		Quantity: f.Quantity,
		Image:    image,
	}
}

// FromProduct loads a listed product back into the form.
func FromProduct(p *domproduct.Product) Fields {
	f := Fields{
		Category: p.Category,
		Name:     p.Name,
		Brand:    p.Brand,
		Price:    p.Price,
		Quantity: p.Quantity,
	}
	return f.clearIrrelevant()
}
