package category

import "strings"

// Category là tag phân loại sản phẩm, giá trị gửi lên API giữ nguyên như server lưu
type Category string

const (
	Dhall    Category = "dhall"
	Oil      Category = "oil"
	Spices   Category = "spices"
	Masala   Category = "masala"
	Snacks   Category = "snacks"
	Biscuits Category = "biscuts"
)

// All returns the categories in display order.
func All() []Category {
	return []Category{Dhall, Oil, Spices, Masala, Snacks, Biscuits}
}

// Parse: convert raw string (form / URL) sang Category có validate.
// Empty string means "no category selected" and is not an error.
func Parse(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return "", nil
	}
	if !c.IsKnown() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

func (c Category) String() string {
	return string(c)
}

func (c Category) IsKnown() bool {
	for _, known := range All() {
		if c == known {
			return true
		}
	}
	return false
}

// IsNameless: category không có field name (biscuits)
func (c Category) IsNameless() bool {
	return c == Biscuits
}

// IsQuantityExempt: category không cần chọn quantity
func (c Category) IsQuantityExempt() bool {
	return c == Biscuits || c == Snacks
}

// ShowsName reports whether the name field is rendered for c.
func (c Category) ShowsName() bool {
	return !c.IsNameless()
}

// ShowsQuantity reports whether the quantity field is rendered for c.
// Nothing is shown until a category is picked.
func (c Category) ShowsQuantity() bool {
	return c != "" && !c.IsQuantityExempt()
}
