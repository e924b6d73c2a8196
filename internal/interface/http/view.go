package http

import (
	"net/url"
	"strings"

	domcategory "example.com/grocery-form/internal/domain/category"
	"example.com/grocery-form/internal/domain/form"
	domproduct "example.com/grocery-form/internal/domain/product"
)

type choice struct {
	Value    string
	Label    string
	Selected bool
}

type productView struct {
	ID          string
	DisplayName string
	Brand       string
	Price       string
	Quantity    string
	ImageRef    string
	Editing     bool
}

type noticeView struct {
	Kind    string
	Message string
}

// pageView is everything form.html renders for one request.
type pageView struct {
	Fields     form.Fields
	Editing    bool
	Submitting bool

	Categories      []choice
	ShowName        bool
	ShowQuantity    bool
	NameOptions     []choice
	BrandOptions    []choice
	QuantityOptions []choice

	ListCategory string
	ListLabel    string
	Loading      bool
	Products     []productView

	Notices []noticeView
}

func categoryLabel(c domcategory.Category) string {
	if c == domcategory.Biscuits {
		return "Biscuits"
	}
	s := c.String()
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// choices marks current as selected. A current value missing from options, as
// when editing a product saved with an older list, is kept as an extra choice.
func choices(options []string, current string) []choice {
	out := make([]choice, 0, len(options)+1)
	found := false
	for _, o := range options {
		sel := o == current
		found = found || sel
		out = append(out, choice{Value: o, Label: o, Selected: sel})
	}
	if current != "" && !found {
		out = append(out, choice{Value: current, Label: current, Selected: true})
	}
	return out
}

func resolveImage(base *url.URL, ref string) string {
	if ref == "" || base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

func buildPageView(st form.State, imageBase *url.URL) pageView {
	f := st.Fields
	editID, editing := form.EditTarget(st.Mode)
	opts := domcategory.OptionsFor(f.Category)

	v := pageView{
		Fields:       f,
		Editing:      editing,
		Submitting:   st.Submitting,
		ShowName:     f.Category.ShowsName(),
		ShowQuantity: f.Category.ShowsQuantity(),
		ListCategory: st.ListCategory.String(),
		ListLabel:    categoryLabel(st.ListCategory),
		Loading:      st.Loading,
	}

	for _, c := range domcategory.All() {
		v.Categories = append(v.Categories, choice{
			Value:    c.String(),
			Label:    categoryLabel(c),
			Selected: c == f.Category,
		})
	}
	if len(opts.Names) > 0 {
		v.NameOptions = choices(opts.Names, f.Name)
	}
	v.BrandOptions = choices(opts.Brands, f.Brand)
	v.QuantityOptions = choices(opts.Quantities, f.Quantity)

	v.Products = make([]productView, 0, len(st.Products))
	for _, p := range st.Products {
		v.Products = append(v.Products, toProductView(p, editing && p.ID == editID, imageBase))
	}

	for _, n := range st.Notices {
		v.Notices = append(v.Notices, noticeView{Kind: string(n.Kind), Message: n.Message})
	}
	return v
}

func toProductView(p *domproduct.Product, editing bool, imageBase *url.URL) productView {
	return productView{
		ID:          p.ID,
		DisplayName: p.DisplayName(),
		Brand:       p.Brand,
		Price:       p.Price,
		Quantity:    p.Quantity,
		ImageRef:    resolveImage(imageBase, p.ImageRef),
		Editing:     editing,
	}
}
