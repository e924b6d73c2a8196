package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domcategory "example.com/grocery-form/internal/domain/category"
)

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	resp := make([]map[string]any, 0, len(domcategory.All()))
	for _, c := range domcategory.All() {
		resp = append(resp, mapCategory(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleCategoryOptions(w http.ResponseWriter, r *http.Request) {
	c, err := domcategory.Parse(chi.URLParam(r, "category"))
	if err == nil && c == "" {
		err = domcategory.ErrUnknownCategory
	}
	if err != nil {
		handleDomainError(w, err)
		return
	}

	opts := domcategory.OptionsFor(c)
	resp := mapCategory(c)
	resp["names"] = opts.Names
	resp["brands"] = opts.Brands
	resp["quantities"] = opts.Quantities
	writeJSON(w, http.StatusOK, resp)
}

func mapCategory(c domcategory.Category) map[string]any {
	return map[string]any{
		"value":             c.String(),
		"label":             categoryLabel(c),
		"shows_name":        c.ShowsName(),
		"shows_quantity":    c.ShowsQuantity(),
		"requires_name":     !c.IsNameless(),
		"requires_quantity": !c.IsQuantityExempt(),
	}
}
