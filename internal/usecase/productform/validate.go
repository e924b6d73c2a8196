package productform

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"

	domcategory "example.com/grocery-form/internal/domain/category"
	"example.com/grocery-form/internal/domain/form"
)

// submission is what the validator sees. Name and quantity depend on the
// category, so they are checked at struct level.
type submission struct {
	Category string `form:"category" validate:"required"`
	Name     string `form:"name"`
	Brand    string `form:"brand" validate:"required"`
	Price    string `form:"price" validate:"required"`
	Quantity string `form:"quantity"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	v.RegisterStructValidation(validateSubmission, submission{})
	return v
}

func validateSubmission(sl validator.StructLevel) {
	sub := sl.Current().Interface().(submission)
	c := domcategory.Category(sub.Category)

	if !c.IsNameless() && sub.Name == "" {
		sl.ReportError(sub.Name, "name", "Name", "required", "")
	}
	if !c.IsQuantityExempt() && sub.Quantity == "" {
		sl.ReportError(sub.Quantity, "quantity", "Quantity", "required", "")
	}
}

// Validate checks the required fields for the chosen category and returns a
// *form.ValidationError naming every missing one.
func (s *Service) Validate(f form.Fields) error {
	err := s.validate.Struct(submission{
		Category: f.Category.String(),
		Name:     f.Name,
		Brand:    f.Brand,
		Price:    f.Price,
		Quantity: f.Quantity,
	})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	missing := make([]form.Field, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing = append(missing, form.Field(fe.Field()))
	}
	return &form.ValidationError{Missing: missing}
}
