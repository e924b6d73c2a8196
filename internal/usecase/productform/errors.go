package productform

import "errors"

var (
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrListSuperseded   = errors.New("product list request superseded")
)
