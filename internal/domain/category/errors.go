package category

import "errors"

var (
	ErrUnknownCategory = errors.New("unknown category")
)
