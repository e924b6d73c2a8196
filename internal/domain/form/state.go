package form

import (
	"fmt"

	domcategory "example.com/grocery-form/internal/domain/category"
	domproduct "example.com/grocery-form/internal/domain/product"
)

const (
	MsgFillRequired = "Please fill all required fields"
	MsgSaved        = "Product saved"
)

type NoticeKind string

const (
	NoticeSuccess    NoticeKind = "success"
	NoticeValidation NoticeKind = "validation"
	NoticeError      NoticeKind = "error"
)

// Notice is a one-shot message for the user, dropped once rendered.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// State is one snapshot of the form page. Values are never mutated in place:
// Apply returns a new State and Products is only ever replaced wholesale.
type State struct {
	Fields Fields
	Mode   Mode

	// Products is the last list fetched for ListCategory.
	Products     []*domproduct.Product
	ListCategory domcategory.Category
	// ListSeq tags the newest list request; older responses are dropped.
	ListSeq uint64
	Loading bool

	Submitting bool
	Notices    []Notice
}

func Initial() State {
	return State{Mode: Creating{}}
}

// FindProduct looks id up in the cached list.
func (s State) FindProduct(id string) (*domproduct.Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

type Event interface {
	isEvent()
}

type (
	CategoryChanged struct {
		Category domcategory.Category
	}
	FieldEdited struct {
		Field Field
		Value string
	}
	EditRequested struct {
		Product *domproduct.Product
	}
	EditCancelled   struct{}
	SubmitStarted   struct{}
	SubmitRejected  struct{ Err error }
	SubmitSucceeded struct{}
	SubmitFailed    struct{ Err error }
	UploadRejected  struct{ Err error }
	ListRequested   struct {
		Category domcategory.Category
	}
	ListLoaded struct {
		Seq      uint64
		Category domcategory.Category
		Products []*domproduct.Product
	}
	ListFailed struct {
		Seq uint64
		Err error
	}
	NoticeShown struct{}
)

func (CategoryChanged) isEvent() {}
func (FieldEdited) isEvent()     {}
func (EditRequested) isEvent()   {}
func (EditCancelled) isEvent()   {}
func (SubmitStarted) isEvent()   {}
func (SubmitRejected) isEvent()  {}
func (SubmitSucceeded) isEvent() {}
func (SubmitFailed) isEvent()    {}
func (UploadRejected) isEvent()  {}
func (ListRequested) isEvent()   {}
func (ListLoaded) isEvent()      {}
func (ListFailed) isEvent()      {}
func (NoticeShown) isEvent()     {}

// Apply returns the state that follows s after ev.
func Apply(s State, ev Event) State {
	switch e := ev.(type) {
	case CategoryChanged:
		s.Fields = s.Fields.withCategory(e.Category)

	case FieldEdited:
		if e.Field == FieldCategory {
			return Apply(s, CategoryChanged{Category: domcategory.Category(e.Value)})
		}
		if s.Fields.Relevant(e.Field) {
			s.Fields = s.Fields.with(e.Field, e.Value)
		}

	case EditRequested:
		s.Fields = FromProduct(e.Product)
		s.Mode = Editing{ID: e.Product.ID}

	case EditCancelled:
		s.Fields = Fields{}
		s.Mode = Creating{}

	case SubmitStarted:
		s.Submitting = true

	case SubmitRejected:
		s = s.notify(NoticeValidation, MsgFillRequired)

	case SubmitSucceeded:
		s.Fields = Fields{}
		s.Mode = Creating{}
		s.Submitting = false
		s = s.notify(NoticeSuccess, MsgSaved)

	case SubmitFailed:
		s.Submitting = false
		s = s.notify(NoticeError, fmt.Sprintf("Could not save product: %v", e.Err))

	case UploadRejected:
		// may arrive while another submit of the session is in flight
		s = s.notify(NoticeError, fmt.Sprintf("Could not save product: %v", e.Err))

	case ListRequested:
		s.ListSeq++
		if e.Category == "" {
			s.Products = nil
			s.ListCategory = ""
			s.Loading = false
			break
		}
		s.Loading = true

	case ListLoaded:
		if e.Seq != s.ListSeq {
			break
		}
		s.Products = e.Products
		s.ListCategory = e.Category
		s.Loading = false

	case ListFailed:
		if e.Seq != s.ListSeq {
			break
		}
		s.Loading = false
		s = s.notify(NoticeError, fmt.Sprintf("Could not load products: %v", e.Err))

	case NoticeShown:
		s.Notices = nil
	}
	return s
}

// notify appends without touching the backing array of earlier snapshots.
func (s State) notify(kind NoticeKind, msg string) State {
	notices := make([]Notice, 0, len(s.Notices)+1)
	notices = append(notices, s.Notices...)
	s.Notices = append(notices, Notice{Kind: kind, Message: msg})
	return s
}
