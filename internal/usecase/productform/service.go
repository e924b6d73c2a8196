package productform

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domcategory "example.com/grocery-form/internal/domain/category"
	"example.com/grocery-form/internal/domain/form"
	domproduct "example.com/grocery-form/internal/domain/product"
)

type Service struct {
	repo     domproduct.Repository
	validate *validator.Validate
	logger   *zap.Logger
}

func NewService(repo domproduct.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		validate: newValidator(),
		logger:   logger,
	}
}

// View returns the state to render; pending notices are handed out once.
func (s *Service) View(sess *Session) form.State {
	return sess.view()
}

func (s *Service) EditField(sess *Session, field form.Field, value string) {
	sess.apply(form.FieldEdited{Field: field, Value: value})
}

// ChangeCategory switches the form to c and refreshes the list for it.
func (s *Service) ChangeCategory(ctx context.Context, sess *Session, c domcategory.Category) error {
	sess.apply(form.CategoryChanged{Category: c})
	return s.LoadProducts(ctx, sess, c)
}

// LoadProducts replaces the cached list with the products of c. An empty category
// clears the cache without a request. A response for a request that has since
// been superseded is dropped and reported as ErrListSuperseded.
func (s *Service) LoadProducts(ctx context.Context, sess *Session, c domcategory.Category) error {
	seq, loadCtx, release := sess.beginList(ctx, c)
	defer release()
	if c == "" {
		return nil
	}

	products, err := s.repo.ListByCategory(loadCtx, c)
	if err != nil {
		sess.apply(form.ListFailed{Seq: seq, Err: err})
		if !sess.isCurrentList(seq) {
			return ErrListSuperseded
		}
		s.logger.Warn("load products failed",
			zap.String("session", sess.ID),
			zap.String("category", c.String()),
			zap.Error(err),
		)
		return err
	}

	sess.apply(form.ListLoaded{Seq: seq, Category: c, Products: products})
	if !sess.isCurrentList(seq) {
		return ErrListSuperseded
	}
	return nil
}

// Reload fetches the list again for whatever category is on screen.
func (s *Service) Reload(ctx context.Context, sess *Session) error {
	st := sess.Snapshot()
	c := st.ListCategory
	if c == "" {
		c = st.Fields.Category
	}
	return s.LoadProducts(ctx, sess, c)
}

// StartEdit loads a listed product into the form and switches to editing it.
func (s *Service) StartEdit(ctx context.Context, sess *Session, id string) error {
	st := sess.Snapshot()
	p, ok := st.FindProduct(id)
	if !ok {
		return domproduct.ErrProductNotFound
	}
	if p.Category == "" {
		cloned := *p
		cloned.Category = st.ListCategory
		p = &cloned
	}

	sess.apply(form.EditRequested{Product: p})
	if p.Category != st.ListCategory {
		return s.LoadProducts(ctx, sess, p.Category)
	}
	return nil
}

func (s *Service) CancelEdit(sess *Session) {
	sess.apply(form.EditCancelled{})
}

// RejectUpload reports a submission that could not even be read, such as an
// oversized image. The form is left as it was.
func (s *Service) RejectUpload(sess *Session, err error) {
	sess.apply(form.UploadRejected{Err: err})
}

// Submit validates the form and creates or updates the product depending on the
// mode. image may be nil; it is dropped once the request is over. On failure the
// form keeps the user's input and nothing is retried.
func (s *Service) Submit(ctx context.Context, sess *Session, image *domproduct.Image) error {
	st, err := sess.beginSubmit(s.Validate)
	if err != nil {
		return err
	}

	draft := st.Fields.Draft(image)
	defer func() { draft.Image = nil }()

	var saved *domproduct.Product
	id, editing := form.EditTarget(st.Mode)
	if editing {
		saved, err = s.repo.Update(ctx, id, draft)
	} else {
		saved, err = s.repo.Create(ctx, draft)
	}
	if err != nil {
		sess.apply(form.SubmitFailed{Err: err})
		s.logger.Warn("save product failed",
			zap.String("session", sess.ID),
			zap.Bool("editing", editing),
			zap.String("id", id),
			zap.Error(err),
		)
		return err
	}

	sess.apply(form.SubmitSucceeded{})
	if saved != nil && saved.ID != "" {
		id = saved.ID
	}
	s.logger.Info("product saved",
		zap.String("session", sess.ID),
		zap.Bool("editing", editing),
		zap.String("id", id),
		zap.String("category", st.Fields.Category.String()),
	)

	// a failed refresh is already on the page as a notice
	_ = s.LoadProducts(ctx, sess, st.Fields.Category)
	return nil
}
