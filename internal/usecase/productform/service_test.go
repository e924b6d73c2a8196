package productform

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domcategory "example.com/grocery-form/internal/domain/category"
	"example.com/grocery-form/internal/domain/form"
	domproduct "example.com/grocery-form/internal/domain/product"
)

type updateCall struct {
	id    string
	draft *domproduct.Draft
}

type mockProductRepository struct {
	mu       sync.Mutex
	products map[domcategory.Category][]*domproduct.Product
	nextID   int

	listCalls   []domcategory.Category
	created     []*domproduct.Draft
	updated     []updateCall
	listErr     error
	createErr   error
	updateErr   error
	createBlock chan struct{}
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[domcategory.Category][]*domproduct.Product),
		nextID:   1,
	}
}

func (m *mockProductRepository) ListByCategory(ctx context.Context, c domcategory.Category) ([]*domproduct.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls = append(m.listCalls, c)
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*domproduct.Product, 0, len(m.products[c]))
	for _, p := range m.products[c] {
		cloned := *p
		out = append(out, &cloned)
	}
	return out, nil
}

func (m *mockProductRepository) Create(ctx context.Context, d *domproduct.Draft) (*domproduct.Product, error) {
	if m.createBlock != nil {
		<-m.createBlock
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, d)
	if m.createErr != nil {
		return nil, m.createErr
	}
	p := &domproduct.Product{
		ID:       strconv.Itoa(m.nextID),
		Category: d.Category,
		Name:     d.Name,
		Brand:    d.Brand,
		Price:    d.Price,
		Quantity: d.Quantity,
	}
	m.nextID++
	m.products[d.Category] = append(m.products[d.Category], p)
	return p, nil
}

func (m *mockProductRepository) Update(ctx context.Context, id string, d *domproduct.Draft) (*domproduct.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, updateCall{id: id, draft: d})
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	for _, p := range m.products[d.Category] {
		if p.ID == id {
			p.Name, p.Brand, p.Price, p.Quantity = d.Name, d.Brand, d.Price, d.Quantity
			cloned := *p
			return &cloned, nil
		}
	}
	return nil, domproduct.ErrProductNotFound
}

func (m *mockProductRepository) listCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listCalls)
}

func setupService(repo *mockProductRepository) (*Service, *Session) {
	svc := NewService(repo, nil)
	sess := NewStore().Get("test-session")
	return svc, sess
}

func fill(svc *Service, sess *Session, values map[form.Field]string) {
	for field, value := range values {
		svc.EditField(sess, field, value)
	}
}

func TestValidate(t *testing.T) {
	svc := NewService(newMockProductRepository(), nil)

	tests := []struct {
		name    string
		fields  form.Fields
		missing []form.Field
	}{
		{
			name:   "nameless category needs neither name nor quantity",
			fields: form.Fields{Category: domcategory.Biscuits, Brand: "Good Day", Price: "30"},
		},
		{
			name:   "snacks needs name but no quantity",
			fields: form.Fields{Category: domcategory.Snacks, Name: "Kurkure", Brand: "Haldiram", Price: "20"},
		},
		{
			name:    "dhall without name",
			fields:  form.Fields{Category: domcategory.Dhall, Brand: "Fortune", Price: "120", Quantity: "1kg"},
			missing: []form.Field{form.FieldName},
		},
		{
			name:    "oil still requires a name",
			fields:  form.Fields{Category: domcategory.Oil, Brand: "SVS", Price: "100", Quantity: "1 litre"},
			missing: []form.Field{form.FieldName},
		},
		{
			name:    "snacks without name",
			fields:  form.Fields{Category: domcategory.Snacks, Brand: "Lays", Price: "20"},
			missing: []form.Field{form.FieldName},
		},
		{
			name:    "spices without quantity",
			fields:  form.Fields{Category: domcategory.Spices, Name: "Chili Powder", Brand: "MDH", Price: "20"},
			missing: []form.Field{form.FieldQuantity},
		},
		{
			name:    "empty form",
			fields:  form.Fields{},
			missing: []form.Field{form.FieldCategory, form.FieldBrand, form.FieldPrice, form.FieldName, form.FieldQuantity},
		},
		{
			name:    "biscuits without brand and price",
			fields:  form.Fields{Category: domcategory.Biscuits},
			missing: []form.Field{form.FieldBrand, form.FieldPrice},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Validate(tc.fields)
			if tc.missing == nil {
				require.NoError(t, err)
				return
			}
			var vErr *form.ValidationError
			require.True(t, errors.As(err, &vErr))
			require.ElementsMatch(t, tc.missing, vErr.Missing)
			require.ErrorIs(t, err, form.ErrMissingFields)
		})
	}
}

func TestSubmit_NamelessCategoryPassesAndSends(t *testing.T) {
	repo := newMockProductRepository()
	svc, sess := setupService(repo)
	ctx := context.Background()

	require.NoError(t, svc.ChangeCategory(ctx, sess, domcategory.Biscuits))
	fill(svc, sess, map[form.Field]string{form.FieldBrand: "Marie Gold", form.FieldPrice: "25"})

	require.NoError(t, svc.Submit(ctx, sess, nil))
	require.Len(t, repo.created, 1)
	require.Equal(t, &domproduct.Draft{Category: domcategory.Biscuits, Brand: "Marie Gold", Price: "25"}, repo.created[0])
}

func TestSubmit_DhallWithoutNameIsRejected(t *testing.T) {
	repo := newMockProductRepository()
	svc, sess := setupService(repo)
	ctx := context.Background()

	require.NoError(t, svc.ChangeCategory(ctx, sess, domcategory.Dhall))
	fill(svc, sess, map[form.Field]string{
		form.FieldBrand:    "Fortune",
		form.FieldPrice:    "120",
		form.FieldQuantity: "1kg",
	})
	before := sess.Snapshot().Fields

	err := svc.Submit(ctx, sess, nil)

	var vErr *form.ValidationError
	require.True(t, errors.As(err, &vErr))
	require.Equal(t, []form.Field{form.FieldName}, vErr.Missing)
	require.Empty(t, repo.created)
	require.Empty(t, repo.updated)

	st := svc.View(sess)
	require.Equal(t, before, st.Fields)
	require.False(t, st.Submitting)
	require.Equal(t, []form.Notice{{Kind: form.NoticeValidation, Message: form.MsgFillRequired}}, st.Notices)
}

func TestSubmit_CreateResetsFormAndRefreshesList(t *testing.T) {
	repo := newMockProductRepository()
	svc, sess := setupService(repo)
	ctx := context.Background()

	require.NoError(t, svc.ChangeCategory(ctx, sess, domcategory.Oil))
	fill(svc, sess, map[form.Field]string{
		form.FieldName:     "Sunflower Oil",
		form.FieldBrand:    "SVS",
		form.FieldPrice:    "100",
		form.FieldQuantity: "1 litre",
	})

	image := &domproduct.Image{Filename: "oil.png", ContentType: "image/png", Data: []byte("png")}
	require.NoError(t, svc.Submit(ctx, sess, image))

	require.Len(t, repo.created, 1)
	require.Nil(t, repo.created[0].Image, "image handle is dropped after the request")

	st := svc.View(sess)
	require.Equal(t, form.Fields{}, st.Fields)
	require.Equal(t, form.Creating{}, st.Mode)
	require.False(t, st.Submitting)
	require.Equal(t, domcategory.Oil, st.ListCategory)
	require.Len(t, st.Products, 1)
	require.Equal(t, "Sunflower Oil", st.Products[0].Name)
	require.Equal(t, []domcategory.Category{domcategory.Oil, domcategory.Oil}, repo.listCalls)
	require.Equal(t, []form.Notice{{Kind: form.NoticeSuccess, Message: form.MsgSaved}}, st.Notices)

	// notices are handed out once
	require.Empty(t, svc.View(sess).Notices)
}

func TestStartEdit_ThenSubmitIssuesUpdate(t *testing.T) {
	repo := newMockProductRepository()
	repo.products[domcategory.Spices] = []*domproduct.Product{{
		ID:       "5",
		Category: domcategory.Spices,
		Name:     "Turmeric Powder",
		Brand:    "MDH",
		Price:    "40",
		Quantity: "100g",
		ImageRef: "uploads/5.png",
	}}
	svc, sess := setupService(repo)
	ctx := context.Background()

	require.NoError(t, svc.ChangeCategory(ctx, sess, domcategory.Spices))
	require.NoError(t, svc.StartEdit(ctx, sess, "5"))

	st := sess.Snapshot()
	require.Equal(t, form.Fields{
		Category: domcategory.Spices,
		Name:     "Turmeric Powder",
		Brand:    "MDH",
		Price:    "40",
		Quantity: "100g",
	}, st.Fields)
	require.Equal(t, form.Editing{ID: "5"}, st.Mode)

	svc.EditField(sess, form.FieldPrice, "45")
	require.NoError(t, svc.Submit(ctx, sess, nil))

	require.Empty(t, repo.created)
	require.Len(t, repo.updated, 1)
	require.Equal(t, "5", repo.updated[0].id)
	require.Equal(t, domcategory.Spices, repo.updated[0].draft.Category)
	require.Equal(t, "45", repo.updated[0].draft.Price)

	st = sess.Snapshot()
	require.Equal(t, form.Creating{}, st.Mode)
	require.Equal(t, "45", st.Products[0].Price)
}

func TestStartEdit_ProductWithoutCategoryKeepsList(t *testing.T) {
	repo := newMockProductRepository()
	repo.products[domcategory.Dhall] = []*domproduct.Product{{ID: "9", Name: "Toor Dal", Brand: "Fortune", Price: "120", Quantity: "1kg"}}
	svc, sess := setupService(repo)
	ctx := context.Background()

	require.NoError(t, svc.ChangeCategory(ctx, sess, domcategory.Dhall))
	require.NoError(t, svc.StartEdit(ctx, sess, "9"))

	st := sess.Snapshot()
	require.Equal(t, domcategory.Dhall, st.Fields.Category)
	require.Equal(t, domcategory.Dhall, st.ListCategory)
	require.Len(t, st.Products, 1)
	require.Equal(t, 1, repo.listCallCount())

	require.NoError(t, svc.Submit(ctx, sess, nil))
	require.Len(t, repo.updated, 1)
	require.Equal(t, "9", repo.updated[0].id)
	require.Equal(t, domcategory.Dhall, repo.updated[0].draft.Category)
}

func TestStartEdit_UnknownProduct(t *testing.T) {
	svc, sess := setupService(newMockProductRepository())

	err := svc.StartEdit(context.Background(), sess, "missing")
	require.ErrorIs(t, err, domproduct.ErrProductNotFound)
	require.Equal(t, form.Creating{}, sess.Snapshot().Mode)
}

func TestCancelEdit(t *testing.T) {
	repo := newMockProductRepository()
	repo.products[domcategory.Snacks] = []*domproduct.Product{{ID: "3", Category: domcategory.Snacks, Name: "Kurkure", Brand: "Haldiram", Price: "20"}}
	svc, sess := setupService(repo)
	ctx := context.Background()

	require.NoError(t, svc.ChangeCategory(ctx, sess, domcategory.Snacks))
	require.NoError(t, svc.StartEdit(ctx, sess, "3"))
	svc.CancelEdit(sess)

	st := sess.Snapshot()
	require.Equal(t, form.Creating{}, st.Mode)
	require.Equal(t, form.Fields{}, st.Fields)
	require.Len(t, st.Products, 1, "list stays in place")
}

func TestSubmit_FailurePreservesInput(t *testing.T) {
	repo := newMockProductRepository()
	repo.createErr = &domproduct.RequestError{Op: "create product", StatusCode: 500, Message: "boom"}
	svc, sess := setupService(repo)
	ctx := context.Background()

	require.NoError(t, svc.ChangeCategory(ctx, sess, domcategory.Biscuits))
	fill(svc, sess, map[form.Field]string{form.FieldBrand: "Good Day", form.FieldPrice: "30"})

	err := svc.Submit(ctx, sess, nil)
	require.ErrorIs(t, err, domproduct.ErrRequestFailed)

	st := svc.View(sess)
	require.Equal(t, form.Fields{Category: domcategory.Biscuits, Brand: "Good Day", Price: "30"}, st.Fields)
	require.Equal(t, form.Creating{}, st.Mode)
	require.False(t, st.Submitting)
	require.Len(t, st.Notices, 1)
	require.Equal(t, form.NoticeError, st.Notices[0].Kind)
	require.Equal(t, 1, repo.listCallCount(), "no refresh after a failed save")
	require.Len(t, repo.created, 1, "no automatic retry")
}

func TestSubmit_RejectsConcurrentSubmit(t *testing.T) {
	repo := newMockProductRepository()
	repo.createBlock = make(chan struct{})
	svc, sess := setupService(repo)
	ctx := context.Background()

	require.NoError(t, svc.ChangeCategory(ctx, sess, domcategory.Biscuits))
	fill(svc, sess, map[form.Field]string{form.FieldBrand: "Good Day", form.FieldPrice: "30"})

	done := make(chan error, 1)
	go func() { done <- svc.Submit(ctx, sess, nil) }()

	require.Eventually(t, func() bool { return sess.Snapshot().Submitting }, time.Second, time.Millisecond)
	require.ErrorIs(t, svc.Submit(ctx, sess, nil), ErrSubmitInProgress)

	close(repo.createBlock)
	require.NoError(t, <-done)
	require.Len(t, repo.created, 1)
}

func TestRejectUpload_LeavesSubmitGuardInPlace(t *testing.T) {
	repo := newMockProductRepository()
	repo.createBlock = make(chan struct{})
	svc, sess := setupService(repo)
	ctx := context.Background()

	require.NoError(t, svc.ChangeCategory(ctx, sess, domcategory.Biscuits))
	fill(svc, sess, map[form.Field]string{form.FieldBrand: "Good Day", form.FieldPrice: "30"})

	done := make(chan error, 1)
	go func() { done <- svc.Submit(ctx, sess, nil) }()
	require.Eventually(t, func() bool { return sess.Snapshot().Submitting }, time.Second, time.Millisecond)

	svc.RejectUpload(sess, errors.New("image is larger than 5 MB"))
	require.True(t, sess.Snapshot().Submitting)
	require.ErrorIs(t, svc.Submit(ctx, sess, nil), ErrSubmitInProgress)

	close(repo.createBlock)
	require.NoError(t, <-done)
	require.Len(t, repo.created, 1)
}

func TestLoadProducts_EmptyCategoryClearsWithoutRequest(t *testing.T) {
	repo := newMockProductRepository()
	repo.products[domcategory.Dhall] = []*domproduct.Product{{ID: "1", Category: domcategory.Dhall}}
	svc, sess := setupService(repo)
	ctx := context.Background()

	require.NoError(t, svc.LoadProducts(ctx, sess, domcategory.Dhall))
	require.Len(t, sess.Snapshot().Products, 1)

	require.NoError(t, svc.LoadProducts(ctx, sess, ""))
	require.Empty(t, sess.Snapshot().Products)
	require.Equal(t, 1, repo.listCallCount())
}

func TestLoadProducts_FailureKeepsCacheAndReports(t *testing.T) {
	repo := newMockProductRepository()
	repo.products[domcategory.Dhall] = []*domproduct.Product{{ID: "1", Category: domcategory.Dhall}}
	svc, sess := setupService(repo)
	ctx := context.Background()

	require.NoError(t, svc.LoadProducts(ctx, sess, domcategory.Dhall))
	repo.listErr = &domproduct.RequestError{Op: "list products", Err: errors.New("connection refused")}

	err := svc.Reload(ctx, sess)
	require.ErrorIs(t, err, domproduct.ErrRequestFailed)

	st := svc.View(sess)
	require.Len(t, st.Products, 1)
	require.False(t, st.Loading)
	require.Len(t, st.Notices, 1)
	require.Contains(t, st.Notices[0].Message, "connection refused")
}

// blockingRepository answers list requests only when told to, so responses can
// be delivered out of order.
type blockingRepository struct {
	*mockProductRepository
	release map[domcategory.Category]chan struct{}
	started chan domcategory.Category
}

func (b *blockingRepository) ListByCategory(ctx context.Context, c domcategory.Category) ([]*domproduct.Product, error) {
	b.started <- c
	select {
	case <-b.release[c]:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return b.mockProductRepository.ListByCategory(ctx, c)
}

func TestLoadProducts_SupersededRequestIsCancelledAndDropped(t *testing.T) {
	base := newMockProductRepository()
	base.products[domcategory.Dhall] = []*domproduct.Product{{ID: "d1", Category: domcategory.Dhall}}
	base.products[domcategory.Oil] = []*domproduct.Product{{ID: "o1", Category: domcategory.Oil}}
	repo := &blockingRepository{
		mockProductRepository: base,
		release: map[domcategory.Category]chan struct{}{
			domcategory.Dhall: make(chan struct{}),
			domcategory.Oil:   make(chan struct{}),
		},
		started: make(chan domcategory.Category, 2),
	}
	svc := NewService(repo, nil)
	sess := NewStore().Get("s")
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- svc.ChangeCategory(ctx, sess, domcategory.Dhall) }()
	require.Equal(t, domcategory.Dhall, <-repo.started)

	second := make(chan error, 1)
	go func() { second <- svc.ChangeCategory(ctx, sess, domcategory.Oil) }()
	require.Equal(t, domcategory.Oil, <-repo.started)

	// the dhall request was cancelled when oil superseded it
	require.ErrorIs(t, <-first, ErrListSuperseded)

	close(repo.release[domcategory.Oil])
	require.NoError(t, <-second)

	st := svc.View(sess)
	require.Equal(t, domcategory.Oil, st.ListCategory)
	require.Len(t, st.Products, 1)
	require.Equal(t, "o1", st.Products[0].ID)
	require.Empty(t, st.Notices, "a superseded failure is not reported")
}

func TestChangeCategory_ToNamelessClearsFields(t *testing.T) {
	svc, sess := setupService(newMockProductRepository())
	ctx := context.Background()

	require.NoError(t, svc.ChangeCategory(ctx, sess, domcategory.Masala))
	fill(svc, sess, map[form.Field]string{form.FieldName: "Rasam Masala", form.FieldQuantity: "50g"})

	require.NoError(t, svc.ChangeCategory(ctx, sess, domcategory.Biscuits))

	st := sess.Snapshot()
	require.Empty(t, st.Fields.Name)
	require.Empty(t, st.Fields.Quantity)
}
