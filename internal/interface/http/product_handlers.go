package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	domcategory "example.com/grocery-form/internal/domain/category"
	"example.com/grocery-form/internal/domain/form"
	domproduct "example.com/grocery-form/internal/domain/product"
	formuc "example.com/grocery-form/internal/usecase/productform"
)

// multipart headers and text fields on top of the image itself
const formOverhead = 1 << 20

var (
	errBadCategory   = errors.New("unknown category")
	errImageTooLarge = errors.New("image too large")
)

var editableFields = []form.Field{form.FieldName, form.FieldBrand, form.FieldPrice, form.FieldQuantity}

func (a *API) handleFormPage(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	a.render(w, buildPageView(a.formSvc.View(sess), a.imageBase))
}

func (a *API) handleChangeCategory(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if err := a.parseForm(w, r); err != nil {
		a.rejectForm(w, r, sess, err)
		return
	}
	defer cleanupForm(r)

	c, err := domcategory.Parse(r.PostFormValue("category"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errBadCategory)
		return
	}

	a.applyFields(sess, r)
	a.finish(w, r, a.formSvc.ChangeCategory(r.Context(), sess, c))
}

func (a *API) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if err := a.parseForm(w, r); err != nil {
		a.rejectForm(w, r, sess, err)
		return
	}
	defer cleanupForm(r)

	if raw, ok := r.PostForm[string(form.FieldCategory)]; ok {
		c, err := domcategory.Parse(first(raw))
		if err != nil {
			respondError(w, http.StatusBadRequest, errBadCategory)
			return
		}
		if c != sess.Snapshot().Fields.Category {
			a.formSvc.EditField(sess, form.FieldCategory, c.String())
		}
	}
	a.applyFields(sess, r)

	image, err := a.readImage(r)
	if err != nil {
		a.rejectForm(w, r, sess, err)
		return
	}
	a.finish(w, r, a.formSvc.Submit(r.Context(), sess, image))
}

func (a *API) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	a.formSvc.CancelEdit(getSession(r.Context()))
	redirectHome(w, r)
}

func (a *API) handleReload(w http.ResponseWriter, r *http.Request) {
	a.finish(w, r, a.formSvc.Reload(r.Context(), getSession(r.Context())))
}

func (a *API) handleStartEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a.finish(w, r, a.formSvc.StartEdit(r.Context(), getSession(r.Context()), id))
}

// parseForm accepts urlencoded and multipart bodies alike; the body is capped at
// the upload limit.
func (a *API) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadSize+formOverhead)
	err := r.ParseMultipartForm(a.maxUploadSize)
	if errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	return err
}

func cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// rejectForm puts an unreadable submission on the page as a notice. Anything but
// an oversized body is answered as a bad request.
func (a *API) rejectForm(w http.ResponseWriter, r *http.Request, sess *formuc.Session, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, errImageTooLarge) {
		a.formSvc.RejectUpload(sess, fmt.Errorf("image is larger than %d MB", a.maxUploadSize>>20))
		redirectHome(w, r)
		return
	}
	respondError(w, http.StatusBadRequest, err)
}

// applyFields copies whatever fields the browser sent into the session.
func (a *API) applyFields(sess *formuc.Session, r *http.Request) {
	for _, f := range editableFields {
		if values, ok := r.PostForm[string(f)]; ok {
			a.formSvc.EditField(sess, f, first(values))
		}
	}
}

// readImage returns the chosen image, or nil when none was sent. Images over the
// upload limit are rejected with errImageTooLarge.
func (a *API) readImage(r *http.Request) (*domproduct.Image, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if header.Size > a.maxUploadSize {
		return nil, errImageTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, a.maxUploadSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > a.maxUploadSize {
		return nil, errImageTooLarge
	}
	if len(data) == 0 {
		return nil, nil
	}

	contentType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &domproduct.Image{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// finish sends the browser back to the page. Failures the page already reports
// as a notice are not errors at this level.
func (a *API) finish(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *form.ValidationError
	switch {
	case err == nil,
		errors.As(err, &vErr),
		errors.Is(err, domproduct.ErrRequestFailed),
		errors.Is(err, formuc.ErrListSuperseded),
		errors.Is(err, formuc.ErrSubmitInProgress):
		redirectHome(w, r)
	case errors.Is(err, domproduct.ErrProductNotFound):
		handleDomainError(w, err)
	default:
		a.logger.Error("form action failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		handleDomainError(w, err)
	}
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
