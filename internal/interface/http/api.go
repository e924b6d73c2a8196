package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	domcategory "example.com/grocery-form/internal/domain/category"
	"example.com/grocery-form/internal/domain/form"
	domproduct "example.com/grocery-form/internal/domain/product"
	"example.com/grocery-form/internal/infra/security"
	formuc "example.com/grocery-form/internal/usecase/productform"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultMaxUploadSize = 5 << 20

type API struct {
	formSvc       *formuc.Service
	sessions      *formuc.Store
	tokenSvc      *security.SessionTokenService
	templates     *Templates
	logger        *zap.Logger
	maxUploadSize int64
	secureCookie  bool
	imageBase     *url.URL
}

type Dependencies struct {
	FormService  *formuc.Service
	Sessions     *formuc.Store
	TokenService *security.SessionTokenService
	Logger       *zap.Logger
	// MaxUploadSize caps the image of one submission, in bytes.
	MaxUploadSize int64
	SecureCookie  bool
	// ImageBaseURL resolves relative image references returned by the catalog.
	ImageBaseURL string
}

func NewAPI(deps Dependencies) (*API, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxUpload := deps.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadSize
	}
	var imageBase *url.URL
	if deps.ImageBaseURL != "" {
		imageBase, err = url.Parse(deps.ImageBaseURL)
		if err != nil {
			return nil, err
		}
	}
	return &API{
		formSvc:       deps.FormService,
		sessions:      deps.Sessions,
		tokenSvc:      deps.TokenService,
		templates:     templates,
		logger:        logger,
		maxUploadSize: maxUpload,
		secureCookie:  deps.SecureCookie,
		imageBase:     imageBase,
	}, nil
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(a.requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/categories", a.handleListCategories)
		r.Get("/categories/{category}/options", a.handleCategoryOptions)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(a.sessionMiddleware)
		pr.Get("/", a.handleFormPage)
		pr.Post("/form/category", a.handleChangeCategory)
		pr.Post("/form/submit", a.handleSubmit)
		pr.Post("/form/cancel", a.handleCancelEdit)
		pr.Post("/products/reload", a.handleReload)
		pr.Post("/products/{id}/edit", a.handleStartEdit)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func handleDomainError(w http.ResponseWriter, err error) {
	var vErr *form.ValidationError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Details: vErr.Missing})
	case errors.As(err, &maxErr):
		respondError(w, http.StatusRequestEntityTooLarge, err)
	case errors.Is(err, domcategory.ErrUnknownCategory),
		errors.Is(err, domproduct.ErrProductNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, formuc.ErrSubmitInProgress):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, domproduct.ErrRequestFailed):
		// Lỗi từ catalog API phía sau → 502
		respondError(w, http.StatusBadGateway, err)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}
