package catalogapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	domcategory "example.com/grocery-form/internal/domain/category"
	domproduct "example.com/grocery-form/internal/domain/product"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxResponseBytes = 1 << 20

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// ProductRepository reads and writes products through the remote catalog API.
type ProductRepository struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewProductRepository(opts Options) *ProductRepository {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductRepository{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// productPayload mirrors the API document. The id and price come back either as
// strings or numbers depending on the backend, so they are coerced afterwards.
type productPayload struct {
	ID       any    `json:"_id"`
	AltID    any    `json:"id"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Price    any    `json:"price"`
	Quantity any    `json:"quantity"`
	Image    any    `json:"image"`
}

// toDomain falls back to c when the document carries no usable category.
func (p productPayload) toDomain(c domcategory.Category) *domproduct.Product {
	id := idString(p.ID)
	if id == "" {
		id = idString(p.AltID)
	}
	if parsed, err := domcategory.Parse(p.Category); err == nil && parsed != "" {
		c = parsed
	}
	return &domproduct.Product{
		ID:       id,
		Category: c,
		Name:     p.Name,
		Brand:    p.Brand,
		Price:    cast.ToString(p.Price),
		Quantity: cast.ToString(p.Quantity),
		ImageRef: cast.ToString(p.Image),
	}
}

// idString handles plain ids and extended-JSON {"$oid": "..."} objects.
func idString(v any) string {
	if m, ok := v.(map[string]any); ok {
		return cast.ToString(m["$oid"])
	}
	return cast.ToString(v)
}

func (r *ProductRepository) ListByCategory(ctx context.Context, c domcategory.Category) ([]*domproduct.Product, error) {
	const op = "list products"
	endpoint := r.baseURL + "/products/" + url.PathEscape(c.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &domproduct.RequestError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	body, err := r.do(req, op)
	if err != nil {
		return nil, err
	}

	var payload []productPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &domproduct.RequestError{Op: op, Message: "invalid response body", Err: err}
	}

	products := make([]*domproduct.Product, 0, len(payload))
	for _, p := range payload {
		products = append(products, p.toDomain(c))
	}
	return products, nil
}

func (r *ProductRepository) Create(ctx context.Context, d *domproduct.Draft) (*domproduct.Product, error) {
	return r.send(ctx, "create product", http.MethodPost, r.baseURL+"/product", d)
}

func (r *ProductRepository) Update(ctx context.Context, id string, d *domproduct.Draft) (*domproduct.Product, error) {
	endpoint := fmt.Sprintf("%s/product/%s/%s", r.baseURL, url.PathEscape(d.Category.String()), url.PathEscape(id))
	p, err := r.send(ctx, "update product", http.MethodPut, endpoint, d)
	if err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = id
	}
	return p, nil
}

func (r *ProductRepository) send(ctx context.Context, op, method, endpoint string, d *domproduct.Draft) (*domproduct.Product, error) {
	body, contentType, err := encodeDraft(d)
	if err != nil {
		return nil, &domproduct.RequestError{Op: op, Message: "encode payload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &domproduct.RequestError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	respBody, err := r.do(req, op)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return draftProduct(d), nil
	}

	var payload productPayload
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, &domproduct.RequestError{Op: op, Message: "invalid response body", Err: err}
	}
	return payload.toDomain(d.Category), nil
}

func (r *ProductRepository) do(req *http.Request, op string) ([]byte, error) {
	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Warn("catalog request failed",
			zap.String("op", op),
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Error(err),
		)
		return nil, &domproduct.RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domproduct.RequestError{Op: op, StatusCode: resp.StatusCode, Message: "read response body", Err: err}
	}

	r.logger.Debug("catalog request",
		zap.String("op", op),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domproduct.RequestError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(body, resp.Status)}
	}
	return body, nil
}

// errorMessage pulls a readable message out of an error response.
func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fallback
	}
	return truncate(text, 200)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeDraft writes every text field (empty ones included) and the image only
// when one was picked.
func encodeDraft(d *domproduct.Draft) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ key, value string }{
		{"name", d.Name},
		{"brand", d.Brand},
		{"category", d.Category.String()},
		{"price", d.Price},
		{"quantity", d.Quantity},
	}
	for _, f := range fields {
		if err := w.WriteField(f.key, f.value); err != nil {
			return nil, "", err
		}
	}

	if d.Image != nil {
		contentType := d.Image.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, quoteEscaper.Replace(d.Image.Filename)))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(d.Image.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func draftProduct(d *domproduct.Draft) *domproduct.Product {
	return &domproduct.Product{
		Category: d.Category,
		Name:     d.Name,
		Brand:    d.Brand,
		Price:    d.Price,
		Quantity: d.Quantity,
	}
}
