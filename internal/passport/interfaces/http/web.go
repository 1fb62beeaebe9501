package http

import (
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"

	"battery-passport/internal/passport/application"
	passport "battery-passport/internal/passport/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

// WebHandler serves the producer intake form, the issuance result page and
// the public verification page.
type WebHandler struct {
	service   *application.PassportService
	resolver  *application.VerificationService
	templates *template.Template
	logger    *log.Logger
}

// NewWebHandler constructs the handler.
func NewWebHandler(service *application.PassportService, resolver *application.VerificationService, logger *log.Logger) (*WebHandler, error) {
	if service == nil {
		return nil, errors.New("web handler: nil service")
	}
	if resolver == nil {
		return nil, errors.New("web handler: nil resolver")
	}
	if logger == nil {
		logger = log.Default()
	}
	templates, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &WebHandler{service: service, resolver: resolver, templates: templates, logger: logger}, nil
}

// ServeHTTP routes GET /, POST /generate and GET /verify/{id}.
func (h *WebHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/" && r.Method == http.MethodGet:
		h.handleForm(w, r)
	case r.URL.Path == "/generate" && r.Method == http.MethodPost:
		h.handleGenerate(w, r)
	case strings.HasPrefix(r.URL.Path, "/verify/") && r.Method == http.MethodGet:
		h.handleVerify(w, r)
	case r.URL.Path == "/" || r.URL.Path == "/generate" || strings.HasPrefix(r.URL.Path, "/verify/"):
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

func (h *WebHandler) handleForm(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusOK, "index.html", nil)
}

func (h *WebHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sub, err := submissionFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Issue(r.Context(), sub)
	if err != nil {
		if errors.Is(err, passport.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Printf("issuance failed: %v", err)
		http.Error(w, "issuance failed", http.StatusInternalServerError)
		return
	}

	h.render(w, http.StatusOK, "passport.html", map[string]any{
		"MasterID":    result.MasterID,
		"PreviewID":   result.PreviewID,
		"RecordCount": result.RecordCount,
		"EPR":         sub.EPRNumber,
		"Brand":       sub.BrandName,
		"LabelPath":   result.LabelPath,
		"PreviewPath": result.PreviewPath,
		"VerifyURL":   h.service.VerifyURL(result.PreviewID),
	})
}

func (h *WebHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/verify/")
	record, err := h.resolver.Resolve(r.Context(), id)
	if err != nil {
		if errors.Is(err, passport.ErrNotFound) {
			h.render(w, http.StatusNotFound, "notfound.html", nil)
			return
		}
		h.logger.Printf("verify %s failed: %v", id, err)
		http.Error(w, "lookup error", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, "verify.html", toRecordResponse(record))
}

func (h *WebHandler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Printf("render %s: %v", name, err)
	}
}

func submissionFromForm(r *http.Request) (passport.Submission, error) {
	sub := passport.Submission{
		ProducerName: strings.TrimSpace(r.FormValue("producer_name")),
		EPRNumber:    strings.TrimSpace(r.FormValue("epr_number")),
		BatteryType:  strings.TrimSpace(r.FormValue("battery_type")),
		BrandName:    strings.TrimSpace(r.FormValue("brand_name")),
		Chemistry:    strings.TrimSpace(r.FormValue("chemistry")),
		BatchSize:    1,
	}
	var err error
	if sub.CapacityAh, err = parseFloatField(r, "capacity"); err != nil {
		return sub, err
	}
	if sub.VoltageV, err = parseFloatField(r, "voltage"); err != nil {
		return sub, err
	}
	if sub.WeightKg, err = parseFloatField(r, "weight"); err != nil {
		return sub, err
	}
	if raw := r.FormValue("batch_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return sub, errors.New("batch_size must be an integer")
		}
		sub.BatchSize = size
	}
	switch strings.ToLower(r.FormValue("is_unique")) {
	case "", "false", "0", "off":
	case "true", "1", "on", "yes":
		sub.IsUnique = true
	default:
		return sub, errors.New("is_unique must be a boolean")
	}
	return sub, nil
}

func parseFloatField(r *http.Request, name string) (float64, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(name + " must be a number")
	}
	return value, nil
}
