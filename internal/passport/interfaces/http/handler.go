package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"battery-passport/internal/audit"
	"battery-passport/internal/passport/application"
	passport "battery-passport/internal/passport/domain"
)

// Handler provides the JSON passport API: issuing passports and fetching
// records by id.
type Handler struct {
	service     *application.PassportService
	resolver    *application.VerificationService
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *application.PassportService, resolver *application.VerificationService, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("passport handler: nil service")
	}
	if resolver == nil {
		return nil, errors.New("passport handler: nil resolver")
	}
	return &Handler{service: service, resolver: resolver, auditLogger: auditLogger}, nil
}

// IssueRequest is the JSON issuance payload.
type IssueRequest struct {
	ProducerName string  `json:"producer_name"`
	EPRNumber    string  `json:"epr_number"`
	BatteryType  string  `json:"battery_type"`
	BrandName    string  `json:"brand_name"`
	Chemistry    string  `json:"chemistry"`
	CapacityAh   float64 `json:"capacity_ah"`
	VoltageV     float64 `json:"voltage_v"`
	WeightKg     float64 `json:"weight_kg"`
	BatchSize    int     `json:"batch_size"`
	IsUnique     bool    `json:"is_unique"`
}

// RecordResponse is the JSON view of a persisted record.
type RecordResponse struct {
	ID           string  `json:"id"`
	ProducerName string  `json:"producer_name"`
	EPRNumber    string  `json:"epr_number"`
	BatteryType  string  `json:"battery_type"`
	BrandName    string  `json:"brand_name"`
	Chemistry    string  `json:"chemistry"`
	CapacityAh   float64 `json:"capacity_ah"`
	VoltageV     float64 `json:"voltage_v"`
	WeightKg     float64 `json:"weight_kg"`
	BatchSize    int     `json:"batch_size"`
	MfgDate      string  `json:"mfg_date"`
}

// ServeHTTP handles POST /api/v1/passports and GET /api/v1/passports/{id}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleIssue(w, r)
	case http.MethodGet:
		h.handleGet(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req IssueRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.BatchSize == 0 {
		req.BatchSize = 1
	}

	result, err := h.service.Issue(r.Context(), passport.Submission{
		ProducerName: req.ProducerName,
		EPRNumber:    req.EPRNumber,
		BatteryType:  req.BatteryType,
		BrandName:    req.BrandName,
		Chemistry:    req.Chemistry,
		CapacityAh:   req.CapacityAh,
		VoltageV:     req.VoltageV,
		WeightKg:     req.WeightKg,
		BatchSize:    req.BatchSize,
		IsUnique:     req.IsUnique,
	})
	if err != nil {
		respondIssueError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(result)

	h.logAudit(r, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/passports/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "passport id required", http.StatusBadRequest)
		return
	}
	record, err := h.resolver.Resolve(r.Context(), id)
	if err != nil {
		if errors.Is(err, passport.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "lookup error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toRecordResponse(record))
}

func (h *Handler) logAudit(r *http.Request, result *application.IssueResult) {
	if h.auditLogger == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{
		"preview_id":   result.PreviewID,
		"record_count": result.RecordCount,
	})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Action:       "passport.issue",
		ResourceType: "battery_batch",
		ResourceID:   result.MasterID,
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func toRecordResponse(record *passport.BatteryRecord) RecordResponse {
	return RecordResponse{
		ID:           record.ID,
		ProducerName: record.ProducerName,
		EPRNumber:    record.EPRNumber,
		BatteryType:  record.BatteryType,
		BrandName:    record.BrandName,
		Chemistry:    record.Chemistry,
		CapacityAh:   record.CapacityAh,
		VoltageV:     record.VoltageV,
		WeightKg:     record.WeightKg,
		BatchSize:    record.BatchSize,
		MfgDate:      record.MfgDate.Format("2006-01-02"),
	}
}

func respondIssueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, passport.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, passport.ErrDuplicateID):
		// Generator defect, not a client problem.
		http.Error(w, "identifier collision", http.StatusInternalServerError)
	default:
		http.Error(w, "issuance failed", http.StatusInternalServerError)
	}
}
