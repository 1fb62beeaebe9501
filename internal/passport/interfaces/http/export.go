package http

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"battery-passport/internal/audit"
	"battery-passport/internal/observability/metrics"
	passport "battery-passport/internal/passport/domain"
)

// RegistryExportHandler streams the full battery registry as CSV or XLSX,
// for EPR compliance reporting.
type RegistryExportHandler struct {
	repo        passport.BatteryRepository
	auditLogger audit.Logger
}

// NewRegistryExportHandler constructs the handler.
func NewRegistryExportHandler(repo passport.BatteryRepository, auditLogger audit.Logger) (*RegistryExportHandler, error) {
	if repo == nil {
		return nil, errors.New("registry export: nil repo")
	}
	return &RegistryExportHandler{repo: repo, auditLogger: auditLogger}, nil
}

// ServeHTTP handles GET /api/v1/registry/export.csv and export.xlsx.
func (h *RegistryExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/registry/export.csv":
		h.exportCSV(w, r)
	case "/api/v1/registry/export.xlsx":
		h.exportXLSX(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *RegistryExportHandler) exportCSV(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("csv", result, time.Since(start))
	}()

	records, err := h.repo.List(r.Context())
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "list records error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="battery_registry.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write(registryColumns())
	for _, record := range records {
		_ = writer.Write([]string{
			record.ID,
			record.ProducerName,
			record.EPRNumber,
			record.BatteryType,
			record.BrandName,
			record.Chemistry,
			strconv.FormatFloat(record.CapacityAh, 'f', -1, 64),
			strconv.FormatFloat(record.VoltageV, 'f', -1, 64),
			strconv.FormatFloat(record.WeightKg, 'f', -1, 64),
			strconv.Itoa(record.BatchSize),
			record.MfgDate.Format("2006-01-02"),
		})
	}
	writer.Flush()

	h.logAudit(r, "csv", len(records))
}

func (h *RegistryExportHandler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("xlsx", result, time.Since(start))
	}()

	records, err := h.repo.List(r.Context())
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "list records error", http.StatusInternalServerError)
		return
	}
	data, err := BuildRegistryXLSX(records)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export xlsx error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="battery_registry.xlsx"`)
	_, _ = w.Write(data)

	h.logAudit(r, "xlsx", len(records))
}

func (h *RegistryExportHandler) logAudit(r *http.Request, format string, count int) {
	if h.auditLogger == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{"format": format, "record_count": count})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Action:       "registry.export",
		ResourceType: "registry",
		ResourceID:   format,
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

// BuildRegistryXLSX renders the registry as a single-sheet workbook.
func BuildRegistryXLSX(records []passport.BatteryRecord) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "registry"
	f.SetSheetName("Sheet1", sheet)

	for col, name := range registryColumns() {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, cell, name)
	}
	for i, record := range records {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), record.ID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), record.ProducerName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), record.EPRNumber)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), record.BatteryType)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), record.BrandName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), record.Chemistry)
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), record.CapacityAh)
		_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", row), record.VoltageV)
		_ = f.SetCellValue(sheet, fmt.Sprintf("I%d", row), record.WeightKg)
		_ = f.SetCellValue(sheet, fmt.Sprintf("J%d", row), record.BatchSize)
		_ = f.SetCellValue(sheet, fmt.Sprintf("K%d", row), record.MfgDate.Format("2006-01-02"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func registryColumns() []string {
	return []string{
		"id",
		"producer_name",
		"epr_number",
		"battery_type",
		"brand_name",
		"chemistry",
		"capacity_ah",
		"voltage_v",
		"weight_kg",
		"batch_size",
		"mfg_date",
	}
}
