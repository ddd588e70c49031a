package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type describeRequest struct {
	Name        string `json:"name"`
	Instruction string `json:"instruction"`
}

func (a *API) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	b, err := a.service.DailyBreakdown(query.Get("date"))
	if err != nil {
		a.fail(w, err)
		return
	}
	shopName := a.service.ShopDetails().Name

	switch strings.ToLower(strings.TrimSpace(query.Get("format"))) {
	case "xlsx":
		data, err := report.Workbook(b)
		if err != nil {
			a.fail(w, err)
			return
		}
		writeFile(w, xlsxContentType, report.FileName(b.Date)+".xlsx", data)
	case "pdf":
		data, err := report.PDF(shopName, b)
		if err != nil {
			a.fail(w, err)
			return
		}
		writeFile(w, "application/pdf", report.FileName(b.Date)+".pdf", data)
	case "html":
		generatedAt := time.Now().In(a.service.Location()).Format("2006-01-02 15:04:05")
		page, err := report.PrintableHTML(shopName, b, generatedAt)
		if err != nil {
			a.fail(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	default:
		writeJSON(w, http.StatusOK, b)
	}
}

func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	collection, ok := domain.ParseCollection(chi.URLParam(r, "collection"))
	if !ok {
		a.writeError(w, http.StatusNotFound, errors.New("unknown collection"))
		return
	}
	data, name, err := a.service.Export(collection)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeFile(w, xlsxContentType, name, data)
}

func (a *API) handleImport(w http.ResponseWriter, r *http.Request) {
	collection, ok := domain.ParseCollection(chi.URLParam(r, "collection"))
	if !ok {
		a.writeError(w, http.StatusNotFound, errors.New("unknown collection"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, http.StatusBadRequest, errors.New("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	result, err := a.service.Import(r.Context(), collection, file, header.Filename)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleDescribe answers 204 when no suggestion is available so the form can
// carry on without one.
func (a *API) handleDescribe(w http.ResponseWriter, r *http.Request) {
	if !a.assistLimiter.Allow(clientKey(r)) {
		a.writeError(w, http.StatusTooManyRequests, errors.New("too many assist requests, try again shortly"))
		return
	}
	var req describeRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		a.writeError(w, http.StatusBadRequest, errors.New("product name is required"))
		return
	}

	suggestion, ok := a.service.Describe(r.Context(), req.Name, req.Instruction)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := a.service.ResetAll(r.Context()); err != nil {
		a.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := a.service.Refresh(r.Context()); err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "refreshed"})
}
