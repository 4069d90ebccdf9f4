package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/domain/model"
	"github.com/secmon-lab/vigia/pkg/domain/types"
	"github.com/secmon-lab/vigia/pkg/usecase"
)

const defaultTopSectors = 3

type reportHandler struct {
	lifecycle *usecase.Lifecycle
}

func reportID(r *http.Request) types.ReportID {
	return types.ReportID(chi.URLParam(r, "id"))
}

func (h *reportHandler) writeReport(w http.ResponseWriter, r *http.Request, status int, report *model.IncidentReport) {
	writeJSON(w, r, status, model.NewReportView(report, h.lifecycle.Now()))
}

func (h *reportHandler) writeReports(w http.ResponseWriter, r *http.Request, reports []*model.IncidentReport) {
	writeJSON(w, r, http.StatusOK, model.NewReportViews(reports, h.lifecycle.Now()))
}

func (h *reportHandler) create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.lifecycle.CreateReport(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeReport(w, r, http.StatusCreated, report)
}

func (h *reportHandler) get(w http.ResponseWriter, r *http.Request) {
	report, err := h.lifecycle.GetReport(r.Context(), reportID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeReport(w, r, http.StatusOK, report)
}

func (h *reportHandler) qualityQueue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := model.ParseQualityFilter(q.Get("q"), q.Get("month"), q.Get("tab"), q.Get("indicator"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	reports, err := h.lifecycle.QualityQueue(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeReports(w, r, reports)
}

func (h *reportHandler) sectorQueue(w http.ResponseWriter, r *http.Request) {
	tab, err := types.ParseSectorTab(r.URL.Query().Get("tab"))
	if err != nil {
		writeError(w, r, goerr.Wrap(err, "invalid query", goerr.T(model.ErrTagValidation), goerr.V("field", "tab")))
		return
	}

	reports, err := h.lifecycle.SectorQueue(r.Context(), chi.URLParam(r, "sector"), tab)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeReports(w, r, reports)
}

func (h *reportHandler) dispatch(w http.ResponseWriter, r *http.Request) {
	report, err := h.lifecycle.DispatchToArea(r.Context(), reportID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeReport(w, r, http.StatusOK, report)
}

func (h *reportHandler) saveDraft(w http.ResponseWriter, r *http.Request) {
	var analysis model.Analysis
	if err := decodeJSON(w, r, &analysis); err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.lifecycle.SaveAnalysisDraft(r.Context(), reportID(r), &analysis)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeReport(w, r, http.StatusOK, report)
}

func (h *reportHandler) completeAnalysis(w http.ResponseWriter, r *http.Request) {
	var analysis model.Analysis
	if err := decodeJSON(w, r, &analysis); err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.lifecycle.CompleteAnalysis(r.Context(), reportID(r), &analysis)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeReport(w, r, http.StatusOK, report)
}

func (h *reportHandler) requestPriority(w http.ResponseWriter, r *http.Request) {
	report, err := h.lifecycle.RequestPriority(r.Context(), reportID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeReport(w, r, http.StatusOK, report)
}

func (h *reportHandler) closeWithoutAction(w http.ResponseWriter, r *http.Request) {
	report, err := h.lifecycle.CloseWithoutAction(r.Context(), reportID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeReport(w, r, http.StatusOK, report)
}

func (h *reportHandler) topSectors(w http.ResponseWriter, r *http.Request) {
	n := defaultTopSectors
	if s := r.URL.Query().Get("n"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			writeError(w, r, goerr.New("n must be a non-negative integer",
				goerr.T(model.ErrTagValidation),
				goerr.V("field", "n"),
				goerr.V("n", s)))
			return
		}
		n = v
	}

	top, err := h.lifecycle.TopSectors(r.Context(), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, top)
}

func (h *reportHandler) indicators(w http.ResponseWriter, r *http.Request) {
	indicators, err := h.lifecycle.Indicators(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, indicators)
}
