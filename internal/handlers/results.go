package handlers

import (
	"net/http"
	"strconv"

	"github.com/abrezinsky/gymscore/internal/models"
	"github.com/abrezinsky/gymscore/internal/services"
)

// resultsQuery reads ?q=&competition_id=&sort=&order=&page=&per_page=.
// Unparseable paging values fall back to the defaults; per_page=all
// disables paging.
func resultsQuery(r *http.Request) (services.ResultsQuery, error) {
	v := r.URL.Query()
	q := services.NewResultsQuery(v.Get("q"))
	q.SortBy = v.Get("sort")
	q.SortOrder = v.Get("order")

	compID, err := queryInt(r, "competition_id")
	if err != nil {
		return q, err
	}
	if compID > 0 {
		q.CompetitionID = &compID
	}

	q.Page, _ = strconv.Atoi(v.Get("page"))
	if pp := v.Get("per_page"); pp == "all" {
		q.PerPage = models.ShowAll
	} else {
		q.PerPage, _ = strconv.Atoi(pp)
	}
	return q, nil
}

// handleSearchResults returns one page of score rows
func (h *Handlers) handleSearchResults(w http.ResponseWriter, r *http.Request) {
	q, err := resultsQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}
	page, err := h.Results.Search(r.Context(), q)
	if err != nil {
		respondError(w, err)
		return
	}
	if page.Items == nil {
		page.Items = []models.ResultRow{}
	}
	respondOK(w, newResultsPageResponse(page))
}

// handleExportResults downloads every row matching the search as a workbook
func (h *Handlers) handleExportResults(w http.ResponseWriter, r *http.Request) {
	q, err := resultsQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}
	data, err := h.Results.ExportXLSX(r.Context(), q)
	if err != nil {
		respondError(w, err)
		return
	}
	respondFile(w, xlsxContentType, "results.xlsx", data)
}

// handleLiveQR returns a PNG QR code linking to the live board
func (h *Handlers) handleLiveQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Results.LiveQR(r.Context(), h.BaseURL)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	respondFile(w, "image/png", "", png)
}
