package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"econdash/internal/chart"
	"econdash/internal/indicator"
	"econdash/internal/series"
	"econdash/internal/summary"
)

const maxChartSize = 4000

type summaryResponse struct {
	Country    string            `json:"country"`
	Indicators []chart.Overlay   `json:"indicators"`
	Missing    map[string]string `json:"missing,omitempty"`
}

type latestResponse struct {
	Country string       `json:"country"`
	From    int          `json:"from"`
	To      int          `json:"to"`
	Rows    []series.Row `json:"rows"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) listCountries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, indicator.Countries())
}

func (s *Server) listIndicators(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, indicator.Tracked())
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	sum, ok := s.loadSummary(w, r)
	if !ok {
		return
	}
	opts, err := parseOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := summaryResponse{
		Country:    sum.Country,
		Indicators: []chart.Overlay{},
		Missing:    map[string]string{},
	}
	for _, ind := range sum.Indicators() {
		table, ok := sum.Get(ind.Name)
		if !ok {
			resp.Missing[ind.Name] = missingReason(sum.Missing[ind.Name])
			continue
		}
		overlay, err := chart.Build(table, ind, opts)
		if errors.Is(err, chart.ErrNoData) {
			resp.Missing[ind.Name] = "no data in range"
			continue
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		resp.Indicators = append(resp.Indicators, overlay)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getLatest(w http.ResponseWriter, r *http.Request) {
	sum, ok := s.loadSummary(w, r)
	if !ok {
		return
	}
	defaultFrom, maxYear, ok := sum.Tidy().DefaultRange()
	if !ok {
		writeError(w, http.StatusNotFound, "no data returned for "+sum.Country)
		return
	}
	if r.URL.Query().Get("to") != "" {
		// a lone upper bound reaches back to the first year
		defaultFrom, _, _ = sum.YearRange()
	}

	from, err := queryInt(r, "from", defaultFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := queryInt(r, "to", maxYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows := sum.Latest(from, to)
	if rows == nil {
		rows = []series.Row{}
	}
	writeJSON(w, http.StatusOK, latestResponse{Country: sum.Country, From: from, To: to, Rows: rows})
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSuffix(chi.URLParam(r, "code"), ".png")
	ind, ok := indicator.ByCode(code)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown indicator "+code)
		return
	}

	sum, ok := s.loadSummary(w, r)
	if !ok {
		return
	}
	table, ok := sum.Get(ind.Name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no data for %s in %s", ind.Name, sum.Country))
		return
	}

	opts, err := parseOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	overlay, err := chart.Build(table, ind, opts)
	switch {
	case errors.Is(err, chart.ErrNoData):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, overlay, opts.Width, opts.Height); err != nil {
		if errors.Is(err, chart.ErrTooFewPoints) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.log.Error().Err(err).Str("indicator", ind.Code).Msg("chart render failed")
		writeError(w, http.StatusInternalServerError, "chart render failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// loadSummary resolves the {country} parameter and fetches its summary,
// writing an error response and returning false when that fails.
func (s *Server) loadSummary(w http.ResponseWriter, r *http.Request) (*summary.CountrySummary, bool) {
	code, err := indicator.ResolveCountry(chi.URLParam(r, "country"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return s.summaries.Summarize(r.Context(), code), true
}

func parseOptions(r *http.Request) (chart.Options, error) {
	opts := chart.DefaultOptions()
	var err error

	if opts.From, err = queryInt(r, "from", 0); err != nil {
		return opts, err
	}
	if opts.To, err = queryInt(r, "to", 0); err != nil {
		return opts, err
	}
	if opts.Window, err = queryInt(r, "window", opts.Window); err != nil {
		return opts, err
	}
	if opts.Width, err = queryInt(r, "width", opts.Width); err != nil {
		return opts, err
	}
	if opts.Height, err = queryInt(r, "height", opts.Height); err != nil {
		return opts, err
	}
	if v := r.URL.Query().Get("mean"); v != "" {
		if opts.ShowMean, err = strconv.ParseBool(v); err != nil {
			return opts, fmt.Errorf("invalid mean %q", v)
		}
	}

	if !chart.ValidWindow(opts.Window) {
		return opts, fmt.Errorf("invalid window %d (want one of %v)", opts.Window, chart.Windows)
	}
	if opts.Width <= 0 || opts.Width > maxChartSize || opts.Height <= 0 || opts.Height > maxChartSize {
		return opts, fmt.Errorf("chart size must be between 1 and %d pixels", maxChartSize)
	}
	return opts, nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}

func missingReason(err error) string {
	if err == nil {
		return "no data"
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		_ = err // Client disconnected
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
