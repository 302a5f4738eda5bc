package health

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// ReportView is the JSON form of a Report.
type ReportView struct {
	Status    Status               `json:"status"`
	Timestamp string               `json:"timestamp"`
	Checks    map[string]CheckView `json:"checks,omitempty"`
}

// CheckView is the JSON form of a single Result.
type CheckView struct {
	Status   Status         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// View converts r for JSON encoding.
func (r Report) View() ReportView {
	v := ReportView{
		Status:    r.Status,
		Timestamp: r.CheckedAt.UTC().Format(time.RFC3339),
		Checks:    make(map[string]CheckView, len(r.Checks)),
	}
	for name, res := range r.Checks {
		v.Checks[name] = res.View()
	}
	return v
}

// View converts r for JSON encoding.
func (r Result) View() CheckView {
	v := CheckView{
		Status:   r.Status,
		Message:  r.Message,
		Duration: r.Duration.String(),
		Details:  r.Details,
	}
	if r.Error != nil {
		v.Error = r.Error.Error()
	}
	return v
}

// LivenessHandler answers 200 as long as the process can serve HTTP.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "OK")
	}
}

// ReadinessHandler runs every check and answers with the overall status as
// plain text. Degraded is still ready.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := agg.Run(r.Context()).Status
		writeText(w, probeCode(status), strings.ToUpper(okOr(status)))
	}
}

// DetailedHandler runs every check and answers with the full report.
func DetailedHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := agg.Run(r.Context())
		writeJSON(w, probeCode(report.Status), report.View())
	}
}

// SingleCheckHandler runs the checker named by the {name} path value.
func SingleCheckHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := agg.Check(r.Context(), r.PathValue("name"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, probeCode(res.Status), res.View())
	}
}

// RegisterHandlers mounts /healthz, /readyz, /health and /health/{name}.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator) {
	mux.HandleFunc("GET /healthz", LivenessHandler())
	mux.HandleFunc("GET /readyz", ReadinessHandler(agg))
	mux.HandleFunc("GET /health", DetailedHandler(agg))
	mux.HandleFunc("GET /health/{name}", SingleCheckHandler(agg))
}

func okOr(s Status) string {
	if s == StatusHealthy {
		return "ok"
	}
	return s.String()
}

func probeCode(s Status) int {
	if s.Serving() {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
