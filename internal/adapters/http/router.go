package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
	"github.com/uinjkt-dev/campus-assistant/internal/core/ports"
	"github.com/uinjkt-dev/campus-assistant/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	chat    ports.ChatService
	eval    ports.AnswerEvaluator
	ingest  ports.CorpusIngestor
	metrics *metrics.HTTPServerMetrics
	limiter *rateLimiter
	extra   map[string]http.Handler
}

func NewRouter(
	chat ports.ChatService,
	eval ports.AnswerEvaluator,
	ingest ports.CorpusIngestor,
	m *metrics.HTTPServerMetrics,
	limiter *rateLimiter,
) *Router {
	return &Router{
		chat:    chat,
		eval:    eval,
		ingest:  ingest,
		metrics: m,
		limiter: limiter,
	}
}

// Mount registers an extra handler, such as the WhatsApp webhook, on
// the router's mux. Must be called before Handler.
func (rt *Router) Mount(pattern string, h http.Handler) {
	if rt.extra == nil {
		rt.extra = map[string]http.Handler{}
	}
	rt.extra[pattern] = h
}

// MountLimited is Mount behind the router's per-client rate limiter.
func (rt *Router) MountLimited(pattern string, h http.Handler) {
	rt.Mount(pattern, http.HandlerFunc(rt.limited(h.ServeHTTP)))
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/chat/query", rt.limited(rt.chatQuery))
	mux.HandleFunc("/v1/corpus/uploads", rt.corpusUploads)
	mux.HandleFunc("/v1/eval", rt.evaluate)
	for pattern, h := range rt.extra {
		mux.Handle(pattern, h)
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) limited(next http.HandlerFunc) http.HandlerFunc {
	if rt.limiter == nil {
		return next
	}
	return rt.limiter.middleware(next)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) chatQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string            `json:"question"`
		History  []domain.ChatTurn `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	result, err := rt.chat.AnswerQuery(r.Context(), req.Question, req.History)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordAnswer(
			serviceName,
			"/v1/chat/query",
			string(result.Diagnostics.Intent),
			result.Diagnostics.ModelUsed,
			len(result.Sources),
			time.Since(start),
		)
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) corpusUploads(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadCorpusSheet(w, r)
	case http.MethodGet:
		rt.listCorpusUploads(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) uploadCorpusSheet(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	rec, err := rt.ingest.Upload(r.Context(), fileHeader.Filename, file)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, rec)
}

func (rt *Router) listCorpusUploads(w http.ResponseWriter, r *http.Request) {
	records, err := rt.ingest.ListUploads(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"uploads": records})
}

func (rt *Router) evaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
		Context  string `json:"context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.Answer) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question and answer are required"})
		return
	}

	verdict := rt.eval.Evaluate(r.Context(), req.Question, req.Answer, req.Context)
	if rt.metrics != nil {
		rt.metrics.RecordEvalScore(serviceName, verdict.Score)
	}
	writeJSON(w, http.StatusOK, verdict)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
