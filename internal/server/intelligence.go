package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geo-intel/internal/model"
	"github.com/sells-group/geo-intel/internal/validate"
)

// Envelope is the body of an intelligence response.
type Envelope struct {
	Intelligence *model.IntelligenceResponse `json:"intelligence"`
	DataQuality  validate.DataQuality         `json:"data_quality"`
	Cached       bool                         `json:"cached"`
}

type request struct {
	workspaceID string
	brand       string
	domain      string
	refresh     bool
	opts        model.Options
}

func (s *Server) handleIntelligence(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(chi.URLParam(r, "workspaceID"), r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	key := cacheKey(req)
	if !req.refresh {
		if resp := s.cached(ctx, key); resp != nil {
			s.respond(w, resp, true)
			return
		}
	}

	resp := s.orch.Orchestrate(ctx, req.workspaceID, req.brand, req.domain, req.opts)
	s.cache(ctx, key, resp)
	s.respond(w, resp, false)
}

func parseRequest(workspaceID string, q url.Values) (request, error) {
	req := request{
		workspaceID: strings.TrimSpace(workspaceID),
		brand:       strings.TrimSpace(q.Get("brand")),
		domain:      strings.TrimSpace(q.Get("domain")),
	}
	if req.workspaceID == "" {
		return req, eris.New("workspace id is required")
	}
	if req.brand == "" || req.domain == "" {
		return req, eris.New("brand and domain are required")
	}

	refresh, err := boolParam(q, "refresh")
	if err != nil {
		return req, err
	}
	req.refresh = refresh != nil && *refresh

	if req.opts.IncludeOpportunities, err = boolParam(q, "include_opportunities"); err != nil {
		return req, err
	}
	if req.opts.IncludeRecommendations, err = boolParam(q, "include_recommendations"); err != nil {
		return req, err
	}
	if raw := q.Get("max_opportunities"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return req, eris.Errorf("max_opportunities must be a positive integer, got %q", raw)
		}
		req.opts.MaxOpportunities = n
	}
	return req, nil
}

func boolParam(q url.Values, name string) (*bool, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, eris.Errorf("%s must be a boolean, got %q", name, raw)
	}
	return &v, nil
}

// cacheKey identifies a request for caching. The refresh flag is not part of
// the key so a refresh overwrites the entry normal requests read.
func cacheKey(req request) string {
	v := url.Values{}
	v.Set("brand", strings.ToLower(req.brand))
	v.Set("domain", strings.ToLower(req.domain))
	v.Set("opportunities", strconv.FormatBool(req.opts.WantOpportunities()))
	v.Set("recommendations", strconv.FormatBool(req.opts.WantRecommendations()))
	v.Set("max_opportunities", strconv.Itoa(req.opts.MaxOpportunities))
	return "intelligence/" + req.workspaceID + "?" + v.Encode()
}

func (s *Server) cached(ctx context.Context, key string) *model.IntelligenceResponse {
	if s.store == nil {
		return nil
	}
	data, err := s.store.GetCachedReport(ctx, key)
	if err != nil {
		zap.L().Warn("server: cache read failed", zap.String("key", key), zap.Error(err))
		s.recordCache("error")
		return nil
	}
	if data == nil {
		s.recordCache("miss")
		return nil
	}
	var resp model.IntelligenceResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		zap.L().Warn("server: cached report is corrupt", zap.String("key", key), zap.Error(err))
		s.recordCache("error")
		return nil
	}
	s.recordCache("hit")
	return &resp
}

func (s *Server) cache(ctx context.Context, key string, resp *model.IntelligenceResponse) {
	if s.store == nil || resp == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		zap.L().Warn("server: encode report for cache", zap.Error(err))
		return
	}
	if err := s.store.SetCachedReport(ctx, key, data, s.cacheTTL); err != nil {
		zap.L().Warn("server: cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Server) respond(w http.ResponseWriter, resp *model.IntelligenceResponse, cached bool) {
	status := http.StatusOK
	if !resp.Complete() {
		status = http.StatusPartialContent
	}
	if s.metrics != nil {
		s.metrics.RecordResponse(status)
	}
	writeJSON(w, status, Envelope{
		Intelligence: resp,
		DataQuality:  s.orch.ValidateDataQuality(resp),
		Cached:       cached,
	})
}

func (s *Server) recordCache(result string) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(result)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("server: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
