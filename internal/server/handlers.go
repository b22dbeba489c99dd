package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/williamcotton/gramgraph/pkg/buildinfo"
	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
	"github.com/williamcotton/gramgraph/pkg/observability"
	"github.com/williamcotton/gramgraph/pkg/pipeline"
	"github.com/williamcotton/gramgraph/pkg/render"
	"github.com/williamcotton/gramgraph/pkg/table"
)

// renderRequest is the body of /v1/render and /v1/scene.
type renderRequest struct {
	Spec    string `json:"spec"`
	CSV     string `json:"csv"`
	Format  string `json:"format,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Title   string `json:"title,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`
}

type errorBody struct {
	Error struct {
		Code    gerrors.Code `json:"code"`
		Message string       `json:"message"`
	} `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Format == "" {
		req.Format = render.FormatSVG
	}
	s.serve(w, r, req, strings.ToLower(req.Format))
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serve(w, r, req, render.FormatJSON)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request, req *renderRequest, format string) {
	tbl, err := table.ReadCSV(strings.NewReader(req.CSV))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Spec:    req.Spec,
		Width:   req.Width,
		Height:  req.Height,
		Title:   req.Title,
		Formats: []string{format},
		Refresh: req.Refresh,
	}, tbl)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cacheState := "miss"
	if res.CacheInfo.RenderHit {
		cacheState = "hit"
	}
	data := res.Artifacts[format]
	w.Header().Set("Content-Type", render.ContentType(format))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Cache", cacheState)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (*renderRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req renderRequest
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errTooLarge
		}
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "malformed request body")
	}
	if req.Spec == "" {
		return nil, gerrors.New(gerrors.ErrCodeInvalidInput, "spec is required")
	}
	if req.CSV == "" {
		return nil, gerrors.New(gerrors.ErrCodeInvalidInput, "csv is required")
	}
	return &req, nil
}

var errTooLarge = gerrors.New(gerrors.ErrCodeInvalidInput, "request body exceeds %d bytes", MaxBodyBytes)

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	if err == errTooLarge {
		return http.StatusRequestEntityTooLarge
	}
	switch gerrors.GetCode(err) {
	case gerrors.ErrCodeSyntax, gerrors.ErrCodeResolve, gerrors.ErrCodeSchema, gerrors.ErrCodeData:
		return http.StatusUnprocessableEntity
	case gerrors.ErrCodeInvalidInput, gerrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	var body errorBody
	body.Error.Code = gerrors.GetCode(err)
	body.Error.Message = gerrors.UserMessage(err)
	if body.Error.Code == "" {
		body.Error.Code = gerrors.ErrCodeInternal
		body.Error.Message = "internal server error"
	}

	if status >= http.StatusInternalServerError {
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
		s.logger.Error("request failed", "path", r.URL.Path, "id", RequestIDFrom(r.Context()), "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "code", body.Error.Code, "err", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
