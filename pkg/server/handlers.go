package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Sumatoshi-tech/sqldiff/pkg/observability"
	"github.com/Sumatoshi-tech/sqldiff/pkg/service"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
)

// errBodyTooLarge is reported when a request exceeds MaxBodyBytes.
var errBodyTooLarge = errors.New("request body too large")

func (srv *Server) handleDiff(rw http.ResponseWriter, hr *http.Request) {
	var req DiffRequest

	if !srv.decodeBody(rw, hr, &req) {
		return
	}

	doc, err := srv.svc.Diff(hr.Context(),
		jsonInput("source", req.Source),
		jsonInput("target", req.Target),
		service.DiffParams{Dialect: req.Dialect, Matchings: req.Matchings, DeltaOnly: req.DeltaOnly},
	)
	if err != nil {
		srv.writeServiceError(rw, hr, err)

		return
	}

	srv.writeJSON(rw, hr, http.StatusOK, doc)
}

func (srv *Server) handleRender(rw http.ResponseWriter, hr *http.Request) {
	var req RenderRequest

	if !srv.decodeBody(rw, hr, &req) {
		return
	}

	rendered, err := srv.svc.Render(hr.Context(), jsonInput("tree", req.Tree), req.Dialect)
	if err != nil {
		srv.writeServiceError(rw, hr, err)

		return
	}

	srv.writeJSON(rw, hr, http.StatusOK, rendered)
}

func (srv *Server) handleValidate(rw http.ResponseWriter, hr *http.Request) {
	var tree json.RawMessage

	if !srv.decodeBody(rw, hr, &tree) {
		return
	}

	issues, err := srv.svc.Validate(hr.Context(), jsonInput("tree", tree))
	if err != nil {
		srv.writeServiceError(rw, hr, err)

		return
	}

	srv.writeJSON(rw, hr, http.StatusOK, ValidateResponse{Valid: len(issues) == 0, Issues: issues})
}

// jsonInput wraps an embedded document. An absent or null field becomes an
// empty input.
func jsonInput(label string, raw json.RawMessage) service.Input {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = nil
	}

	return service.Input{Label: label, Data: raw, Format: node.FormatJSON}
}

// decodeBody reads a size-limited JSON body into dst and answers 400 or 413
// on failure.
func (srv *Server) decodeBody(rw http.ResponseWriter, hr *http.Request, dst any) bool {
	body := http.MaxBytesReader(rw, hr.Body, srv.settings.MaxBodyBytes)

	err := json.NewDecoder(body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		srv.writeError(rw, hr, http.StatusRequestEntityTooLarge,
			fmt.Errorf("%w: limit %d bytes", errBodyTooLarge, tooLarge.Limit))

		return false
	}

	srv.writeError(rw, hr, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))

	return false
}

func (srv *Server) writeServiceError(rw http.ResponseWriter, hr *http.Request, err error) {
	if service.IsClientError(err) {
		srv.writeError(rw, hr, http.StatusBadRequest, err)

		return
	}

	srv.logger.ErrorContext(hr.Context(), "request failed", "path", hr.URL.Path, "error", err)
	srv.writeError(rw, hr, http.StatusInternalServerError, err)
}

func (srv *Server) writeError(rw http.ResponseWriter, hr *http.Request, status int, err error) {
	requestID, _ := observability.RequestIDFromContext(hr.Context())

	srv.writeJSON(rw, hr, status, ErrorResponse{Error: err.Error(), RequestID: requestID})
}

// writeJSON encodes the given value as JSON and writes it to the response writer.
func (srv *Server) writeJSON(rw http.ResponseWriter, hr *http.Request, status int, value any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	encodeErr := json.NewEncoder(rw).Encode(value)
	if encodeErr != nil {
		srv.logger.ErrorContext(hr.Context(), "failed to encode JSON response", "error", encodeErr)
	}
}
