package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/firemason/firemason/core/infra/logging"
	"github.com/firemason/firemason/core/infra/secrets"
	"github.com/firemason/firemason/core/translator"
)

const (
	msgNotFound       = "Not found"
	msgInternalServer = "Internal server error"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: msgNotFound})
}

func (s *server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	reqID := requestIDFrom(r.Context())
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeTranslateError(w, reqID, translator.RequestError(err))
		return
	}
	if logging.DebugEnabled() {
		logBody := "<unparseable>"
		if redacted, _, err := secrets.RedactJSON(body, "apiKey"); err == nil {
			logBody = string(redacted)
		}
		logging.Debug(component, "translate request", "request_id", reqID, "body", logBody)
	}

	req, err := translator.DecodeRequest(body)
	if err != nil {
		writeTranslateError(w, reqID, err)
		return
	}

	resp, err := s.svc.Translate(r.Context(), req)
	if err != nil {
		writeTranslateError(w, reqID, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeTranslateError(w http.ResponseWriter, reqID string, err error) {
	var te *translator.Error
	if !errors.As(err, &te) {
		logging.Error(component, "translate failed", "request_id", reqID, "error", err)
		writeInternalError(w, err.Error())
		return
	}
	switch te.Kind {
	case translator.KindValidation:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: te.Message})
	case translator.KindRequest:
		logging.Error(component, "invalid translate body", "request_id", reqID, "error", te.Message)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: te.Message})
	default:
		logging.Error(component, "translate upstream failure", "request_id", reqID, "error", te.Message)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: te.Message, Details: te.Details})
	}
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternalServer, Message: message})
}

// writeJSON writes v without HTML escaping; generated C code is full of '<' and '&'.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logging.Error(component, "encode response", "error", err)
		http.Error(w, msgInternalServer, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_, _ = w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
