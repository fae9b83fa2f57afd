package server

import (
	"errors"
	"net/http"

	"github.com/matzehuels/mro/pkg/diag"
	errs "github.com/matzehuels/mro/pkg/errors"
)

type errorResponse struct {
	Code    errs.Code    `json:"code"`
	Message string       `json:"message"`
	Report  *diag.Report `json:"report,omitempty"`
}

// statusFor maps error codes to HTTP statuses.
func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errs.ErrCodeUnknownBase, errs.ErrCodeDuplicateDeclaration, errs.ErrCodeDuplicateBase,
		errs.ErrCodeSelfInheritance, errs.ErrCodeCycleDetected:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeInconsistentHierarchy:
		return http.StatusConflict
	case errs.ErrCodeNotFound, errs.ErrCodeUnknownClass:
		return http.StatusNotFound
	case errs.ErrCodeSessionClosed:
		return http.StatusGone
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Code:    errs.ErrCodeInvalidInput,
			Message: "request body too large",
		})
		return
	}

	report := diag.Explain(err)
	status := statusFor(report.Code)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	resp := errorResponse{Code: report.Code, Message: errs.UserMessage(err)}
	if report.Class != "" || len(report.Cycle) > 0 || len(report.Conflicts) > 0 {
		resp.Report = report
	}
	writeJSON(w, status, resp)
}
