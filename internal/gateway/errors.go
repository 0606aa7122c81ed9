package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/taigrr/annotate/internal/types"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind types.ErrorKind) int {
	switch kind {
	case types.KindBadRequest:
		return http.StatusBadRequest
	case types.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case types.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and answers with the {kind, message} envelope.
func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := types.KindOf(err)
	status := statusFor(kind)

	if status >= http.StatusInternalServerError {
		g.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "kind", kind, "err", err)
	} else {
		g.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "kind", kind, "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.ErrorEnvelope{
		Kind:    kind,
		Message: err.Error(),
	})
}
