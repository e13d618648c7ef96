package arena

import (
	"errors"
	"net/http"
)

// Result is the uniform envelope returned by every service operation.
// Failures carry an HTTP-style status for the routing layer to map onto a
// transport status code.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Status  int    `json:"status,omitempty"`
	Details any    `json:"details,omitempty"`
}

func successResult(data any) Result {
	return Result{Success: true, Data: data}
}

// failure converts any error raised inside the service into the uniform
// envelope. Raw errors never escape past this point.
func failure(err error, fallback string) Result {
	var norm *NormalizedError
	if errors.As(err, &norm) {
		msg := norm.Message
		if msg == "" {
			msg = fallback
		}
		return Result{Success: false, Error: msg, Status: norm.Status, Details: norm.Details}
	}

	var cfg *ConfigurationError
	if errors.As(err, &cfg) {
		return Result{Success: false, Error: cfg.Error(), Status: http.StatusBadRequest}
	}

	var missing *MissingIdentifierError
	if errors.As(err, &missing) {
		return Result{Success: false, Error: missing.Error(), Status: http.StatusBadRequest}
	}

	msg := fallback
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Result{Success: false, Error: msg, Status: http.StatusInternalServerError}
}
