package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"ewintr.nl/treats/httperr"
)

func Index(w http.ResponseWriter) {
	Success(w, "treats index")
}

// Success writes the success envelope around data with status 200.
func Success(w http.ResponseWriter, data any) {
	response := struct {
		Status string `json:"status"`
		Data   any    `json:"data"`
	}{
		Status: "success",
		Data:   data,
	}
	body, marshalErr := json.Marshal(response)
	if marshalErr != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, `{"status":"error","message":%q}`, marshalErr.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Fail writes the error envelope with the given status.
func Fail(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	response := struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}{
		Status:  "error",
		Message: message,
	}
	body, marshalErr := json.Marshal(response)
	if marshalErr != nil {
		fmt.Fprintf(w, `{"status":"error","message":%q}`, marshalErr.Error())
		return
	}
	w.Write(body)
}

// RespondErr renders a pipeline failure. Classified errors keep their status
// and message, timeouts get their own status, everything else is logged and
// hidden behind a generic message.
func RespondErr(w http.ResponseWriter, err error, logger *slog.Logger) {
	var herr *httperr.Error
	switch {
	case errors.As(err, &herr):
		Fail(w, herr.Status, herr.Message)
	case errors.Is(err, httperr.ErrTimeout):
		logger.Error("upstream timeout", slog.String("error", err.Error()))
		Fail(w, http.StatusGatewayTimeout, "Upstream timeout")
	default:
		logger.Error("request failed", slog.String("error", err.Error()))
		Fail(w, http.StatusInternalServerError, "Internal server error")
	}
}
