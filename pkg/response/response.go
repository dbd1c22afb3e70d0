// Package response writes the JSON envelope every storefront endpoint uses:
//
//	{"status":200,"data":{...}}
//	{"status":422,"code":"invalid_input","message":"order is invalid","errors":{"items":"..."}}
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Status  int         `json:"status"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// Write sends body with the given status.
func Write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	Write(w, http.StatusOK, Envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(w http.ResponseWriter, data interface{}) {
	Write(w, http.StatusCreated, Envelope{Status: http.StatusCreated, Data: data})
}

// Error sends a JSON error response without a classified code.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, Envelope{Status: status, Message: message})
}

// Fail classifies err and sends its stable code and public message.
// Internal failures are logged with the wrapped cause, which never reaches
// the client.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	status := apperr.HTTPStatus(e)

	if status >= http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error("request failed",
			"code", e.Code,
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}

	body := Envelope{Status: status, Code: string(e.Code), Message: e.Message}
	if len(e.Fields) > 0 {
		body.Errors = e.Fields
	}
	Write(w, status, body)
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Write(w, http.StatusNotFound, Envelope{Status: http.StatusNotFound, Code: string(apperr.CodeNotFound), Message: "Not found"})
}
