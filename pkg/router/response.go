package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hemolens/backend/pkg/errorx"
	"github.com/hemolens/backend/pkg/xcontext"
)

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// StatusResponse lets a response override the default 200 status.
type StatusResponse interface {
	StatusCode() int
}

func writeResponse(ctx context.Context, w http.ResponseWriter, resp any) {
	status := http.StatusOK
	if sr, ok := resp.(StatusResponse); ok {
		status = sr.StatusCode()
	}

	writeJSON(ctx, w, status, response{Code: 0, Data: resp})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	errx := errorx.Error{}
	if !errors.As(err, &errx) {
		errx = errorx.Unknown
	}

	writeJSON(ctx, w, httpStatus(errx.Code), response{
		Code:  int64(errx.Code),
		Error: errx.Message,
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, resp response) {
	b, err := json.Marshal(resp)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal the response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}

func httpStatus(code errorx.Code) int {
	switch code {
	case errorx.BadRequest:
		return http.StatusBadRequest
	case errorx.NotFound:
		return http.StatusNotFound
	case errorx.Unauthenticated, errorx.TokenExpired:
		return http.StatusUnauthorized
	case errorx.AlreadyExists:
		return http.StatusConflict
	case errorx.TooManyRequests:
		return http.StatusTooManyRequests
	case errorx.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
