package xhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"oss.terrastruct.com/cmdlog"
)

// Error is an HTTP error carrying the status code and the response body to write.
type Error struct {
	Code int
	Resp interface{}
	Err  error
}

// Errorf creates a new error with code, resp, msg and v.
// When returned from a HandlerFunc it is logged and written to the connection.
func Errorf(code int, resp interface{}, msg string, v ...interface{}) error {
	return ErrorWrap(code, resp, fmt.Errorf(msg, v...))
}

func ErrorWrap(code int, resp interface{}, err error) error {
	if resp == nil {
		resp = http.StatusText(code)
	}
	return Error{code, resp, err}
}

func (e Error) Unwrap() error {
	return e.Err
}

func (e Error) Error() string {
	return fmt.Sprintf("http error with code %v and resp %#v: %v", e.Code, e.Resp, e.Err)
}

// HandlerFunc is like http.HandlerFunc but returns an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

type HandlerFuncAdapter struct {
	Log  *cmdlog.Logger
	Func HandlerFunc
}

// ServeHTTP logs and writes any error from Func.
// 400s are logged as warns and everything else as errors with a 500 written
// unless the error carries a 4xx or 5xx code.
func (a HandlerFuncAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := a.Func(w, r)
	if err != nil {
		handleError(a.Log, w, err)
	}
}

func handleError(clog *cmdlog.Logger, w http.ResponseWriter, err error) {
	var herr Error
	if !errors.As(err, &herr) {
		herr = ErrorWrap(http.StatusInternalServerError, nil, err).(Error)
	}

	logger := clog.Error
	switch {
	case 400 <= herr.Code && herr.Code < 500:
		logger = clog.Warn
	case 500 <= herr.Code && herr.Code < 600:
	default:
		clog.Error.Printf("unexpected non error http status code %d with resp: %#v", herr.Code, herr.Resp)
		herr.Code = http.StatusInternalServerError
		herr.Resp = http.StatusText(herr.Code)
	}
	logger.Printf("error handling http request: %v", err)

	if ww, ok := w.(writtenResponseWriter); ok && ww.Written() {
		return
	}
	JSON(clog, w, herr.Code, map[string]interface{}{
		"error": herr.Resp,
	})
}

type writtenResponseWriter interface {
	Written() bool
}

func JSON(clog *cmdlog.Logger, w http.ResponseWriter, code int, v interface{}) {
	if v == nil {
		v = map[string]interface{}{
			"status": http.StatusText(code),
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		clog.Error.Printf("json marshal error: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}
