package sqlmgmt

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rglonek/sbs"
)

var ErrMissingParameter = errors.New("missing required parameter")

// ResponseError is returned for any non-2xx response from the management API.
// Code and Message come from the ARM error envelope when the body carries one.
type ResponseError struct {
	StatusCode int
	Method     string
	URL        string
	Code       string
	Message    string
	RequestID  string
	RawBody    string
}

func (e *ResponseError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	} else if e.Code == "" && e.RawBody != "" {
		msg += ": " + e.RawBody
	}
	return msg
}

// IsNotFound reports whether err is a ResponseError with status 404.
func IsNotFound(err error) bool {
	var rerr *ResponseError
	return errors.As(err, &rerr) && rerr.StatusCode == http.StatusNotFound
}

func newResponseError(resp *resty.Response) *ResponseError {
	rerr := &ResponseError{
		StatusCode: resp.StatusCode(),
		Method:     resp.Request.Method,
		URL:        resp.Request.URL,
		RequestID:  resp.Header().Get("x-ms-request-id"),
		RawBody:    strings.TrimSpace(sbs.ByteSliceToString(resp.Body())),
	}
	if rerr.RequestID == "" {
		rerr.RequestID = resp.Request.Header.Get(headerClientRequestID)
	}
	ce := new(cloudError)
	if err := json.Unmarshal(resp.Body(), ce); err == nil {
		rerr.Code = ce.Error.Code
		rerr.Message = ce.Error.Message
	}
	return rerr
}
