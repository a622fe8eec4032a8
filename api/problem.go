package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-sales-api/crud"
)

const (
	validationTitle  = "Validation Error"
	validationDetail = "One or more validation errors occurred."
)

// ProblemDetails is the error body for every failed request.
type ProblemDetails struct {
	Type     string              `json:"type"`
	Title    string              `json:"title"`
	Status   int                 `json:"status"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance"`
	Errors   map[string][]string `json:"errors,omitempty"`
}

var problemTypes = map[int]string{
	http.StatusBadRequest:          "https://tools.ietf.org/html/rfc9110#section-15.5.1",
	http.StatusNotFound:            "https://tools.ietf.org/html/rfc9110#section-15.5.5",
	http.StatusConflict:            "https://tools.ietf.org/html/rfc9110#section-15.5.10",
	http.StatusInternalServerError: "https://tools.ietf.org/html/rfc9110#section-15.6.1",
	http.StatusServiceUnavailable:  "https://tools.ietf.org/html/rfc9110#section-15.6.4",
}

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(kind crud.ErrorKind) int {
	switch kind {
	case crud.ErrorNotFound:
		return http.StatusNotFound
	case crud.ErrorValidation:
		return http.StatusBadRequest
	case crud.ErrorConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func problem(c *gin.Context, status int, title, detail string, fields map[string][]string) {
	typ, ok := problemTypes[status]
	if !ok {
		typ = "about:blank"
	}
	if title == "" {
		title = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ProblemDetails{
		Type:     typ,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request.URL.RequestURI(),
		Errors:   fields,
	})
}

func validationProblem(c *gin.Context, fields map[string][]string) {
	problem(c, http.StatusBadRequest, validationTitle, validationDetail, fields)
}

// serviceProblem renders a failed service response.
func serviceProblem(c *gin.Context, kind crud.ErrorKind, message string) {
	status := StatusFor(kind)
	if kind == crud.ErrorValidation {
		problem(c, status, validationTitle, message, nil)
		return
	}
	problem(c, status, "", message, nil)
}

// FieldErrors flattens ozzo validation errors into messages keyed by field
// path, e.g. "items[1].quantity".
func FieldErrors(err error) map[string][]string {
	out := map[string][]string{}
	flatten("", err, out)
	for _, msgs := range out {
		sort.Strings(msgs)
	}
	return out
}

func flatten(prefix string, err error, out map[string][]string) {
	var errs validation.Errors
	if errors.As(err, &errs) {
		for k, e := range errs {
			if e != nil {
				flatten(fieldPath(prefix, k), e, out)
			}
		}
		return
	}

	key := prefix
	if key == "" {
		key = "body"
	}
	out[key] = append(out[key], err.Error())
}

func fieldPath(prefix, key string) string {
	if _, err := strconv.Atoi(key); err == nil {
		return prefix + "[" + key + "]"
	}
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func validationErrors(field string, err error) validation.Errors {
	return validation.Errors{field: err}
}
