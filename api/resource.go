package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-sales-api/crud"
	"github.com/goliatone/go-sales-api/repository"
	"github.com/goliatone/go-sales-api/sales"
	"go.uber.org/zap"
)

var errMalformedBody = errors.New("malformed request body")

// binder decodes and validates a request body into a model. Validation
// failures are returned as validation.Errors.
type binder[T any] func(c *gin.Context) (T, error)

// resource serves the five CRUD routes of one entity.
type resource[T repository.Entity, D any] struct {
	path       string
	service    *crud.Service[T]
	sortFields map[string]string
	toDTO      func(T) D
	bind       binder[T]
	// discard releases side effects of bind when the write fails.
	discard func(T)
	// updated runs after a successful update with the state read before it.
	updated func(before, after T)
	// deleted runs after a successful delete.
	deleted func(T)
	logger  *zap.Logger
}

func (r *resource[T, D]) register(g *gin.RouterGroup) {
	rg := g.Group(r.path)
	rg.GET("", r.list)
	rg.GET("/:id", r.get)
	rg.POST("", r.create)
	rg.PUT("/:id", r.update)
	rg.DELETE("/:id", r.delete)
}

func (r *resource[T, D]) list(c *gin.Context) {
	var req crud.PagedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		validationProblem(c, map[string][]string{"query": {err.Error()}})
		return
	}

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		validationProblem(c, FieldErrors(err))
		return
	}
	if _, ok := r.sortFields[strings.ToLower(req.SortBy)]; !ok {
		validationProblem(c, map[string][]string{
			"sortBy": {fmt.Sprintf("must be one of: %s", strings.Join(sales.SortFieldNames(r.sortFields), ", "))},
		})
		return
	}

	resp := r.service.ListPaged(c.Request.Context(), req)
	if !resp.Success {
		serviceProblem(c, resp.Error, resp.Message)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    sales.MapSlice(resp.Model.Data, r.toDTO),
		Meta:    NewPagination(resp.Model),
	})
}

func (r *resource[T, D]) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	resp := r.service.FindByID(c.Request.Context(), id)
	if !resp.Success {
		serviceProblem(c, resp.Error, resp.Message)
		return
	}
	c.JSON(http.StatusOK, success(r.toDTO(resp.Model)))
}

func (r *resource[T, D]) create(c *gin.Context) {
	model, ok := r.decode(c)
	if !ok {
		return
	}

	resp := r.service.Add(c.Request.Context(), model)
	if !resp.Success {
		r.release(model)
		serviceProblem(c, resp.Error, resp.Message)
		return
	}

	c.Header("Location", fmt.Sprintf("%s/%d", strings.TrimSuffix(c.FullPath(), "/"), resp.Model.GetID()))
	c.JSON(http.StatusCreated, success(r.toDTO(resp.Model)))
}

func (r *resource[T, D]) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	model, ok := r.decode(c)
	if !ok {
		return
	}

	var before T
	if r.updated != nil {
		if prev := r.service.FindByID(c.Request.Context(), id); prev.Success {
			before = prev.Model
		}
	}

	resp := r.service.Update(c.Request.Context(), id, model)
	if !resp.Success {
		r.release(model)
		serviceProblem(c, resp.Error, resp.Message)
		return
	}
	if r.updated != nil {
		r.updated(before, resp.Model)
	}
	c.JSON(http.StatusOK, success(r.toDTO(resp.Model)))
}

func (r *resource[T, D]) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	resp := r.service.Delete(c.Request.Context(), id)
	if !resp.Success {
		serviceProblem(c, resp.Error, resp.Message)
		return
	}
	if r.deleted != nil {
		r.deleted(resp.Model)
	}
	c.Status(http.StatusNoContent)
}

func (r *resource[T, D]) decode(c *gin.Context) (T, bool) {
	model, err := r.bind(c)
	if err == nil {
		return model, true
	}

	var errs validation.Errors
	switch {
	case errors.As(err, &errs):
		validationProblem(c, FieldErrors(errs))
	case errors.Is(err, errMalformedBody):
		problem(c, http.StatusBadRequest, "", err.Error(), nil)
	default:
		r.logger.Error("decode request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		problem(c, http.StatusInternalServerError, "", "unexpected error processing the request", nil)
	}
	return model, false
}

func (r *resource[T, D]) release(model T) {
	if r.discard != nil {
		r.discard(model)
	}
}

// bindJSON decodes the body into a payload and validates it.
func bindJSON[P validation.Validatable](c *gin.Context) (P, error) {
	var in P
	if err := c.ShouldBindJSON(&in); err != nil {
		return in, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if err := in.Validate(); err != nil {
		return in, err
	}
	return in, nil
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		validationProblem(c, map[string][]string{"id": {"must be a positive integer"}})
		return 0, false
	}
	return id, true
}
