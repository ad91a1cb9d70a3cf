// Package factory builds the standard create, read-one, read-many, update and delete
// HTTP handlers for any resource served by a crud.Service.
package factory

import (
	"context"
	"fmt"
	"net/http"

	"natours/infras/otel"
	"natours/shared"
	"natours/shared/constant"
	"natours/shared/crud"
	gDto "natours/shared/dto"
	"natours/shared/query"
	"natours/shared/validator"
	"natours/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Payload is a create request that knows how to become its model.
type Payload[M any] interface {
	ToModel(ctx context.Context) (M, error)
}

// Scope narrows read-many to a nested route, e.g. the reviews of one tour.
type Scope func(r *http.Request) gDto.FilterGroup

// Fill completes a create payload from the route or session before it is converted.
type Fill[Req any] func(r *http.Request, req *Req)

type Resource[M, Res any] struct {
	service crud.Service[M, Res]
	otel    otel.Otel
	name    string
	idParam string
}

func New[M, Res any](name string, service crud.Service[M, Res], otel otel.Otel) Resource[M, Res] {
	return Resource[M, Res]{
		service: service,
		otel:    otel,
		name:    name,
		idParam: constant.RequestParamID,
	}
}

// WithIDParam names the path parameter holding the record id, for routes nested under
// another resource's {id}.
func (h Resource[M, Res]) WithIDParam(param string) Resource[M, Res] {
	h.idParam = param

	return h
}

func (h Resource[M, Res]) scopeName(op string) string {
	return fmt.Sprintf("%s.%s.%s", constant.OtelHandlerScopeName, h.name, op)
}

func (h Resource[M, Res]) GetOne(w http.ResponseWriter, r *http.Request) {
	ctx, scope := h.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, h.scopeName("GetOne"))
	defer scope.End()

	res, err := h.service.Get(ctx, chi.URLParam(r, h.idParam))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("resource", h.name).Msg("failed to get")

		response.WithError(w, r, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetAll answers read-many: scope filter first, then the query string's filter, sort,
// projection and page window.
func (h Resource[M, Res]) GetAll(scopeFn Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, scope := h.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, h.scopeName("GetAll"))
		defer scope.End()

		params, filter, err := query.Apply(r.URL.Query())
		if err != nil {
			scope.TraceError(err)

			response.WithError(w, r, err)

			return
		}

		if scopeFn != nil {
			filter = gDto.And(scopeFn(r), filter)
		}

		res, err := h.service.GetAll(ctx, params, filter)
		if err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Str("resource", h.name).Msg("failed to get list")

			response.WithError(w, r, err)

			return
		}

		items, err := Project(res.Items, params.Fields)
		if err != nil {
			scope.TraceError(err)

			response.WithError(w, r, err)

			return
		}

		response.WithList(w, len(res.Items), res.Total, items)
	}
}

func (h Resource[M, Res]) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, scope := h.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, h.scopeName("Delete"))
	defer scope.End()

	if err := h.service.Delete(ctx, chi.URLParam(r, h.idParam)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("resource", h.name).Msg("failed to delete")

		response.WithError(w, r, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent(h.name + " deleted by user " + user)

	response.WithNoContent(w)
}

// Create decodes and validates Req, lets fill complete it, and stores the resulting model.
func Create[M, Res any, Req Payload[M]](h Resource[M, Res], fill Fill[Req]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, scope := h.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, h.scopeName("Create"))
		defer scope.End()

		var req Req

		if err := validator.Validate(r.Body, &req); err != nil {
			scope.TraceError(err)
			log.Warn().Err(err).Str("resource", h.name).Msg("failed to validate request body")

			response.WithError(w, r, err)

			return
		}

		if fill != nil {
			fill(r, &req)
		}

		mod, err := req.ToModel(ctx)
		if err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Str("resource", h.name).Msg("failed to build model")

			response.WithError(w, r, err)

			return
		}

		res, err := h.service.Create(ctx, mod)
		if err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Str("resource", h.name).Msg("failed to create")

			response.WithError(w, r, err)

			return
		}

		response.WithJSON(w, http.StatusCreated, res)
	}
}

// Update decodes the patch P; only its db-tagged, non-zero fields are written.
func Update[M, Res, P any](h Resource[M, Res]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, scope := h.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, h.scopeName("Update"))
		defer scope.End()

		var patch P

		if err := validator.Validate(r.Body, &patch); err != nil {
			scope.TraceError(err)
			log.Warn().Err(err).Str("resource", h.name).Msg("failed to validate request body")

			response.WithError(w, r, err)

			return
		}

		user, _ := ctx.Value(constant.ContextKeyUserID).(string)

		res, err := h.service.Update(ctx, chi.URLParam(r, h.idParam), shared.TransformFields(&patch, user))
		if err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Str("resource", h.name).Msg("failed to update")

			response.WithError(w, r, err)

			return
		}

		response.WithJSON(w, http.StatusOK, res)
	}
}

// Project keeps only the requested top-level keys (and id) of every item.
// No fields means the items are returned untouched.
func Project[Res any](items []Res, fields []string) (any, error) {
	if len(fields) == 0 {
		return items, nil
	}

	keep := make(map[string]struct{}, len(fields)+1)
	keep[constant.FieldID] = struct{}{}

	for _, field := range fields {
		keep[field] = struct{}{}
	}

	res := make([]map[string]any, 0, len(items))

	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("failed to project: %w", err)
		}

		var full map[string]any
		if err = json.Unmarshal(raw, &full); err != nil {
			return nil, fmt.Errorf("failed to project: %w", err)
		}

		for key := range full {
			if _, ok := keep[key]; !ok {
				delete(full, key)
			}
		}

		res = append(res, full)
	}

	return res, nil
}
