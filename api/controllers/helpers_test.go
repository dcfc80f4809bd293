package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/pos-backend/api/middleware"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	"github.com/angelmondragon/pos-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test", Output: io.Discard})
}

type requestOpts struct {
	body   string
	caller uuid.UUID
	role   enums.UserRole
	params map[string]string
}

func newRequest(method, path string, opts requestOpts) *http.Request {
	var body io.Reader
	if opts.body != "" {
		body = strings.NewReader(opts.body)
	}
	req := httptest.NewRequest(method, path, body)
	ctx := req.Context()
	if opts.caller != uuid.Nil {
		ctx = middleware.WithIdentity(ctx, opts.caller, opts.role, "access-1")
	}
	if len(opts.params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range opts.params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}
