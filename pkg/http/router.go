package xhttp

import (
	"encoding/json"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

type Router = router.Router

// NewRouter returns a new Router
func NewRouter() *Router {
	return router.New()
}

// CreateDefaultRouter returns a router answering unknown routes and methods
// with a JSON error.
func CreateDefaultRouter() *Router {
	r := NewRouter()
	r.RedirectFixedPath = true
	r.RedirectTrailingSlash = true
	r.SaveMatchedRoutePath = true
	r.NotFound = NotFoundHandler
	r.MethodNotAllowed = MethodNotAllowedHandler
	r.HandleOPTIONS = false
	r.HandleMethodNotAllowed = true
	return r
}

func NotFoundHandler(ctx *RequestCtx) {
	WriteError(ctx, StatusNotFound, "route not found")
}

func MethodNotAllowedHandler(ctx *RequestCtx) {
	WriteError(ctx, fasthttp.StatusMethodNotAllowed, "method not allowed")
}

// WriteJSON renders v with the given status.
func WriteJSON(ctx *RequestCtx, status int, v any) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(ctx).Encode(v); err != nil {
		ctx.SetStatusCode(StatusInternalServerError)
	}
}

func WriteError(ctx *RequestCtx, status int, msg string) {
	WriteJSON(ctx, status, map[string]string{"error": msg})
}
