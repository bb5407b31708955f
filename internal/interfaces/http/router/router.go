package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// Router mounts resource groups under /api/{version}. Middleware added with
// Use applies to the API group only, so /health and /swagger stay outside
// of JWT.
type Router struct {
	engine  *gin.Engine
	version string
	chain   []gin.HandlerFunc
	groups  []*DomainGroup
}

type RouterOption func(*Router)

// WithAPIVersion sets the version segment, "v1" by default
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.version = version }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, version: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) Use(mw ...gin.HandlerFunc) *Router {
	r.chain = append(r.chain, mw...)
	return r
}

func (r *Router) Register(groups ...*DomainGroup) *Router {
	r.groups = append(r.groups, groups...)
	return r
}

// BasePath is the API prefix, e.g. /api/v1
func (r *Router) BasePath() string {
	return "/api/" + r.version
}

// Setup mounts every registered group and returns the API group
func (r *Router) Setup() *gin.RouterGroup {
	api := r.engine.Group(r.BasePath(), r.chain...)
	for _, g := range r.groups {
		g.mount(api)
	}
	return api
}

// Route is one method and path declared on a DomainGroup
type Route struct {
	Method string
	Path   string
}

// DomainGroup declares the routes of one resource. Routes are mounted in
// declaration order, so static segments such as "by-size" or "export.xlsx"
// go before the parameter route at the same depth.
type DomainGroup struct {
	name   string
	prefix string
	chain  []gin.HandlerFunc
	routes []Route
	funcs  [][]gin.HandlerFunc
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

func (g *DomainGroup) Name() string { return g.name }

func (g *DomainGroup) Use(mw ...gin.HandlerFunc) *DomainGroup {
	g.chain = append(g.chain, mw...)
	return g
}

func (g *DomainGroup) add(method, p string, handlers []gin.HandlerFunc) *DomainGroup {
	g.routes = append(g.routes, Route{Method: method, Path: p})
	g.funcs = append(g.funcs, handlers)
	return g
}

func (g *DomainGroup) GET(p string, h ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodGet, p, h)
}

func (g *DomainGroup) POST(p string, h ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodPost, p, h)
}

func (g *DomainGroup) PUT(p string, h ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodPut, p, h)
}

func (g *DomainGroup) DELETE(p string, h ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodDelete, p, h)
}

// Routes lists the declared routes with the group prefix applied
func (g *DomainGroup) Routes() []Route {
	out := make([]Route, len(g.routes))
	for i, rt := range g.routes {
		full := g.prefix
		if rt.Path != "" {
			full = path.Join(g.prefix, rt.Path)
		}
		out[i] = Route{Method: rt.Method, Path: full}
	}
	return out
}

func (g *DomainGroup) mount(parent *gin.RouterGroup) {
	rg := parent.Group(g.prefix, g.chain...)
	for i, rt := range g.routes {
		rg.Handle(rt.Method, rt.Path, g.funcs[i]...)
	}
}
