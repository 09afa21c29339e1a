// Package router wraps chi with named routes. Names are unique and feed
// route:list and the tests that look a path up by name.
package router

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

type Middleware func(http.Handler) http.Handler

// RouteInfo is one mounted route.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Router owns the chi mux and the root route group.
type Router struct {
	base *Group
	mux  chi.Router

	mu    sync.RWMutex
	named map[string]string
	infos []RouteInfo
}

// Group shares a path prefix and middleware between routes.
type Group struct {
	root   *Router
	prefix string
	mw     []Middleware
}

func New() *Router {
	r := &Router{mux: chi.NewRouter(), named: map[string]string{}}
	r.base = &Group{root: r}
	return r
}

func (r *Router) Handler() http.Handler { return r.mux }

func (r *Router) Group(prefix string, mw ...Middleware) *Group { return r.base.Group(prefix, mw...) }

func (r *Router) Get(path, name string, h http.HandlerFunc, mw ...Middleware) {
	r.base.Get(path, name, h, mw...)
}

func (r *Router) Post(path, name string, h http.HandlerFunc, mw ...Middleware) {
	r.base.Post(path, name, h, mw...)
}

func (r *Router) Delete(path, name string, h http.HandlerFunc, mw ...Middleware) {
	r.base.Delete(path, name, h, mw...)
}

// Use adds global middleware. chi requires it before the first route.
func (r *Router) Use(mw ...Middleware) {
	for _, m := range mw {
		r.mux.Use(m)
	}
}

// Mount attaches a whole handler, such as a file server, under prefix.
// Mounted handlers are listed with method "*".
func (r *Router) Mount(prefix string, h http.Handler) {
	p := join(prefix)
	r.mux.Mount(p, h)
	r.record(RouteInfo{Method: "*", Path: p + "/*"})
}

// Path returns the pattern registered under name.
func (r *Router) Path(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.named[name]
	return p, ok
}

// URL fills the {params} of the named route.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	p, ok := r.Path(name)
	if !ok {
		return "", fmt.Errorf("router: no route named %q", name)
	}
	for k, v := range params {
		p = strings.ReplaceAll(p, "{"+k+"}", v)
	}
	if strings.Contains(p, "{") {
		return "", fmt.Errorf("router: %q: missing parameters in %s", name, p)
	}
	return p, nil
}

// Routes lists every route by path, then method.
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	out := append([]RouteInfo(nil), r.infos...)
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func (r *Router) record(info RouteInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info.Name != "" {
		if prev, dup := r.named[info.Name]; dup {
			panic(fmt.Sprintf("router: route name %q used by %s and %s", info.Name, prev, info.Path))
		}
		r.named[info.Name] = info.Path
	}
	r.infos = append(r.infos, info)
}

// Group returns a child group under prefix with extra middleware.
func (g *Group) Group(prefix string, mw ...Middleware) *Group {
	return &Group{
		root:   g.root,
		prefix: join(g.prefix, prefix),
		mw:     append(append([]Middleware(nil), g.mw...), mw...),
	}
}

func (g *Group) Get(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.handle(http.MethodGet, path, name, h, mw)
}

func (g *Group) Post(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.handle(http.MethodPost, path, name, h, mw)
}

func (g *Group) Delete(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.handle(http.MethodDelete, path, name, h, mw)
}

func (g *Group) handle(method, path, name string, h http.Handler, extra []Middleware) {
	full := join(g.prefix, path)
	all := append(append([]Middleware(nil), g.mw...), extra...)
	for i := len(all) - 1; i >= 0; i-- {
		h = all[i](h)
	}
	g.root.mux.Method(method, full, h)
	g.root.record(RouteInfo{Method: method, Path: full, Name: name})
}

// join builds "/a/b" from any mix of slashed segments; no segments is "/".
func join(parts ...string) string {
	var segs []string
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			segs = append(segs, p)
		}
	}
	return "/" + strings.Join(segs, "/")
}
