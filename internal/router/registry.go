package router

import "github.com/gin-gonic/gin"

// Registry collects modules and the middleware shared by every /api route,
// then mounts them in one pass at startup.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

// Use queues middleware for the /api group. It takes effect in RegisterAll,
// ahead of every module route.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

// Add queues a module; modules register in the order they were added.
func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// RegisterAll installs the queued middleware, then every module's routes.
// Call it once, after InitModules.
func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
