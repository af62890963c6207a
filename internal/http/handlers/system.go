package handlers

import (
	"net/http"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	intconfig "travelgateway/internal/config"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter keeps the engine for the /api/routes listing.
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func Health(c *gin.Context) {
	store := "memory"
	if intconfig.DB != nil {
		store = "mysql"
		if err := intconfig.EnsureDB(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "session_store": store, "error": "session database unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "session_store": store})
}

// Routes lists the mounted routes, grouped by path.
func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "router not ready"})
		return
	}

	byPath := map[string][]string{}
	for _, rt := range r.Routes() {
		byPath[rt.Path] = append(byPath[rt.Path], rt.Method)
	}
	paths := lo.Keys(byPath)
	sort.Strings(paths)

	out := lo.Map(paths, func(p string, _ int) gin.H {
		methods := byPath[p]
		sort.Strings(methods)
		return gin.H{"path": p, "methods": methods}
	})
	c.JSON(http.StatusOK, gin.H{"routes": out, "count": len(out)})
}
