package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/arb-engine/internal/common"
	"github.com/hxuan190/arb-engine/internal/http/httputil"
)

const (
	defaultCycleLimit = 50
	maxCycleLimit     = 500
)

type CycleHandler struct {
	cycles CycleSource
}

func NewCycleHandler(cycles CycleSource) *CycleHandler {
	return &CycleHandler{cycles: cycles}
}

func (h *CycleHandler) Root() string {
	return "/cycles"
}

func (h *CycleHandler) SetRoutes(pub *gin.RouterGroup) {
	pub.GET("", h.list)
	pub.GET("/stats", h.stats)
}

// list returns the most recent cycle reports, newest first.
// Query: limit (default 50, max 500).
func (h *CycleHandler) list(c *gin.Context) {
	limit := defaultCycleLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.HandleError(c, common.HTTPErrorBadRequest("limit must be a positive integer"))
			return
		}
		limit = min(n, maxCycleLimit)
	}
	httputil.Success(c, h.cycles.Reports(limit))
}

func (h *CycleHandler) stats(c *gin.Context) {
	httputil.Success(c, h.cycles.Stats())
}
