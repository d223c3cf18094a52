package http

import (
	"context"
	"errors"
	gohttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/arb-engine/internal/common"
	"github.com/hxuan190/arb-engine/internal/config"
	"github.com/hxuan190/arb-engine/internal/domain"
	"github.com/hxuan190/arb-engine/internal/http/httputil"
	"github.com/hxuan190/arb-engine/internal/http/middlewares"
)

const (
	API_VERSION  = "v1"
	HTTP_SERVICE = "http-service"
)

// staleAfter is how long the loop may go without finishing a cycle before
// /health reports it unavailable.
const staleAfter = time.Minute

// CycleSource exposes the engine's in-memory cycle history.
type CycleSource interface {
	Reports(limit int) []domain.CycleReport
	Stats() domain.CycleStats
}

type HTTPService struct {
	cycles      CycleSource
	rateLimiter *middlewares.RateLimiter
	server      *gohttp.Server
	conf        *config.GeneralConfig
	now         func() time.Time

	handlers []httputil.IHttpHandler
}

func NewHTTPService(conf *config.GeneralConfig, cycles CycleSource) (*HTTPService, error) {
	if conf == nil {
		return nil, errors.New("invalid server config")
	}
	return &HTTPService{
		cycles:      cycles,
		conf:        conf,
		rateLimiter: middlewares.NewRateLimiter(10, 20),
		now:         time.Now,
		handlers: []httputil.IHttpHandler{
			NewCycleHandler(cycles),
		},
	}, nil
}

func (svc *HTTPService) ID() string {
	return HTTP_SERVICE
}

// Router builds the gin engine serving the status API.
func (svc *HTTPService) Router() *gin.Engine {
	if svc.conf.Env != config.DevEnv {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	corsConf.AllowMethods = []string{"GET", "OPTIONS"}
	r.Use(cors.New(corsConf))

	r.Use(middlewares.MetricsMiddleware())
	r.Use(svc.rateLimiter.RateLimitMiddleware())

	r.GET("/health", svc.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) {
		httputil.HandleError(c, common.HTTPErrorNotFound(""))
	})

	api := r.Group("api")
	pub := api.Group(API_VERSION)
	svc.setupHandlers(pub)

	return r
}

// Start serves until Stop is called.
func (svc *HTTPService) Start() error {
	svc.server = &gohttp.Server{
		Addr:              svc.conf.HTTPHost + ":" + svc.conf.HTTPPort,
		Handler:           svc.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info().Str("host", svc.conf.HTTPHost).Str("port", svc.conf.HTTPPort).Msg("http server started")

	if err := svc.server.ListenAndServe(); err != nil && !errors.Is(err, gohttp.ErrServerClosed) {
		return err
	}
	return nil
}

func (svc *HTTPService) Stop() error {
	if svc.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := svc.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to stop http server")
		return err
	}
	log.Info().Msg("http server stopped gracefully")
	return nil
}

func (svc *HTTPService) health(c *gin.Context) {
	stats := svc.cycles.Stats()
	if stats.LastCycleAt != nil && svc.now().Sub(*stats.LastCycleAt) > staleAfter {
		httputil.HandleError(c, common.HTTPErrorServiceUnavailable("no cycle completed recently"))
		return
	}
	c.JSON(gohttp.StatusOK, gin.H{
		"status":        "ok",
		"cycles":        stats.Total,
		"last_cycle_at": stats.LastCycleAt,
	})
}

func (svc *HTTPService) setupHandlers(rootPub *gin.RouterGroup) {
	for _, h := range svc.handlers {
		h.SetRoutes(rootPub.Group(h.Root()))
	}
}
