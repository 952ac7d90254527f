package observability

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/sandbox-core/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusFunc возвращает сводку для GET /status. Вызывается из горутины HTTP,
// поэтому не должна читать состояние кадра напрямую.
type StatusFunc func() interface{}

// HTTPServer - служебный HTTP-эндпоинт:
//
//	GET /health  - проверка состояния
//	GET /metrics - метрики Prometheus из gatherer
//	GET /status  - сводка текущей сессии
type HTTPServer struct {
	addr       string
	router     *gin.Engine
	httpServer *http.Server
	logger     *logging.Logger

	reqDuration *prometheus.HistogramVec
	reqErrors   *prometheus.CounterVec
}

// NewHTTPServer создаёт сервер. Метрики HTTP регистрируются в reg.
func NewHTTPServer(addr string, reg prometheus.Registerer, gatherer prometheus.Gatherer, status StatusFunc) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	s := &HTTPServer{
		addr:   addr,
		router: gin.New(),
		logger: logging.GetComponentLogger("http"),
		reqDuration: Register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Длительность HTTP-запросов.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"method", "path", "status"})),
		reqErrors: Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_errors_total",
			Help:      "Запросов, завершившихся ошибкой (4xx/5xx).",
		}, []string{"method", "path", "status"})),
	}

	s.router.Use(gin.Recovery(), s.requestLogger(), s.instrument())
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	s.router.GET("/status", func(c *gin.Context) {
		if status == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no session"})
			return
		}
		c.JSON(http.StatusOK, status())
	})

	return s
}

// Handler возвращает http.Handler роутера
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start запускает сервер в отдельной горутине
func (s *HTTPServer) Start() {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error: %v", err)
		}
	}()
	s.logger.Info("HTTP endpoint on %s (/health, /metrics, /status)", s.addr)
}

// Stop останавливает сервер, дожидаясь завершения запросов
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *HTTPServer) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		s.reqDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		if c.Writer.Status() >= 400 {
			s.reqErrors.WithLabelValues(method, path, status).Inc()
		}
	}
}

// requestLogger снабжает каждый запрос request-ID (из X-Request-ID или новым UUID)
// и пишет краткие логи.
func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		s.logger.Debug("[HTTP] ▶ %s %s ip=%s id=%s", method, path, c.ClientIP(), requestID)
		c.Next()
		s.logger.Debug("[HTTP] ◀ %s %s %d %s id=%s", method, path, c.Writer.Status(), time.Since(start), requestID)
	}
}
