package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khanhnv2901/secheaders/internal/api/middleware"
	"github.com/khanhnv2901/secheaders/internal/checker"
	"github.com/khanhnv2901/secheaders/internal/scoring"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	URL string `json:"url" binding:"required"`
}

type Config struct {
	Checker     checker.Checker
	Catalog     scoring.Catalog
	AuthToken   string
	Logger      *zap.Logger
	CORSOrigins []string // Allowed CORS origins (empty = allow all)
	RateLimit   int      // Requests per second per IP (0 = disabled)
	RateBurst   int      // Burst size for rate limiter
}

type Server struct {
	cfg      Config
	engine   *gin.Engine
	limiters *rateLimiterMap
}

func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	srv := &Server{
		cfg:      cfg,
		engine:   gin.New(),
		limiters: newRateLimiterMap(),
	}
	// Middleware chain: RequestID -> Logging -> Recovery -> CORS -> RateLimit -> Auth -> Handler
	srv.engine.Use(middleware.RequestID(), srv.withLogging(), gin.Recovery(), srv.withCORS(), srv.withRateLimit())
	srv.routes()
	return srv
}

// Close releases background resources. The server must not serve requests
// afterwards.
func (s *Server) Close() {
	s.limiters.close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Version 1 API routes (primary), unversioned aliases for convenience
	for _, prefix := range []string{"/api/v1", "/api"} {
		group := s.engine.Group(prefix, s.withAuth())
		group.GET("/health", s.handleHealth)
		group.GET("/catalog", s.handleCatalog)
		group.POST("/analyze", s.handleAnalyze)
	}
	s.engine.NoMethod(func(c *gin.Context) { s.methodNotAllowed(c) })
	s.engine.HandleMethodNotAllowed = true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, s.cfg.Catalog)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1048576) // 1MB limit
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, errors.New("invalid request body: url is required"))
		return
	}
	if _, err := checker.NormalizeTarget(req.URL); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	if s.cfg.Checker == nil {
		s.writeError(c, http.StatusServiceUnavailable, errors.New("analyzer not configured"))
		return
	}

	result := s.cfg.Checker.Check(c.Request.Context(), req.URL)
	if !result.OK() {
		// the target could not be inspected; report the outcome, not a server fault
		s.requestLogger(c).Warn("analysis_failed",
			zap.String("target", req.URL),
			zap.String("error", result.Error),
		)
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) withRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip rate limiting if disabled
		if s.cfg.RateLimit <= 0 {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		limiter := s.limiters.getLimiter(clientIP, s.cfg.RateLimit, s.cfg.RateBurst)

		if !limiter.Allow() {
			s.requestLogger(c).Warn("rate_limit_exceeded",
				zap.String("client_ip", clientIP),
			)
			s.writeError(c, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			c.Abort()
			return
		}

		c.Next()
	}
}

func (s *Server) withCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		// Determine if origin is allowed
		allowOrigin := "*"
		if len(s.cfg.CORSOrigins) > 0 {
			allowOrigin = ""
			for _, allowedOrigin := range s.cfg.CORSOrigins {
				if strings.EqualFold(allowedOrigin, origin) {
					allowOrigin = origin
					break
				}
			}
		}

		if allowOrigin != "" {
			c.Header("Access-Control-Allow-Origin", allowOrigin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, X-Auth-Token, X-Request-ID")
			c.Header("Access-Control-Max-Age", "3600")
		}

		// Handle preflight requests
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) withLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		s.cfg.Logger.Info("http_request",
			zap.String("request_id", middleware.GetRequestID(c.Request.Context())),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("remote_addr", c.Request.RemoteAddr),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.Int("bytes", c.Writer.Size()),
		)
	}
}

func (s *Server) withAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.AuthToken == "" {
			c.Next()
			return
		}
		token := c.GetHeader("X-Auth-Token")
		// Use constant-time comparison to prevent timing attacks
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AuthToken)) != 1 {
			s.writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) writeError(c *gin.Context, status int, err error) {
	msg := err.Error()

	// For 5xx errors, return generic message and log details server-side
	if status >= 500 {
		s.requestLogger(c).Error("internal_server_error",
			zap.Error(err),
			zap.Int("status", status),
		)
		msg = "internal server error"
	}

	c.JSON(status, gin.H{"error": msg})
}

// requestLogger creates a logger with request context (request ID, method, path)
func (s *Server) requestLogger(c *gin.Context) *zap.Logger {
	return s.cfg.Logger.With(
		zap.String("request_id", middleware.GetRequestID(c.Request.Context())),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	)
}

func (s *Server) methodNotAllowed(c *gin.Context) {
	s.writeError(c, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

// rateLimiterMap manages per-IP rate limiters with automatic cleanup
type rateLimiterMap struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	stop     chan struct{}
	stopped  chan struct{}
	once     sync.Once
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiterMap() *rateLimiterMap {
	m := &rateLimiterMap{
		limiters: make(map[string]*ipLimiter),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	// Start cleanup goroutine to remove stale limiters
	go m.cleanupLoop()
	return m
}

func (m *rateLimiterMap) getLimiter(ip string, rps, burst int) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if burst <= 0 {
		burst = rps
	}

	limiter, exists := m.limiters[ip]
	if !exists {
		limiter = &ipLimiter{
			limiter:  rate.NewLimiter(rate.Limit(rps), burst),
			lastSeen: time.Now(),
		}
		m.limiters[ip] = limiter
	} else {
		limiter.lastSeen = time.Now()
	}

	return limiter.limiter
}

// cleanupLoop removes limiters that haven't been used in 5 minutes
func (m *rateLimiterMap) cleanupLoop() {
	defer close(m.stopped)
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			for ip, limiter := range m.limiters {
				if time.Since(limiter.lastSeen) > 5*time.Minute {
					delete(m.limiters, ip)
				}
			}
			m.mu.Unlock()
		}
	}
}

// close stops the cleanup loop and waits for it to exit.
func (m *rateLimiterMap) close() {
	m.once.Do(func() {
		close(m.stop)
	})
	<-m.stopped
}
