package filter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/ports"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	processError    = "Erro ao processar. Verifique o console para detalhes."
)

// ProcessResponse is the JSON body returned by the classification routes
type ProcessResponse struct {
	Category    core.Category  `json:"category"`
	Reply       string         `json:"reply"`
	Source      core.Source    `json:"source"`
	RuleApplied string         `json:"rule_applied"`
	ErrorKind   core.ErrorKind `json:"error_kind,omitempty"`
	Chars       int            `json:"chars"`
	Preview     string         `json:"preview"`
}

// ClassifyRequest is the JSON body accepted by /api/v1/classify
type ClassifyRequest struct {
	Text string `json:"text"`
}

// HTTPFilter serves the triage pipeline over HTTP
type HTTPFilter struct {
	triager   ports.Triager
	extractor core.TextExtractor
	cfg       config.HTTPConfig
	logger    *zap.Logger
	router    *gin.Engine
	server    *http.Server
	listener  net.Listener
}

// NewHTTPFilter creates a new HTTP intake and registers its routes
func NewHTTPFilter(
	triager ports.Triager,
	extractor core.TextExtractor,
	cfg config.HTTPConfig,
	logger *zap.Logger,
) *HTTPFilter {
	if cfg.PreviewChars <= 0 {
		cfg.PreviewChars = 600
	}

	f := &HTTPFilter{
		triager:   triager,
		extractor: extractor,
		cfg:       cfg,
		logger:    logger,
	}

	router := gin.New()
	router.Use(requestID(), f.recovery(), f.accessLog())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.POST("/process", f.limitBody(), f.handleProcess)
	router.POST("/api/v1/classify", f.limitBody(), f.handleClassify)

	if cfg.StaticDir != "" {
		router.Static("/static", cfg.StaticDir)
		router.GET("/", func(c *gin.Context) {
			c.File(filepath.Join(cfg.StaticDir, "index.html"))
		})
	}

	f.router = router
	return f
}

// Handler exposes the router, mainly for tests
func (f *HTTPFilter) Handler() http.Handler {
	return f.router
}

// Start binds the listen address and serves in the background
func (f *HTTPFilter) Start() error {
	l, err := net.Listen("tcp", f.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.cfg.ListenAddress, err)
	}
	f.listener = l

	f.server = &http.Server{
		Handler:           f.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	f.logger.Info("HTTP intake starting", zap.String("address", l.Addr().String()))

	go func() {
		if err := f.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the server down
func (f *HTTPFilter) Stop() error {
	if f.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return f.server.Shutdown(ctx)
}

// handleProcess classifies form input: an uploaded file wins over email_text
func (f *HTTPFilter) handleProcess(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		f.formError(c, err)
		return
	}

	raw := c.PostForm("email_text")
	if fh, err := c.FormFile("file"); err == nil && fh.Filename != "" {
		file, err := fh.Open()
		if err != nil {
			f.formError(c, err)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			f.formError(c, err)
			return
		}
		raw = f.extractor.Extract(data, fh.Filename)
	}

	c.JSON(http.StatusOK, f.classify(c, raw))
}

func (f *HTTPFilter) handleClassify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, f.classify(c, req.Text))
}

func (f *HTTPFilter) classify(c *gin.Context, raw string) ProcessResponse {
	ctx := c.Request.Context()
	if f.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.RequestTimeout)
		defer cancel()
	}

	result, empty := f.triager.Classify(ctx, raw)
	resp := ProcessResponse{
		Category:    result.Category,
		Reply:       result.Reply,
		Source:      result.Source,
		RuleApplied: result.RuleApplied,
		ErrorKind:   result.ErrorKind,
	}
	if empty {
		return resp
	}

	text := core.Normalize(raw)
	resp.Chars = utf8.RuneCountInString(text)
	resp.Preview = core.Preview(text, f.cfg.PreviewChars)
	return resp
}

func (f *HTTPFilter) formError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return
	}
	f.logger.Warn("Invalid form submission",
		zap.String(requestIDKey, c.GetString(requestIDKey)),
		zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
}

func (f *HTTPFilter) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if f.cfg.MaxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, f.cfg.MaxUploadBytes)
		}
		c.Next()
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// recovery turns a panic into a generic 500 and logs the details
func (f *HTTPFilter) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				f.logger.Error("Panic while processing request",
					zap.String(requestIDKey, c.GetString(requestIDKey)),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", r),
					zap.Stack("stack"))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": processError})
			}
		}()
		c.Next()
	}
}

func (f *HTTPFilter) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		f.logger.Debug("HTTP request",
			zap.String(requestIDKey, c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
