package web

import (
	"context"
	_ "embed"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/infigaming-com/gold-monitor/cache"
	"github.com/infigaming-com/gold-monitor/errors"
	"github.com/infigaming-com/gold-monitor/hub"
	"github.com/infigaming-com/gold-monitor/rate"
	"github.com/infigaming-com/gold-monitor/reports"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

//go:embed dashboard.html
var dashboardHTML []byte

// HistorySource is the read side of the history window.
type HistorySource interface {
	Snapshot() []rate.Reading
}

// LatestSource returns the most recently accepted reading.
type LatestSource interface {
	Get(ctx context.Context) (rate.Reading, error)
}

type Handler struct {
	lg          *zap.Logger
	history     HistorySource
	registry    *hub.Registry
	latest      LatestSource
	upgrader    websocket.Upgrader
	reportTitle string
}

type HandlerOption func(*Handler)

func WithHandlerLogger(lg *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if lg != nil {
			h.lg = lg
		}
	}
}

// WithLatest enables GET /api/latest.
func WithLatest(latest LatestSource) HandlerOption {
	return func(h *Handler) {
		h.latest = latest
	}
}

// WithAllowedOrigins limits which browser origins may open /ws. Requests
// without an Origin header are always accepted. No origins accepts any.
func WithAllowedOrigins(origins ...string) HandlerOption {
	return func(h *Handler) {
		if len(origins) == 0 {
			return
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || lo.Contains(origins, origin)
		}
	}
}

// WithReportTitle sets the heading of exported reports.
func WithReportTitle(title string) HandlerOption {
	return func(h *Handler) {
		if title != "" {
			h.reportTitle = title
		}
	}
}

func NewHandler(history HistorySource, registry *hub.Registry, opts ...HandlerOption) *Handler {
	h := &Handler{
		lg:       zap.L(),
		history:  history,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		reportTitle: "Harga Emas Treasury",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/", h.dashboard)
	r.GET("/ws", h.serveWS)
	r.GET("/api/history", h.getHistory)
	r.GET("/api/latest", h.getLatest)
	r.GET("/api/history.csv", h.export(reports.FormatCSV))
	r.GET("/api/history.xlsx", h.export(reports.FormatExcel))
	r.GET("/api/history.pdf", h.export(reports.FormatPDF))
}

func (h *Handler) dashboard(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", dashboardHTML)
}

func (h *Handler) serveWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already replied
		h.lg.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := newWSSubscriber(conn)
	if err := h.registry.Register(c.Request.Context(), sub); err != nil {
		h.lg.Debug("failed to register subscriber", zap.String("subscriber", sub.ID()), zap.Error(err))
		_ = sub.Close()
		return
	}
	defer h.registry.Unregister(sub)

	if err := sub.readLoop(); err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		h.lg.Debug("websocket session ended", zap.String("subscriber", sub.ID()), zap.Error(err))
	}
}

func (h *Handler) getHistory(c *gin.Context) {
	c.JSON(http.StatusOK, hub.HistoryMessage{History: hub.FormatHistory(h.history.Snapshot())})
}

func (h *Handler) getLatest(c *gin.Context) {
	if h.latest == nil {
		abortWithError(c, errors.NewError(ErrCodeLatestNotFound, "no reading yet", nil).WithStatusCode(http.StatusNotFound))
		return
	}
	reading, err := h.latest.Get(c.Request.Context())
	switch {
	case stderrors.Is(err, cache.ErrKeyNotFound):
		abortWithError(c, errors.NewError(ErrCodeLatestNotFound, "no reading yet", nil).WithStatusCode(http.StatusNotFound))
		return
	case err != nil:
		h.lg.Warn("failed to read latest reading", zap.Error(err))
		abortWithError(c, errors.NewError(ErrCodeLatestUnavailable, "latest reading unavailable", err).WithStatusCode(http.StatusServiceUnavailable))
		return
	}
	c.JSON(http.StatusOK, hub.FormatReading(reading))
}

func (h *Handler) export(format reports.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := reports.Generate(format, h.history.Snapshot(), reports.WithTitle(h.reportTitle))
		if err != nil {
			h.lg.Error("failed to generate report", zap.String("format", string(format)), zap.Error(err))
			abortWithError(c, errors.NewError(ErrCodeExportFailed, "failed to generate report", err).WithStatusCode(http.StatusInternalServerError))
			return
		}
		filename := fmt.Sprintf("harga-emas-%s.%s", time.Now().Format("20060102-150405"), format)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, format.ContentType(), data)
	}
}

func abortWithError(c *gin.Context, err *errors.Error) {
	c.AbortWithStatusJSON(err.StatusCode, err)
}
