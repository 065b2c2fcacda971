// Package httpport implements the HTTP Port from spec.md §6: the named
// one-way command endpoints (POST /volume, POST /play_url, POST
// /play_pause) plus an SSE GET /state_changes stream and static asset
// serving, built with github.com/gin-gonic/gin — the teacher's own web
// framework, generalized from internal/radio/handler's REST handlers
// (returning gin.H JSON) to command ingestion plus an SSE writer.
package httpport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/rradio/internal/command"
	"github.com/arung-agamani/rradio/internal/port"
	"github.com/arung-agamani/rradio/internal/port/wire"
	"github.com/arung-agamani/rradio/internal/state"
)

// Options configures the HTTP Port's bind address and static asset
// directory, mirroring the [web] config section in spec.md §6.
type Options struct {
	Addr      string
	StaticDir string // empty disables static asset serving
}

// Port serves the HTTP control surface. Unlike binaryport/wsport it is not
// itself one per-client session: each SSE connection under /state_changes
// is its own logical Port instance, handed a unique id for logging.
type Port struct {
	opts   Options
	bus    *command.Bus
	bcast  *state.Broadcaster
	server *http.Server
	nextID atomic.Uint64
}

// New builds an HTTP Port. Call Run to start serving.
func New(opts Options, bus *command.Bus, bcast *state.Broadcaster) *Port {
	return &Port{opts: opts, bus: bus, bcast: bcast}
}

func (p *Port) ID() string { return "http:" + p.opts.Addr }

// securityHeaders carries the teacher's SecurityHeadersMiddleware: "no
// authentication" (an explicit Non-goal) does not mean "no baseline HTTP
// hardening."
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		c.Header("Content-Security-Policy",
			"default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; media-src 'self'; connect-src 'self'; font-src 'self'")
		c.Next()
	}
}

func (p *Port) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), securityHeaders())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/volume", p.handleVolume)
	r.POST("/play_url", p.handlePlayURL)
	r.POST("/play_pause", p.handlePlayPause)
	r.GET("/state_changes", p.handleStateChanges)

	if p.opts.StaticDir != "" {
		r.Static("/assets", p.opts.StaticDir)
		r.StaticFile("/", p.opts.StaticDir+"/index.html")
	}
	return r
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (p *Port) Run(ctx context.Context) error {
	p.server = &http.Server{
		Addr:           p.opts.Addr,
		Handler:        p.router(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   0, // no timeout: /state_changes is a long-lived SSE stream
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		_ = p.server.Close()
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

// handleVolume implements POST /volume: body is the bare integer target
// volume per spec.md §6. Out-of-range values are not rejected here — they
// pass through to Controller.setVolume's clamp, same as every other wire
// protocol's SetVolume.
func (p *Port) handleVolume(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "failed to read body"})
		return
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "volume must be an integer"})
		return
	}
	port.Enqueue(p.bus, fmt.Sprintf("http:%s", c.ClientIP()), command.Command{Kind: command.SetVolume, Volume: v})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handlePlayURL implements POST /play_url: body is the bare URI to play per
// spec.md §6.
func (p *Port) handlePlayURL(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "failed to read body"})
		return
	}
	uri := strings.TrimSpace(string(body))
	if uri == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "empty url"})
		return
	}
	port.Enqueue(p.bus, fmt.Sprintf("http:%s", c.ClientIP()), command.Command{Kind: command.PlayURL, URL: uri})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handlePlayPause implements POST /play_pause per spec.md §6: no body.
func (p *Port) handlePlayPause(c *gin.Context) {
	port.Enqueue(p.bus, fmt.Sprintf("http:%s", c.ClientIP()), command.Command{Kind: command.PlayPause})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleStateChanges serves an SSE stream of PlayerStateDiffs, one per
// published version, exactly like binaryport/wsport's push loop but framed
// as "data: <json>\n\n" instead of length-prefixed binary.
func (p *Port) handleStateChanges(c *gin.Context) {
	id := fmt.Sprintf("http-sse:%d", p.nextID.Add(1))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	flusher, canFlush := c.Writer.(http.Flusher)

	err := port.PushDiffs(c.Request.Context(), p.bcast, func(d state.Diff) error {
		payload, err := wire.EncodeDiff(d)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
			return err
		}
		if canFlush {
			flusher.Flush()
		}
		return nil
	})
	if err != nil && c.Request.Context().Err() == nil {
		slog.Info("httpport: sse stream ended", "port", id, "error", err)
	}
	port.LogDisconnect(id, nil)
}
