package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	models "SmartCVD/internal/domain/models"
	"SmartCVD/internal/middleware"
	httpmw "SmartCVD/pkg/http/middleware"
	xlogger "SmartCVD/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 16384,
}

// checkOrigin admits clients without an Origin header, same-host pages and
// the configured CORS origins.
func (h *AssessmentEchoHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return httpmw.OriginAllowed(h.cfg.AllowedOrigins, origin)
}

// Live upgrades to a WebSocket. Every inbound assessment request is answered
// with exactly one frame, in order.
func (h *AssessmentEchoHandler) Live(c echo.Context) error {
	u := upgrader
	u.CheckOrigin = h.checkOrigin
	conn, err := u.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		h.logger.Warn("live upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	pipe := middleware.NewLivePipeline(h.svc, h.metrics, middleware.WithMaxRPS(h.cfg.LiveMaxRPS))
	conn.SetReadLimit(h.cfg.LiveReadLimit)
	deadline := func() time.Time { return time.Now().Add(2 * h.cfg.LivePingPeriod) }
	_ = conn.SetReadDeadline(deadline())
	conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(deadline()) })

	writes := make(chan models.LiveFrame, 16)
	done := make(chan struct{})
	go h.liveWriter(ctx, conn, writes, done)

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				!errors.Is(err, context.Canceled) {
				h.logger.Debug("live connection closed", xlogger.Error(err))
			}
			break
		}
		_ = conn.SetReadDeadline(deadline())
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		select {
		case writes <- pipe.Process(ctx, msg):
		case <-done:
			return nil
		}
	}
	close(writes)
	<-done
	return nil
}

// liveWriter owns all writes on conn, including keepalive pings.
func (h *AssessmentEchoHandler) liveWriter(ctx context.Context, conn *websocket.Conn, frames <-chan models.LiveFrame, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(h.cfg.LivePingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(f); err != nil {
				h.logger.Debug("live write failed", xlogger.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
