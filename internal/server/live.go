package server

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"fpl-live-draft/internal/constants"
)

// handleLive streams every published view to the client. The current view,
// if any, is sent right after the handshake.
func (s *DraftServer) handleLive(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	// Same-host origins are always accepted; live_origins adds cross-origin
	// dashboards.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.liveOrigins,
	})
	if err != nil {
		logger.Debug().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected close")

	// The stream is server-to-client only; CloseRead handles control frames
	// and cancels ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())

	views, unsubscribe := s.views.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case view, ok := <-views:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "stream closed")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, constants.WebsocketWriteTimeout)
			err := wsjson.Write(writeCtx, conn, view)
			cancel()
			if err != nil {
				logger.Debug().Err(err).Msg("websocket write failed")
				return
			}
		}
	}
}
