package server

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/dudecon/SpaceWheat-sub011/internal/quantum"
)

const streamWriteWait = 10 * time.Second

// handleBlochStream upgrades to a websocket and pushes msgpack-encoded
// Bloch packets for one environment until the client disconnects.
func (s *Server) handleBlochStream(w http.ResponseWriter, r *http.Request) {
	env, ok := s.lookupEnv(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The HTTP layer already applies a permissive CORS policy.
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("WebSocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	log := s.log.With().Str("env", env.ID()).Logger()
	log.Info().Msg("Bloch stream opened")

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Info().Msg("Bloch stream closed")
			return
		case <-ticker.C:
			if err := s.pushBlochFrame(r.Context(), conn, env.Bloch()); err != nil {
				log.Info().Err(err).Msg("Bloch stream ended")
				return
			}
		}
	}
}

func (s *Server) pushBlochFrame(ctx context.Context, conn *websocket.Conn, packet []quantum.QubitBloch) error {
	payload, err := quantum.EncodeBlochPacket(packet)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, streamWriteWait)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageBinary, payload)
}
