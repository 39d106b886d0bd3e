package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Nok1969/regent-work-order-system/internal/middleware"
	"github.com/Nok1969/regent-work-order-system/internal/utils"
	"github.com/Nok1969/regent-work-order-system/internal/ws"
)

// NotificationStream upgrades the connection and streams role-addressed
// notifications until the client disconnects.
func NotificationStream(log zerolog.Logger, hub *ws.Hub, origin string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || o == origin
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		u := middleware.CurrentUser(r.Context())
		if u == nil {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("ws upgrade failed")
			return
		}
		log.Debug().Str("role", string(u.Role)).Msg("ws client connected")
		hub.Serve(conn, u.Role)
	}
}
