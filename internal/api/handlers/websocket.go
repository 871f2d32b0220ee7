package handlers

import (
	"net/http"

	"github.com/dom/videotube/internal/api/response"
	"github.com/dom/videotube/internal/service"
	"github.com/dom/videotube/internal/websocket"
	"github.com/go-chi/chi/v5"
	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub            *websocket.Hub
	authService    *service.AuthService
	profileService *service.ProfileService
	upgrader       ws.Upgrader
	log            *zap.Logger
}

func NewWebSocketHandler(hub *websocket.Hub, authService *service.AuthService, profileService *service.ProfileService, allowedOrigin string, log *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		authService:    authService,
		profileService: profileService,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
		log: log,
	}
}

// WatchChannel streams subscriber-count changes for the channel named in the
// path. Browsers cannot set headers on the handshake, so the access token
// travels in the token query parameter.
func (h *WebSocketHandler) WatchChannel(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.Authenticate(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		response.Error(w, h.log, "websocket.WatchChannel", err)
		return
	}

	channel, err := h.profileService.GetChannelProfile(r.Context(), &user.ID, chi.URLParam(r, "username"))
	if err != nil {
		response.Error(w, h.log, "websocket.WatchChannel", err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn, channel.ID, user.ID)
	h.hub.Register(client)

	if msg, err := websocket.NewMessage(websocket.MessageTypeWatching, websocket.WatchingPayload{
		ChannelID:        channel.ID,
		SubscribersCount: channel.SubscribersCount,
	}); err == nil {
		client.Send(msg)
	}

	go client.WritePump()
	go client.ReadPump()
}
