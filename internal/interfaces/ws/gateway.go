package ws

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tutorlink/backend/internal/infrastructure/config"
	"github.com/tutorlink/backend/internal/interfaces/http/middleware"
)

// Gateway upgrades HTTP requests to websocket connections and binds each
// one to an authenticated user. The token travels in the `token` query
// parameter, with the Authorization header as a fallback for non-browser
// clients; a connection that cannot present a valid token is closed
// immediately after the upgrade.
type Gateway struct {
	hub       *Hub
	validator middleware.TokenValidator
	upgrader  websocket.Upgrader
	logger    *zap.Logger
}

// NewGateway creates a gateway for the hub
func NewGateway(hub *Hub, validator middleware.TokenValidator, cfg config.WSConfig, log *zap.Logger) *Gateway {
	return &Gateway{
		hub:       hub,
		validator: validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		logger: log.Named("ws.gateway"),
	}
}

// Handle is the gin handler for the websocket endpoint
func (g *Gateway) Handle(c *gin.Context) {
	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error to the client
		g.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	userID, err := g.authenticate(c)
	if err != nil {
		g.logger.Debug("websocket authentication failed", zap.Error(err))
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid token"))
		conn.Close()
		return
	}

	client := newClient(g.hub, conn, userID, g.logger)
	g.hub.Register(client)

	go client.writePump()
	go client.readPump()
}

// authenticate resolves the connecting user from the request's token
func (g *Gateway) authenticate(c *gin.Context) (uuid.UUID, error) {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader(middleware.AuthHeaderKey)
		token = strings.TrimPrefix(header, middleware.BearerPrefix)
	}
	if token == "" {
		return uuid.Nil, errMissingToken
	}

	claims, err := g.validator.ValidateAccessToken(c.Request.Context(), token)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(claims.UserID)
}

var errMissingToken = &websocket.CloseError{Code: websocket.ClosePolicyViolation, Text: "missing token"}

// originChecker builds the upgrade origin policy. With no configured
// origins only same-host requests pass, matching the library default.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(allowed))
	allowAll := false
	for _, origin := range allowed {
		if origin == "*" {
			allowAll = true
		}
		set[origin] = struct{}{}
	}

	return func(r *http.Request) bool {
		if allowAll {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Non-browser clients send no origin
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
