package ws

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"submeter/backend/services/submeter-service/internal/metrics"
	"submeter/backend/services/submeter-service/internal/service"
)

// Server upgrades HTTP connections to calculator form sessions.
type Server struct {
	ctx          context.Context
	manager      *Manager
	service      *service.CalculatorService
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewServer builds ws server. Sessions are torn down when ctx is cancelled.
// Upgrades are accepted from the same origin or from allowedOrigins.
func NewServer(ctx context.Context, manager *Manager, svc *service.CalculatorService, writeTimeout time.Duration, allowedOrigins []string, logger *zap.Logger) *Server {
	return &Server{
		ctx:          ctx,
		manager:      manager,
		service:      svc,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(strings.TrimSuffix(a, "/"), origin) {
				return true
			}
		}
		return false
	}
}

// HandleWS is HTTP handler for /ws/calculator endpoint.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	session := s.service.OpenSession(ctx)
	processor := NewFormProcessor(session)

	id := uuid.NewString()
	connection := NewConnection(id, conn, processor, s.writeTimeout, s.logger, func(id string) {
		s.manager.Remove(id)
		metrics.SessionClosed()
		cancel()
		s.logger.Info("calculator session closed", zap.String("session_id", id))
	})
	s.manager.Add(connection)
	metrics.SessionOpened()

	if snapshot, err := processor.Snapshot(); err == nil {
		connection.Send(snapshot)
	}

	go connection.Start(ctx)
	s.logger.Info("calculator session opened", zap.String("session_id", id))
}
