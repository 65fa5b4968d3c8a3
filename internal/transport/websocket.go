package transport

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"collabboard/internal/apperr"
	"collabboard/internal/auth"
	"collabboard/internal/handlers"
	"collabboard/internal/logging"
	"collabboard/internal/middleware"
)

// Options tune the WebSocket channel.
type Options struct {
	AuthTimeout time.Duration
	PongWait    time.Duration
	WriteWait   time.Duration

	// MaxMessageBytes caps one inbound frame; the connection is closed when
	// a client exceeds it.
	MaxMessageBytes int64

	// MessagesPerMinute and Burst bound commands on one connection.
	MessagesPerMinute int
	Burst             int
}

func DefaultOptions() Options {
	return Options{
		AuthTimeout:       5 * time.Second,
		PongWait:          60 * time.Second,
		WriteWait:         10 * time.Second,
		MaxMessageBytes:   1 << 20,
		MessagesPerMinute: 10,
		Burst:             5,
	}
}

// Server: upgrades /ws/ai and serves commands on the connection
type Server struct {
	upgrader      websocket.Upgrader
	authenticator *Authenticator
	router        *handlers.MessageRouter
	ipLimiter     *middleware.ClientLimiter
	opts          Options
	logger        *zap.Logger

	mu    sync.Mutex
	conns map[*client]struct{}
}

func NewServer(
	router *handlers.MessageRouter,
	verifier auth.Verifier,
	ipLimiter *middleware.ClientLimiter,
	allowedOrigins []string,
	opts Options,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
		},
		authenticator: NewAuthenticator(verifier),
		router:        router,
		ipLimiter:     ipLimiter,
		opts:          opts,
		logger:        logger,
		conns:         make(map[*client]struct{}),
	}
}

// ServeHTTP: rate limits by IP, upgrades, authenticates, then runs the
// message loop until the client goes away
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context(), s.logger)

	clientIP := middleware.ClientIP(r)
	if s.ipLimiter != nil && !s.ipLimiter.Allow("ws:"+clientIP) {
		logger.Warn("connection rate limit exceeded", zap.String("ip", clientIP))
		apperr.Write(w, apperr.NewRateLimited())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		logger.Info("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &client{conn: conn, writeWait: s.opts.WriteWait, cancel: cancel}
	s.track(c)
	defer func() {
		s.untrack(c)
		c.close()
	}()

	conn.SetReadLimit(s.opts.MaxMessageBytes)

	id, err := s.authenticator.Authenticate(ctx, conn, s.opts.AuthTimeout)
	if err != nil {
		logger.Info("websocket authentication failed", zap.Error(err))
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			env, _ := apperr.EnvelopeFor(appErr)
			_ = c.writeJSON(handlers.ErrorMessage{Type: handlers.MsgError, Error: env.Error, Detail: env.Detail})
		}
		return
	}

	connID := uuid.NewString()
	connLogger := logger.With(zap.String("conn_id", connID), zap.String("uid", id.UID))
	ctx = auth.WithIdentity(ctx, id)
	ctx = logging.WithLogger(ctx, connLogger)

	if err := c.writeJSON(map[string]string{"type": "authenticated", "userId": id.UID}); err != nil {
		connLogger.Info("send auth response failed", zap.Error(err))
		return
	}

	connLogger.Info("websocket connected")
	s.run(ctx, c, connLogger)
	connLogger.Info("websocket disconnected")
}

// run: message loop for one connection
func (s *Server) run(ctx context.Context, c *client, logger *zap.Logger) {
	pongWait := s.opts.PongWait
	pingPeriod := (pongWait * 9) / 10

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	var pinger sync.WaitGroup
	pinger.Add(1)
	go func() {
		defer pinger.Done()
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := c.ping(); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()
	defer func() {
		close(done)
		pinger.Wait()
	}()

	limit := rate.Inf
	if s.opts.MessagesPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(s.opts.MessagesPerMinute))
	}
	limiter := rate.NewLimiter(limit, max(s.opts.Burst, 1))

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Info("read message failed", zap.Error(err))
			}
			return
		}

		var reply any
		if !limiter.Allow() {
			logger.Warn("message rate limit exceeded")
			reply = handlers.ErrorMessage{Type: handlers.MsgError, Error: apperr.CodeRateLimited, Detail: apperr.NewRateLimited().Message}
		} else {
			reply = s.router.Route(ctx, msg)
		}

		if err := c.writeJSON(reply); err != nil {
			logger.Info("write reply failed", zap.Error(err))
			return
		}
	}
}

// Shutdown: closes every open connection. Hijacked connections are not
// covered by http.Server.Shutdown.
func (s *Server) Shutdown() {
	s.mu.Lock()
	conns := make([]*client, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.closeGoingAway()
	}
}

// Len: number of open connections
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) track(c *client) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(c *client) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}
