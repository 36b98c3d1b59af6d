package relayer

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iov-one/gasless/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// APIKeyHeader carries the relayer API key.
	APIKeyHeader = "X-Relayer-Key"
	// RequestIDHeader is set on every response.
	RequestIDHeader = "X-Request-Id"

	maxBodySize = 1 << 16
)

// ServerConfig configures the HTTP front of a relayer.
type ServerConfig struct {
	// Addr is the listen address, for example ":8080".
	Addr string
	// APIKey, when set, must be sent in the X-Relayer-Key header.
	APIKey string
	// RatePerSecond limits accepted requests. Zero disables the limit.
	RatePerSecond float64
	// Burst is the number of requests accepted at once.
	Burst int
	// Timeout bounds the handling of one request, broadcast included.
	Timeout time.Duration
}

// Server handles HTTP requests for the relayer
type Server struct {
	relayer    *Relayer
	conf       ServerConfig
	limiter    *rate.Limiter
	logger     *zap.SugaredLogger
	httpServer *http.Server
}

// NewServer creates a new server instance
func NewServer(r *Relayer, conf ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if conf.RatePerSecond > 0 {
		limit = rate.Limit(conf.RatePerSecond)
	}
	if conf.Burst <= 0 {
		conf.Burst = 1
	}
	if conf.Timeout <= 0 {
		conf.Timeout = 30 * time.Second
	}
	s := &Server{
		relayer: r,
		conf:    conf,
		limiter: rate.NewLimiter(limit, conf.Burst),
		logger:  logger.Sugar(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/relay", s.handleRelay)

	s.httpServer = &http.Server{
		Addr:              conf.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler (for testing)
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves requests until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Infow("Starting relayer HTTP server", "addr", s.conf.Addr, "relayer", s.relayer.Address())
		errc <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errc; err != http.ErrServerClosed {
		return err
	}
	return nil
}

type relayResponse struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	Code      uint32 `json:"code,omitempty"`
	RequestID string `json:"request_id"`
	*Receipt
}

func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.New().String()
	w.Header().Set(RequestIDHeader, reqID)
	log := s.logger.With("request_id", reqID)

	fail := func(status int, msg string, code uint32) {
		writeJSON(w, status, relayResponse{Error: msg, Code: code, RequestID: reqID})
	}

	if r.Method != http.MethodPost {
		fail(http.StatusMethodNotAllowed, "method not allowed", 0)
		return
	}
	if s.conf.APIKey != "" {
		got := r.Header.Get(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.conf.APIKey)) != 1 {
			fail(http.StatusUnauthorized, "unauthorized: bad relayer key", 0)
			return
		}
	}
	if !s.limiter.Allow() {
		fail(http.StatusTooManyRequests, "rate limit exceeded", 0)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		fail(http.StatusBadRequest, "cannot read body", 0)
		return
	}
	p, missing, err := decodePermit(body)
	if len(missing) > 0 {
		fail(http.StatusBadRequest, "missing fields: "+strings.Join(missing, ", "), 0)
		return
	}
	if err != nil {
		fail(http.StatusBadRequest, err.Error(), 0)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.conf.Timeout)
	defer cancel()
	receipt, err := s.relayer.Relay(ctx, p)
	if err != nil {
		status := statusOf(err)
		code, _ := errors.ABCIInfo(err, false)
		log.Infow("Permit rejected", "escrow", p.Escrow, "nonce", p.Nonce, "status", status, "error", err)
		fail(status, err.Error(), code)
		return
	}
	writeJSON(w, http.StatusOK, relayResponse{OK: true, RequestID: reqID, Receipt: receipt})
}

// statusOf maps a relay failure to the HTTP status reported to the
// client. Anything the chain rejected is unprocessable.
func statusOf(err error) int {
	switch {
	case errors.ErrDuplicate.Is(err):
		return http.StatusConflict
	case errors.ErrNetwork.Is(err):
		return http.StatusBadGateway
	case errors.ErrTimeout.Is(err):
		return http.StatusGatewayTimeout
	case errors.ErrDatabase.Is(err):
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
