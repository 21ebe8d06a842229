package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/bridgebot/gowatch/internal/domain"
	"github.com/bridgebot/gowatch/internal/services"
	"github.com/bridgebot/gowatch/ledger/client"
	"github.com/bridgebot/gowatch/ledger/types"
	"github.com/bridgebot/gowatch/pkg/logger"
	"github.com/bridgebot/gowatch/pkg/persistence"
)

// Config wires the HTTP read API.
type Config struct {
	ListenAddr string
	PageSize   int
}

// Server exposes the read model over HTTP and websocket.
type Server struct {
	cfg       Config
	refresher *services.Refresher
	session   *services.SessionManager
	hub       *Hub
	prefs     persistence.Store

	httpSrv *http.Server
}

// New builds the server. prefs may be nil to disable preference storage.
func New(cfg Config, refresher *services.Refresher, session *services.SessionManager, hub *Hub, prefs persistence.Store) *Server {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}
	return &Server{
		cfg:       cfg,
		refresher: refresher,
		session:   session,
		hub:       hub,
		prefs:     prefs,
	}
}

// Router builds the gin handler.
func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/ws", s.handleWS)

	api := r.Group("/api")
	api.GET("/orders", s.handleOrders)
	api.GET("/stats", s.handleStats)
	api.GET("/session", s.handleSession)
	api.GET("/balance/:address", s.handleBalance)

	api.POST("/transfer", s.handleTransfer)
	api.POST("/orders", s.handleOpenOrder)
	api.POST("/orders/:id/fill", s.handleFill)

	api.GET("/preferences", s.handleGetPreferences)
	api.PUT("/preferences", s.handlePutPreferences)

	return r
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.Router(),
	}
	logger.Infof("[Server] listening on %s", s.cfg.ListenAddr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the listener and disconnects websocket subscribers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleWS(c *gin.Context) {
	if err := s.hub.Accept(c.Writer, c.Request); err != nil {
		logger.Warnf("[Server] websocket upgrade failed: %v", err)
	}
}

func (s *Server) handleOrders(c *gin.Context) {
	page := 1
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}

	orders := s.refresher.Orders()
	window, totalPages := services.Page(orders, s.cfg.PageSize, page)
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":     window,
		"page":       page,
		"pageSize":   s.cfg.PageSize,
		"totalPages": totalPages,
		"total":      len(orders),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.refresher.Stats())
}

func (s *Server) handleSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Session())
}

func (s *Server) handleBalance(c *gin.Context) {
	address := c.Param("address")
	wei, err := s.session.Client().ReadBalance(c.Request.Context(), address)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address": address,
		"balance": domain.FromWei(wei),
	})
}

type transferRequest struct {
	Recipient string          `json:"recipient" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

func (s *Server) handleTransfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	signer, err := s.session.SigningClient()
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	tx, err := signer.Transfer(ctx, req.Recipient, domain.ToWei(req.Amount))
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := signer.AwaitConfirmation(ctx, tx); err != nil {
		s.fail(c, err)
		return
	}
	s.refresher.Trigger()
	c.JSON(http.StatusOK, gin.H{"txHash": tx.Hash.Hex()})
}

type openOrderRequest struct {
	Recipient string          `json:"recipient" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	ToChain   uint64          `json:"toChain" binding:"required"`
	FeeToken  string          `json:"feeToken"`
	FeeValue  decimal.Decimal `json:"feeValue"`
}

func (s *Server) handleOpenOrder(c *gin.Context) {
	var req openOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !common.IsHexAddress(req.Recipient) || (req.FeeToken != "" && !common.IsHexAddress(req.FeeToken)) {
		s.fail(c, client.ErrInvalidAddress)
		return
	}

	signer, err := s.session.SigningClient()
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	tx, err := signer.OpenOrder(ctx, types.OpenParams{
		Recipient: common.HexToAddress(req.Recipient),
		Amount:    domain.ToWei(req.Amount),
		ToChain:   req.ToChain,
		FeeToken:  common.HexToAddress(req.FeeToken),
		FeeValue:  domain.ToWei(req.FeeValue),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := signer.AwaitConfirmation(ctx, tx); err != nil {
		s.fail(c, err)
		return
	}
	s.refresher.Trigger()
	c.JSON(http.StatusOK, gin.H{"txHash": tx.Hash.Hex()})
}

func (s *Server) handleFill(c *gin.Context) {
	id := common.HexToHash(c.Param("id"))
	if err := services.FillOrder(c.Request.Context(), s.session, id); err != nil {
		s.fail(c, err)
		return
	}
	s.refresher.Trigger()
	c.JSON(http.StatusOK, gin.H{"orderId": id.Hex()})
}

func (s *Server) handleGetPreferences(c *gin.Context) {
	var prefs domain.Preferences
	if s.prefs != nil {
		if err := s.prefs.Load(&prefs); err != nil && err != persistence.ErrNotExists {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, prefs)
}

func (s *Server) handlePutPreferences(c *gin.Context) {
	var prefs domain.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if s.prefs != nil {
		if err := s.prefs.Save(prefs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, prefs)
}

// fail maps the error taxonomy onto HTTP status codes.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, client.ErrSessionRequired):
		status = http.StatusUnauthorized
	case errors.Is(err, client.ErrInvalidAddress):
		status = http.StatusBadRequest
	case errors.Is(err, client.ErrNotFound), errors.Is(err, client.ErrNoMatchingInstructions):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
