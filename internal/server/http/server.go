// Package httpserver exposes a JSON/HTTP view of the shopfloor API with gin, plus health and metrics.
package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/and161185/shopfloor/internal/api"
	"github.com/and161185/shopfloor/internal/convert"
	"github.com/and161185/shopfloor/internal/errs"
	"github.com/and161185/shopfloor/internal/metrics"
	"github.com/and161185/shopfloor/internal/model"
	"github.com/and161185/shopfloor/internal/repository"
	"github.com/and161185/shopfloor/internal/service"
	"github.com/and161185/shopfloor/internal/token"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const principalKey = "sf.principal"

// Handler holds the services behind the HTTP routes.
type Handler struct {
	auth    service.AuthService
	stock   service.StockService
	tokens  *token.Issuer
	log     *zap.Logger
	openReg bool
	trail   repository.AuditRepository
}

// New constructs the handler. log may be nil.
func New(auth service.AuthService, stock service.StockService, tokens *token.Issuer, log *zap.Logger, openReg bool) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{auth: auth, stock: stock, tokens: tokens, log: log, openReg: openReg}
}

// WithAuditTrail exposes the audit log at GET /api/v1/audit to MANAGE_USERS holders.
func (h *Handler) WithAuditTrail(trail repository.AuditRepository) *Handler {
	h.trail = trail
	return h
}

// Router builds the gin engine with all routes registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.observe())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.POST("/login", h.login)
	if h.openReg {
		v1.POST("/users", h.register)
	} else {
		v1.POST("/users", h.bearer(), h.require(model.CapManageUsers), h.register)
	}

	authed := v1.Group("", h.bearer())
	authed.GET("/items", h.require(model.CapViewInventory), h.listItems)
	authed.GET("/items/:code", h.require(model.CapViewInventory), h.getItem)
	authed.POST("/items", h.require(model.CapManageInventory), h.createItem)
	authed.GET("/stock/movements", h.require(model.CapViewInventory), h.listMovements)
	authed.POST("/stock/movements", h.require(model.CapRecordMovement), h.recordMovement)
	authed.GET("/stock/statistics", h.require(model.CapViewReports), h.statistics)
	if h.trail != nil {
		authed.GET("/audit", h.require(model.CapManageUsers), h.auditEvents)
	}
	return r
}

func (h *Handler) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRPC("http", c.Request.Method+" "+route, strconv.Itoa(c.Writer.Status()), time.Since(start))
		h.log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
		)
	}
}

// bearer verifies "Authorization: Bearer <JWT>" and stores the principal.
func (h *Handler) bearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		if len(raw) < 7 || !strings.EqualFold(raw[:7], "bearer ") || strings.TrimSpace(raw[7:]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "no auth"})
			return
		}
		p, err := h.tokens.Verify(strings.TrimSpace(raw[7:]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

func (h *Handler) require(cp model.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := principal(c).Role.Require(cp); err != nil {
			h.fail(c, "authorize", err)
			return
		}
		c.Next()
	}
}

func principal(c *gin.Context) token.Principal {
	v, _ := c.Get(principalKey)
	p, _ := v.(token.Principal)
	return p
}

func (h *Handler) login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// an unreadable body is an empty login; the guard rejects and audits it
		req = api.LoginRequest{}
	}
	tok, a, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, "login", err)
		return
	}
	c.JSON(http.StatusOK, api.LoginResponse{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.ExpiresAt,
		UserID:      a.ID.String(),
		Role:        string(a.Role),
	})
}

func (h *Handler) register(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	reg, err := convert.FromAPIRegister(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	a, err := h.auth.Register(c.Request.Context(), reg)
	if err != nil {
		h.fail(c, "register", err)
		return
	}
	c.JSON(http.StatusCreated, api.RegisterResponse{UserID: a.ID.String(), EmployeeID: a.EmployeeID})
}

func (h *Handler) listItems(c *gin.Context) {
	items, err := h.stock.ListItems(c.Request.Context())
	if err != nil {
		h.fail(c, "list items", err)
		return
	}
	c.JSON(http.StatusOK, api.ListItemsResponse{Items: convert.ToAPIItems(items)})
}

func (h *Handler) getItem(c *gin.Context) {
	it, err := h.stock.GetItem(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.fail(c, "get item", err)
		return
	}
	c.JSON(http.StatusOK, convert.ToAPIItem(*it))
}

func (h *Handler) createItem(c *gin.Context) {
	var req api.Item
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	it, err := h.stock.CreateItem(c.Request.Context(), convert.FromAPIItem(req))
	if err != nil {
		h.fail(c, "create item", err)
		return
	}
	c.JSON(http.StatusCreated, convert.ToAPIItem(*it))
}

func (h *Handler) listMovements(c *gin.Context) {
	mvs, err := h.stock.ListMovements(c.Request.Context())
	if err != nil {
		h.fail(c, "list movements", err)
		return
	}
	c.JSON(http.StatusOK, api.ListMovementsResponse{Movements: convert.ToAPIMovements(mvs)})
}

func (h *Handler) recordMovement(c *gin.Context) {
	var req api.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	id, err := h.stock.RecordMovement(c.Request.Context(), convert.FromAPIMovement(&req, principal(c).Username))
	if err != nil {
		h.fail(c, "record movement", err)
		return
	}
	c.JSON(http.StatusCreated, api.RecordMovementResponse{MovementID: id.String()})
}

func (h *Handler) statistics(c *gin.Context) {
	st, err := h.stock.Statistics(c.Request.Context())
	if err != nil {
		h.fail(c, "statistics", err)
		return
	}
	c.JSON(http.StatusOK, convert.ToAPIStatistics(st))
}

func (h *Handler) auditEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	evs, err := h.trail.ListByUsername(c.Request.Context(), c.Query("user"), limit)
	if err != nil {
		h.fail(c, "audit", err)
		return
	}
	out := make([]api.AuditEvent, 0, len(evs))
	for _, ev := range evs {
		out = append(out, api.AuditEvent{
			ID:        ev.ID.String(),
			Username:  ev.Username,
			Kind:      string(ev.Kind),
			Success:   ev.Success,
			Detail:    ev.Detail,
			CreatedAt: ev.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, api.ListAuditResponse{Events: out})
}

// fail writes the HTTP status for a service error. Unknown user and wrong password share one answer.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	code, msg := http.StatusInternalServerError, op+": internal error"
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		code, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, errs.ErrAccountLocked):
		code, msg = http.StatusForbidden, "account locked"
	case errors.Is(err, errs.ErrUnknownUser), errors.Is(err, errs.ErrInvalidCredentials):
		code, msg = http.StatusUnauthorized, "bad credentials"
	case errors.Is(err, errs.ErrDuplicateUsername), errors.Is(err, errs.ErrDuplicateItem):
		code, msg = http.StatusConflict, err.Error()
	case errors.Is(err, errs.ErrItemNotFound):
		code, msg = http.StatusNotFound, "item not found"
	case errors.Is(err, errs.ErrForbidden):
		code, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, errs.ErrStore):
		// logged by the service
	default:
		h.log.Error("http", zap.String("op", op), zap.Error(err))
	}
	c.AbortWithStatusJSON(code, api.ErrorResponse{Error: msg})
}
