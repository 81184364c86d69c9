package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/and161185/shopfloor/internal/api"
	"github.com/and161185/shopfloor/internal/audit"
	"github.com/and161185/shopfloor/internal/lockout"
	"github.com/and161185/shopfloor/internal/model"
	"github.com/and161185/shopfloor/internal/repository/memory"
	"github.com/and161185/shopfloor/internal/service"
	"github.com/and161185/shopfloor/internal/token"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testPassword = "Str0ngPass!"

func init() { gin.SetMode(gin.TestMode) }

type fixture struct {
	router http.Handler
	trail  *memory.Audit
	auth   *service.AuthServiceImpl
	stock  *service.StockServiceImpl
	tokens *token.Issuer
}

func newFixture(t *testing.T, openReg bool) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)
	trail := memory.NewAudit()
	rec := audit.NewRecorder(trail, log)
	iss := token.NewIssuer([]byte("test-secret"), time.Minute)
	auth := service.NewAuthService(memory.NewUsers(), iss, lockout.DefaultPolicy(), rec, log)
	stock := service.NewStockService(memory.NewInventory(), rec, log)
	return &fixture{
		router: New(auth, stock, iss, log, openReg).WithAuditTrail(trail).Router(),
		trail:  trail,
		auth:   auth,
		stock:  stock,
		tokens: iss,
	}
}

func (f *fixture) seed(t *testing.T, username string, role model.Role) string {
	t.Helper()
	a, err := f.auth.Register(context.Background(), model.Registration{
		Username: username, Password: testPassword, Role: string(role), FullName: "T " + username, Department: "Plant",
	})
	require.NoError(t, err)
	tok, err := f.tokens.Issue(a)
	require.NoError(t, err)
	return tok.AccessToken
}

func (f *fixture) do(t *testing.T, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	f := newFixture(t, false)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", "", nil).Code)

	f.do(t, http.MethodGet, "/healthz", "", nil)
	w := f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "shopfloor_rpc_duration_seconds")
}

func TestHTTP_LoginAndLedger(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, "clerk", model.RoleWarehouseClerk)
	_, err := f.stock.CreateItem(context.Background(), model.InventoryItem{
		ItemCode: "AUTO-001", Description: "Brake pad set", QuantityOnHand: 100,
		UnitPrice: decimal.RequireFromString("12.50"), ReorderPoint: 20, MinStockLevel: 10,
	})
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/api/v1/login", "", api.LoginRequest{Username: "clerk", Password: testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var lr api.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lr))
	require.NotEmpty(t, lr.AccessToken)

	w = f.do(t, http.MethodPost, "/api/v1/stock/movements", lr.AccessToken,
		api.RecordMovementRequest{ItemCode: "AUTO-001", Type: "ISSUE", Quantity: 30})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/v1/items", lr.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items api.ListItemsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items.Items, 1)
	require.EqualValues(t, 70, items.Items[0].QuantityOnHand)

	w = f.do(t, http.MethodGet, "/api/v1/items/AUTO-001", lr.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var one api.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &one))
	require.EqualValues(t, 70, one.QuantityOnHand)
	require.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/v1/items/NOPE", lr.AccessToken, nil).Code)

	w = f.do(t, http.MethodGet, "/api/v1/stock/movements", lr.AccessToken, nil)
	var mvs api.ListMovementsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mvs))
	require.Len(t, mvs.Movements, 1)
	require.Equal(t, "clerk", mvs.Movements[0].Actor)

	// clerks cannot view reports
	w = f.do(t, http.MethodGet, "/api/v1/stock/statistics", lr.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "WAREHOUSE_CLERK lacks VIEW_REPORTS")

	w = f.do(t, http.MethodPost, "/api/v1/stock/movements", lr.AccessToken,
		api.RecordMovementRequest{ItemCode: "NOPE", Type: "ISSUE", Quantity: 1})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/stock/movements", lr.AccessToken,
		api.RecordMovementRequest{ItemCode: "AUTO-001", Type: "SCRAP", Quantity: 1})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHTTP_Statistics(t *testing.T) {
	f := newFixture(t, false)
	tok := f.seed(t, "boss", model.RoleProductionManager)
	_, err := f.stock.CreateItem(context.Background(), model.InventoryItem{
		ItemCode: "A", Description: "a", QuantityOnHand: 4, UnitPrice: decimal.RequireFromString("2.5"), ReorderPoint: 5, MinStockLevel: 5,
	})
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/api/v1/stock/statistics", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var st api.Statistics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	require.Equal(t, 1, st.TotalItems)
	require.Equal(t, 1, st.LowStockCount)
	require.Equal(t, 1, st.ReorderNeededCount)
	require.True(t, st.TotalValue.Equal(decimal.RequireFromString("10")))
}

func TestHTTP_AuthErrors(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, "alice", model.RoleOperator)

	require.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/v1/items", "", nil).Code)
	require.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/v1/items", "garbage", nil).Code)

	w := f.do(t, http.MethodPost, "/api/v1/login", "", api.LoginRequest{Username: "ghost", Password: "x"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	ghost := w.Body.String()
	w = f.do(t, http.MethodPost, "/api/v1/login", "", api.LoginRequest{Username: "alice", Password: "nope"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, ghost, w.Body.String())

	require.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/v1/login", "", api.LoginRequest{Username: "alice"}).Code)

	for i := 0; i < 4; i++ {
		f.do(t, http.MethodPost, "/api/v1/login", "", api.LoginRequest{Username: "alice", Password: "nope"})
	}
	w = f.do(t, http.MethodPost, "/api/v1/login", "", api.LoginRequest{Username: "alice", Password: testPassword})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestHTTP_EmptyLoginIsAudited(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, "alice", model.RoleOperator)

	w := f.do(t, http.MethodPost, "/api/v1/login", "", api.LoginRequest{Username: "alice", Password: ""})
	require.Equal(t, http.StatusBadRequest, w.Code)

	evs, err := f.trail.ListByUsername(context.Background(), "alice", 0)
	require.NoError(t, err)
	require.Len(t, evs, 2, "registration plus the rejected login")
	require.Equal(t, model.AuditLoginFailed, evs[0].Kind)
	require.Equal(t, "empty username or password", evs[0].Detail)

	// a body that is not JSON at all goes through the same path
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rw := httptest.NewRecorder()
	f.router.ServeHTTP(rw, req)
	require.Equal(t, http.StatusBadRequest, rw.Code)
	all, err := f.trail.ListByUsername(context.Background(), "", 0)
	require.NoError(t, err)
	require.Equal(t, model.AuditLoginFailed, all[0].Kind)
	require.Empty(t, all[0].Username)
}

func TestHTTP_Register(t *testing.T) {
	req := api.RegisterRequest{Username: "newbie", Password: testPassword, Role: "operator", FullName: "New Bie", Department: "Line 2"}

	closed := newFixture(t, false)
	require.Equal(t, http.StatusUnauthorized, closed.do(t, http.MethodPost, "/api/v1/users", "", req).Code)
	op := closed.seed(t, "oper", model.RoleOperator)
	require.Equal(t, http.StatusForbidden, closed.do(t, http.MethodPost, "/api/v1/users", op, req).Code)
	admin := closed.seed(t, "admin", model.RoleAdmin)
	require.Equal(t, http.StatusCreated, closed.do(t, http.MethodPost, "/api/v1/users", admin, req).Code)
	require.Equal(t, http.StatusConflict, closed.do(t, http.MethodPost, "/api/v1/users", admin, req).Code)

	open := newFixture(t, true)
	require.Equal(t, http.StatusCreated, open.do(t, http.MethodPost, "/api/v1/users", "", req).Code)
}

func TestHTTP_AuditTrail(t *testing.T) {
	f := newFixture(t, false)
	admin := f.seed(t, "admin", model.RoleAdmin)
	op := f.seed(t, "oper", model.RoleOperator)
	f.do(t, http.MethodPost, "/api/v1/login", "", api.LoginRequest{Username: "oper", Password: "wrong-one"})

	require.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/api/v1/audit", op, nil).Code)

	w := f.do(t, http.MethodGet, "/api/v1/audit?user=oper", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out api.ListAuditResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.Events)
	require.Equal(t, "oper", out.Events[0].Username)
	require.Equal(t, string(model.AuditLoginFailed), out.Events[0].Kind)
	require.False(t, out.Events[0].Success)
}
