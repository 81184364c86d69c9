package grpcserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/and161185/shopfloor/internal/api"
	"github.com/and161185/shopfloor/internal/audit"
	"github.com/and161185/shopfloor/internal/lockout"
	"github.com/and161185/shopfloor/internal/model"
	"github.com/and161185/shopfloor/internal/repository/memory"
	"github.com/and161185/shopfloor/internal/service"
	"github.com/and161185/shopfloor/internal/token"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1 << 20

const testPassword = "Str0ngPass!"

type testEnv struct {
	srv    *Server
	auth   *service.AuthServiceImpl
	stock  *service.StockServiceImpl
	tokens *token.Issuer
	audit  *memory.Audit
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	log := zaptest.NewLogger(t)
	trail := memory.NewAudit()
	rec := audit.NewRecorder(trail, log)
	iss := token.NewIssuer([]byte("test-secret"), time.Minute)
	auth := service.NewAuthService(memory.NewUsers(), iss, lockout.DefaultPolicy(), rec, log)
	stock := service.NewStockService(memory.NewInventory(), rec, log)
	return &testEnv{
		srv:    New(auth, stock, iss, opts...),
		auth:   auth,
		stock:  stock,
		tokens: iss,
		audit:  trail,
	}
}

// seedUser registers an account directly through the service.
func (e *testEnv) seedUser(t *testing.T, username string, role model.Role) *model.Account {
	t.Helper()
	a, err := e.auth.Register(context.Background(), model.Registration{
		Username: username, Password: testPassword, Role: string(role),
		FullName: "Test " + username, Department: "Plant",
	})
	if err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	return a
}

// tokenFor issues a token without going through Login.
func (e *testEnv) tokenFor(t *testing.T, a *model.Account) string {
	t.Helper()
	tok, err := e.tokens.Issue(a)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok.AccessToken
}

func startBufGRPC(t *testing.T, e *testEnv) (*grpc.ClientConn, func()) {
	t.Helper()
	log := zaptest.NewLogger(t)
	lis := bufconn.Listen(bufSize)
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(
		RecoverUnary(log),
		LoggingUnary(log),
		MetricsUnary(),
		AuthUnary(e.tokens),
	))
	api.RegisterShopfloorServer(gs, e.srv)
	go func() { _ = gs.Serve(lis) }()
	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	stop := func() { _ = cc.Close(); gs.Stop(); _ = lis.Close() }
	return cc, stop
}

func withBearer(tok string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+tok)
}

func ctxAuth(tok string) context.Context {
	return metadata.NewIncomingContext(context.Background(),
		metadata.Pairs("authorization", "Bearer "+tok))
}
