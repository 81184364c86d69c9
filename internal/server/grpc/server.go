// Package grpcserver exposes the shopfloor gRPC API handlers.
package grpcserver

import (
	"context"
	"errors"
	"strings"

	"github.com/and161185/shopfloor/internal/api"
	"github.com/and161185/shopfloor/internal/convert"
	"github.com/and161185/shopfloor/internal/errs"
	"github.com/and161185/shopfloor/internal/model"
	"github.com/and161185/shopfloor/internal/service"
	"github.com/and161185/shopfloor/internal/token"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Server wires services into gRPC handlers.
type Server struct {
	api.UnimplementedShopfloorServer
	auth    service.AuthService
	stock   service.StockService
	tokens  *token.Issuer
	openReg bool
}

// Option configures a Server.
type Option func(*Server)

// WithOpenRegistration lets Register run without a token. Used to bootstrap the first admin.
func WithOpenRegistration(open bool) Option {
	return func(s *Server) { s.openReg = open }
}

// New constructs a gRPC server with injected services.
func New(auth service.AuthService, stock service.StockService, tokens *token.Issuer, opts ...Option) *Server {
	s := &Server{auth: auth, stock: stock, tokens: tokens}
	for _, o := range opts {
		o(s)
	}
	return s
}

// --- Auth ---

// Register creates a new account. Requires MANAGE_USERS unless registration is open.
func (s *Server) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	if !s.openReg {
		if _, err := s.authorize(ctx, model.CapManageUsers); err != nil {
			return nil, err
		}
	}
	reg, err := convert.FromAPIRegister(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	a, err := s.auth.Register(ctx, reg)
	if err != nil {
		return nil, toStatus("register", err)
	}
	return &api.RegisterResponse{UserID: a.ID.String(), EmployeeID: a.EmployeeID}, nil
}

// Login authenticates a user and returns an access token.
func (s *Server) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	tok, a, err := s.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, toStatus("login", err)
	}
	return &api.LoginResponse{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.ExpiresAt,
		UserID:      a.ID.String(),
		Role:        string(a.Role),
	}, nil
}

// ChangePassword replaces the caller's password.
func (s *Server) ChangePassword(ctx context.Context, req *api.ChangePasswordRequest) (*api.ChangePasswordResponse, error) {
	p, err := s.principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.auth.ChangePassword(ctx, p.Username, req.OldPassword, req.NewPassword); err != nil {
		return nil, toStatus("change password", err)
	}
	return &api.ChangePasswordResponse{}, nil
}

// --- Inventory ---

// CreateItem adds an item to the catalogue.
func (s *Server) CreateItem(ctx context.Context, req *api.CreateItemRequest) (*api.CreateItemResponse, error) {
	if _, err := s.authorize(ctx, model.CapManageInventory); err != nil {
		return nil, err
	}
	it, err := s.stock.CreateItem(ctx, convert.FromAPIItem(req.Item))
	if err != nil {
		return nil, toStatus("create item", err)
	}
	return &api.CreateItemResponse{Item: convert.ToAPIItem(*it)}, nil
}

// GetItem returns one item by code.
func (s *Server) GetItem(ctx context.Context, req *api.GetItemRequest) (*api.GetItemResponse, error) {
	if _, err := s.authorize(ctx, model.CapViewInventory); err != nil {
		return nil, err
	}
	it, err := s.stock.GetItem(ctx, req.ItemCode)
	if err != nil {
		return nil, toStatus("get item", err)
	}
	return &api.GetItemResponse{Item: convert.ToAPIItem(*it)}, nil
}

// ListItems returns the catalogue.
func (s *Server) ListItems(ctx context.Context, _ *api.ListItemsRequest) (*api.ListItemsResponse, error) {
	if _, err := s.authorize(ctx, model.CapViewInventory); err != nil {
		return nil, err
	}
	items, err := s.stock.ListItems(ctx)
	if err != nil {
		return nil, toStatus("list items", err)
	}
	return &api.ListItemsResponse{Items: convert.ToAPIItems(items)}, nil
}

// RecordMovement applies one stock movement on behalf of the caller.
func (s *Server) RecordMovement(ctx context.Context, req *api.RecordMovementRequest) (*api.RecordMovementResponse, error) {
	p, err := s.authorize(ctx, model.CapRecordMovement)
	if err != nil {
		return nil, err
	}
	id, err := s.stock.RecordMovement(ctx, convert.FromAPIMovement(req, p.Username))
	if err != nil {
		return nil, toStatus("record movement", err)
	}
	return &api.RecordMovementResponse{MovementID: id.String()}, nil
}

// ListMovements returns the ledger newest first.
func (s *Server) ListMovements(ctx context.Context, _ *api.ListMovementsRequest) (*api.ListMovementsResponse, error) {
	if _, err := s.authorize(ctx, model.CapViewInventory); err != nil {
		return nil, err
	}
	mvs, err := s.stock.ListMovements(ctx)
	if err != nil {
		return nil, toStatus("list movements", err)
	}
	return &api.ListMovementsResponse{Movements: convert.ToAPIMovements(mvs)}, nil
}

// GetStatistics returns inventory statistics.
func (s *Server) GetStatistics(ctx context.Context, _ *api.GetStatisticsRequest) (*api.Statistics, error) {
	if _, err := s.authorize(ctx, model.CapViewReports); err != nil {
		return nil, err
	}
	st, err := s.stock.Statistics(ctx)
	if err != nil {
		return nil, toStatus("statistics", err)
	}
	return convert.ToAPIStatistics(st), nil
}

// toStatus maps service errors to gRPC codes. Unknown user and wrong password share one answer.
func toStatus(op string, err error) error {
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, errs.ErrAccountLocked):
		return status.Error(codes.PermissionDenied, "account locked")
	case errors.Is(err, errs.ErrUnknownUser), errors.Is(err, errs.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "bad credentials")
	case errors.Is(err, errs.ErrDuplicateUsername), errors.Is(err, errs.ErrDuplicateItem):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, errs.ErrItemNotFound):
		return status.Error(codes.NotFound, "item not found")
	case errors.Is(err, errs.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	default:
		return status.Errorf(codes.Internal, "%s: internal error", op)
	}
}

// authorize resolves the caller and checks one capability.
func (s *Server) authorize(ctx context.Context, c model.Capability) (token.Principal, error) {
	p, err := s.principal(ctx)
	if err != nil {
		return token.Principal{}, err
	}
	if err := p.Role.Require(c); err != nil {
		return token.Principal{}, toStatus("authorize", err)
	}
	return p, nil
}

// principal returns the caller set by AuthUnary, or verifies the bearer token itself.
func (s *Server) principal(ctx context.Context) (token.Principal, error) {
	if p, ok := PrincipalFromCtx(ctx); ok {
		return p, nil
	}
	return s.principalFromMD(ctx)
}

// principalFromMD extracts "authorization: Bearer <JWT>" and verifies it.
func (s *Server) principalFromMD(ctx context.Context) (token.Principal, error) {
	tok, err := bearerTokenFromMD(ctx)
	if err != nil {
		return token.Principal{}, status.Error(codes.Unauthenticated, "no auth")
	}
	if s.tokens == nil {
		return token.Principal{}, status.Error(codes.Unauthenticated, "no auth")
	}
	p, err := s.tokens.Verify(tok)
	if err != nil {
		return token.Principal{}, status.Error(codes.Unauthenticated, err.Error())
	}
	return p, nil
}

func bearerTokenFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.New("no metadata")
	}
	for _, v := range md.Get("authorization") {
		v = strings.TrimSpace(v)
		if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
			t := strings.TrimSpace(v[7:])
			if t != "" {
				return t, nil
			}
		}
	}
	return "", errors.New("no bearer token")
}
