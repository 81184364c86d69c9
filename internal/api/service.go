package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "shopfloor.v1.Shopfloor"

// Full method names.
const (
	Shopfloor_Register_FullMethodName       = "/" + ServiceName + "/Register"
	Shopfloor_Login_FullMethodName          = "/" + ServiceName + "/Login"
	Shopfloor_ChangePassword_FullMethodName = "/" + ServiceName + "/ChangePassword"
	Shopfloor_CreateItem_FullMethodName     = "/" + ServiceName + "/CreateItem"
	Shopfloor_GetItem_FullMethodName        = "/" + ServiceName + "/GetItem"
	Shopfloor_ListItems_FullMethodName      = "/" + ServiceName + "/ListItems"
	Shopfloor_RecordMovement_FullMethodName = "/" + ServiceName + "/RecordMovement"
	Shopfloor_ListMovements_FullMethodName  = "/" + ServiceName + "/ListMovements"
	Shopfloor_GetStatistics_FullMethodName  = "/" + ServiceName + "/GetStatistics"
)

// ShopfloorServer is the server API for the Shopfloor service.
type ShopfloorServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	ChangePassword(context.Context, *ChangePasswordRequest) (*ChangePasswordResponse, error)
	CreateItem(context.Context, *CreateItemRequest) (*CreateItemResponse, error)
	GetItem(context.Context, *GetItemRequest) (*GetItemResponse, error)
	ListItems(context.Context, *ListItemsRequest) (*ListItemsResponse, error)
	RecordMovement(context.Context, *RecordMovementRequest) (*RecordMovementResponse, error)
	ListMovements(context.Context, *ListMovementsRequest) (*ListMovementsResponse, error)
	GetStatistics(context.Context, *GetStatisticsRequest) (*Statistics, error)
}

// UnimplementedShopfloorServer returns codes.Unimplemented for every method.
type UnimplementedShopfloorServer struct{}

func (UnimplementedShopfloorServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedShopfloorServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedShopfloorServer) ChangePassword(context.Context, *ChangePasswordRequest) (*ChangePasswordResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ChangePassword not implemented")
}
func (UnimplementedShopfloorServer) CreateItem(context.Context, *CreateItemRequest) (*CreateItemResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateItem not implemented")
}
func (UnimplementedShopfloorServer) GetItem(context.Context, *GetItemRequest) (*GetItemResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetItem not implemented")
}
func (UnimplementedShopfloorServer) ListItems(context.Context, *ListItemsRequest) (*ListItemsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListItems not implemented")
}
func (UnimplementedShopfloorServer) RecordMovement(context.Context, *RecordMovementRequest) (*RecordMovementResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RecordMovement not implemented")
}
func (UnimplementedShopfloorServer) ListMovements(context.Context, *ListMovementsRequest) (*ListMovementsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListMovements not implemented")
}
func (UnimplementedShopfloorServer) GetStatistics(context.Context, *GetStatisticsRequest) (*Statistics, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStatistics not implemented")
}

type methodHandler = func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error)

// unary adapts a typed server method to a grpc.MethodDesc handler.
func unary[Req, Resp any](fullMethod string, call func(ShopfloorServer, context.Context, *Req) (*Resp, error)) methodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ShopfloorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ShopfloorServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Shopfloor_ServiceDesc is the grpc.ServiceDesc for the Shopfloor service.
var Shopfloor_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShopfloorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(Shopfloor_Register_FullMethodName, ShopfloorServer.Register)},
		{MethodName: "Login", Handler: unary(Shopfloor_Login_FullMethodName, ShopfloorServer.Login)},
		{MethodName: "ChangePassword", Handler: unary(Shopfloor_ChangePassword_FullMethodName, ShopfloorServer.ChangePassword)},
		{MethodName: "CreateItem", Handler: unary(Shopfloor_CreateItem_FullMethodName, ShopfloorServer.CreateItem)},
		{MethodName: "GetItem", Handler: unary(Shopfloor_GetItem_FullMethodName, ShopfloorServer.GetItem)},
		{MethodName: "ListItems", Handler: unary(Shopfloor_ListItems_FullMethodName, ShopfloorServer.ListItems)},
		{MethodName: "RecordMovement", Handler: unary(Shopfloor_RecordMovement_FullMethodName, ShopfloorServer.RecordMovement)},
		{MethodName: "ListMovements", Handler: unary(Shopfloor_ListMovements_FullMethodName, ShopfloorServer.ListMovements)},
		{MethodName: "GetStatistics", Handler: unary(Shopfloor_GetStatistics_FullMethodName, ShopfloorServer.GetStatistics)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shopfloor/v1/shopfloor.json",
}

// RegisterShopfloorServer registers srv on s.
func RegisterShopfloorServer(s grpc.ServiceRegistrar, srv ShopfloorServer) {
	s.RegisterService(&Shopfloor_ServiceDesc, srv)
}

// ShopfloorClient is the client API for the Shopfloor service.
type ShopfloorClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	ChangePassword(ctx context.Context, in *ChangePasswordRequest, opts ...grpc.CallOption) (*ChangePasswordResponse, error)
	CreateItem(ctx context.Context, in *CreateItemRequest, opts ...grpc.CallOption) (*CreateItemResponse, error)
	GetItem(ctx context.Context, in *GetItemRequest, opts ...grpc.CallOption) (*GetItemResponse, error)
	ListItems(ctx context.Context, in *ListItemsRequest, opts ...grpc.CallOption) (*ListItemsResponse, error)
	RecordMovement(ctx context.Context, in *RecordMovementRequest, opts ...grpc.CallOption) (*RecordMovementResponse, error)
	ListMovements(ctx context.Context, in *ListMovementsRequest, opts ...grpc.CallOption) (*ListMovementsResponse, error)
	GetStatistics(ctx context.Context, in *GetStatisticsRequest, opts ...grpc.CallOption) (*Statistics, error)
}

type shopfloorClient struct {
	cc grpc.ClientConnInterface
}

// NewShopfloorClient returns a client that speaks the JSON codec over cc.
func NewShopfloorClient(cc grpc.ClientConnInterface) ShopfloorClient {
	return &shopfloorClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *shopfloorClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, Shopfloor_Register_FullMethodName, in, opts)
}
func (c *shopfloorClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, Shopfloor_Login_FullMethodName, in, opts)
}
func (c *shopfloorClient) ChangePassword(ctx context.Context, in *ChangePasswordRequest, opts ...grpc.CallOption) (*ChangePasswordResponse, error) {
	return invoke[ChangePasswordResponse](ctx, c.cc, Shopfloor_ChangePassword_FullMethodName, in, opts)
}
func (c *shopfloorClient) CreateItem(ctx context.Context, in *CreateItemRequest, opts ...grpc.CallOption) (*CreateItemResponse, error) {
	return invoke[CreateItemResponse](ctx, c.cc, Shopfloor_CreateItem_FullMethodName, in, opts)
}
func (c *shopfloorClient) GetItem(ctx context.Context, in *GetItemRequest, opts ...grpc.CallOption) (*GetItemResponse, error) {
	return invoke[GetItemResponse](ctx, c.cc, Shopfloor_GetItem_FullMethodName, in, opts)
}
func (c *shopfloorClient) ListItems(ctx context.Context, in *ListItemsRequest, opts ...grpc.CallOption) (*ListItemsResponse, error) {
	return invoke[ListItemsResponse](ctx, c.cc, Shopfloor_ListItems_FullMethodName, in, opts)
}
func (c *shopfloorClient) RecordMovement(ctx context.Context, in *RecordMovementRequest, opts ...grpc.CallOption) (*RecordMovementResponse, error) {
	return invoke[RecordMovementResponse](ctx, c.cc, Shopfloor_RecordMovement_FullMethodName, in, opts)
}
func (c *shopfloorClient) ListMovements(ctx context.Context, in *ListMovementsRequest, opts ...grpc.CallOption) (*ListMovementsResponse, error) {
	return invoke[ListMovementsResponse](ctx, c.cc, Shopfloor_ListMovements_FullMethodName, in, opts)
}
func (c *shopfloorClient) GetStatistics(ctx context.Context, in *GetStatisticsRequest, opts ...grpc.CallOption) (*Statistics, error) {
	return invoke[Statistics](ctx, c.cc, Shopfloor_GetStatistics_FullMethodName, in, opts)
}
