package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName полное имя gRPC сервиса
const ServiceName = "links.v1.LinkService"

// Полные имена методов
const (
	MethodShorten  = "/" + ServiceName + "/Shorten"
	MethodResolve  = "/" + ServiceName + "/Resolve"
	MethodGetStats = "/" + ServiceName + "/GetStats"
	MethodPing     = "/" + ServiceName + "/Ping"
)

// LinkServiceServer интерфейс gRPC сервиса ссылок
type LinkServiceServer interface {
	Shorten(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error)
	Resolve(ctx context.Context, req *ResolveRequest) (*ResolveResponse, error)
	GetStats(ctx context.Context, req *GetStatsRequest) (*GetStatsResponse, error)
	Ping(ctx context.Context, req *PingRequest) (*PingResponse, error)
}

// UnimplementedLinkServiceServer возвращает codes.Unimplemented для всех методов
type UnimplementedLinkServiceServer struct{}

func (UnimplementedLinkServiceServer) Shorten(context.Context, *ShortenRequest) (*ShortenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Shorten not implemented")
}

func (UnimplementedLinkServiceServer) Resolve(context.Context, *ResolveRequest) (*ResolveResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Resolve not implemented")
}

func (UnimplementedLinkServiceServer) GetStats(context.Context, *GetStatsRequest) (*GetStatsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStats not implemented")
}

func (UnimplementedLinkServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

// unaryHandler строит обработчик метода для ServiceDesc
func unaryHandler[Req any, Resp any](method string, call func(LinkServiceServer, context.Context, *Req) (*Resp, error)) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LinkServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(LinkServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LinkServiceDesc описание сервиса для grpc.Server
var LinkServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LinkServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Shorten", Handler: unaryHandler(MethodShorten, LinkServiceServer.Shorten)},
		{MethodName: "Resolve", Handler: unaryHandler(MethodResolve, LinkServiceServer.Resolve)},
		{MethodName: "GetStats", Handler: unaryHandler(MethodGetStats, LinkServiceServer.GetStats)},
		{MethodName: "Ping", Handler: unaryHandler(MethodPing, LinkServiceServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "links/v1/links.proto",
}

// RegisterLinkServiceServer регистрирует реализацию сервиса в gRPC сервере
func RegisterLinkServiceServer(s grpc.ServiceRegistrar, srv LinkServiceServer) {
	s.RegisterService(&LinkServiceDesc, srv)
}

// LinkServiceClient клиент сервиса ссылок
type LinkServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLinkServiceClient создаёт клиент поверх соединения
func NewLinkServiceClient(cc grpc.ClientConnInterface) *LinkServiceClient {
	return &LinkServiceClient{cc: cc}
}

func (c *LinkServiceClient) invoke(ctx context.Context, method string, in, out interface{}, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(Codec)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

// Shorten сокращает URL
func (c *LinkServiceClient) Shorten(ctx context.Context, in *ShortenRequest, opts ...grpc.CallOption) (*ShortenResponse, error) {
	out := new(ShortenResponse)
	if err := c.invoke(ctx, MethodShorten, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// Resolve возвращает исходный URL и учитывает переход
func (c *LinkServiceClient) Resolve(ctx context.Context, in *ResolveRequest, opts ...grpc.CallOption) (*ResolveResponse, error) {
	out := new(ResolveResponse)
	if err := c.invoke(ctx, MethodResolve, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// GetStats возвращает статистику ссылки
func (c *LinkServiceClient) GetStats(ctx context.Context, in *GetStatsRequest, opts ...grpc.CallOption) (*GetStatsResponse, error) {
	out := new(GetStatsResponse)
	if err := c.invoke(ctx, MethodGetStats, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping проверяет состояние сервиса
func (c *LinkServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.invoke(ctx, MethodPing, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
