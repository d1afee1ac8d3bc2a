package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/tempizhere/linkstat/internal/middleware"
)

type clientAddressKey struct{}

// ClientAddressInterceptor определяет адрес клиента. Метаданные x-real-ip и x-forwarded-for
// учитываются, только если собеседник входит в доверенную подсеть.
func ClientAddressInterceptor(subnet *middleware.TrustedSubnet) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		var peerAddr string
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			peerAddr = middleware.HostOnly(p.Addr.String())
		}

		var forwarded []string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			forwarded = append(forwarded, md.Get("x-real-ip")...)
			forwarded = append(forwarded, md.Get("x-forwarded-for")...)
		}

		addr := subnet.ClientAddress(peerAddr, forwarded...)
		return handler(context.WithValue(ctx, clientAddressKey{}, addr), req)
	}
}

// ClientAddress возвращает адрес клиента, определённый ClientAddressInterceptor
func ClientAddress(ctx context.Context) string {
	if addr, ok := ctx.Value(clientAddressKey{}).(string); ok {
		return addr
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return middleware.HostOnly(p.Addr.String())
	}
	return ""
}

// LoggingInterceptor создаёт интерцептор для логирования gRPC запросов
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		logger.Info("gRPC request",
			zap.String("method", info.FullMethod),
			zap.String("client_ip", ClientAddress(ctx)),
			zap.String("status_code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)

		return resp, err
	}
}

