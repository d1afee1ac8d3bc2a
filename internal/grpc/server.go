// Package grpc содержит реализацию gRPC сервера для сервиса коротких ссылок
package grpc

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/tempizhere/linkstat/internal/grpc/proto"
	"github.com/tempizhere/linkstat/internal/i18n"
	"github.com/tempizhere/linkstat/internal/middleware"
	"github.com/tempizhere/linkstat/internal/service"
)

// Server реализует gRPC сервис ссылок поверх service.Service
type Server struct {
	proto.UnimplementedLinkServiceServer
	svc       *service.Service
	localizer *i18n.Localizer
	logger    *zap.Logger
}

// NewServer создаёт новый gRPC сервер
func NewServer(svc *service.Service, localizer *i18n.Localizer, logger *zap.Logger) *Server {
	return &Server{
		svc:       svc,
		localizer: localizer,
		logger:    logger,
	}
}

// NewGRPCServer создаёт grpc.Server с интерцепторами и зарегистрированным сервисом
func NewGRPCServer(srv *Server, subnet *middleware.TrustedSubnet, logger *zap.Logger) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(
		ClientAddressInterceptor(subnet),
		LoggingInterceptor(logger),
	))
	proto.RegisterLinkServiceServer(s, srv)
	return s
}

// Shorten обрабатывает создание короткой ссылки
func (s *Server) Shorten(ctx context.Context, req *proto.ShortenRequest) (*proto.ShortenResponse, error) {
	res, err := s.svc.Shorten(ctx, ClientAddress(ctx), req.OriginalURL, req.CreatorID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &proto.ShortenResponse{
		ShortID:  res.ShortID,
		ShortURL: res.ShortURL,
		Created:  res.Created,
	}, nil
}

// Resolve возвращает исходный URL и учитывает переход так же, как GET /{id}
func (s *Server) Resolve(ctx context.Context, req *proto.ResolveRequest) (*proto.ResolveResponse, error) {
	if req.ShortID == "" {
		return nil, status.Error(codes.InvalidArgument, "short ID is required")
	}
	originalURL, err := s.svc.Resolve(ctx, req.ShortID, ClientAddress(ctx))
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &proto.ResolveResponse{OriginalURL: originalURL}, nil
}

// GetStats возвращает статистику ссылки
func (s *Server) GetStats(ctx context.Context, req *proto.GetStatsRequest) (*proto.GetStatsResponse, error) {
	if req.ShortID == "" {
		return nil, status.Error(codes.InvalidArgument, "short ID is required")
	}
	stats, err := s.svc.Stats(ctx, req.ShortID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &proto.GetStatsResponse{
		ShortID:          stats.ShortID,
		ClickCount:       stats.ClickCount,
		VisitorAddresses: stats.VisitorAddresses,
	}, nil
}

// Ping проверяет состояние хранилища
func (s *Server) Ping(ctx context.Context, _ *proto.PingRequest) (*proto.PingResponse, error) {
	err := s.svc.Ping(ctx)
	return &proto.PingResponse{DatabaseAvailable: err == nil}, nil
}

// mapError преобразует ошибки бизнес-логики в gRPC статусы с переведённым сообщением.
// Для превышения лимита в трейлер добавляется retry-after в секундах.
func (s *Server) mapError(ctx context.Context, err error) error {
	lang := acceptLanguage(ctx)

	var rle *service.RateLimitError
	switch {
	case errors.As(err, &rle):
		seconds := int(rle.RetryAfter(time.Now()).Seconds())
		if err := grpc.SetTrailer(ctx, metadata.Pairs("retry-after", strconv.Itoa(seconds))); err != nil {
			s.logger.Warn("Failed to set retry-after trailer", zap.Error(err))
		}
		msg := i18n.MsgShortenLimit
		if rle.Scope == service.ScopeRedirect {
			msg = i18n.MsgRedirectLimit
		}
		return status.Error(codes.ResourceExhausted, s.localizer.Count(lang, msg, rle.Limit))
	case errors.Is(err, service.ErrEmptyURL):
		return status.Error(codes.InvalidArgument, s.localizer.Sprintf(lang, i18n.MsgEnterURL))
	case errors.Is(err, service.ErrURLTooLong):
		return status.Error(codes.InvalidArgument, s.localizer.Count(lang, i18n.MsgURLTooLong, service.MaxURLLength))
	case errors.Is(err, service.ErrInvalidURL):
		return status.Error(codes.InvalidArgument, s.localizer.Sprintf(lang, i18n.MsgInvalidURL))
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, s.localizer.Sprintf(lang, i18n.MsgLinkNotFound))
	default:
		s.logger.Error("Unexpected error", zap.Error(err))
		return status.Error(codes.Internal, s.localizer.Sprintf(lang, i18n.MsgInternal))
	}
}

func acceptLanguage(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get("accept-language"); len(values) > 0 {
		return values[0]
	}
	return ""
}
