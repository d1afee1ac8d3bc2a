// Package middleware содержит HTTP middleware для обработки запросов:
// определение адреса клиента за доверенным прокси и логирование.
package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// TrustedSubnet подсеть доверенных прокси, чьим заголовкам с адресом клиента можно верить
type TrustedSubnet struct {
	network *net.IPNet
}

// ParseTrustedSubnet разбирает CIDR. Пустая строка означает, что доверенных прокси нет.
func ParseTrustedSubnet(cidr string) (*TrustedSubnet, error) {
	if cidr == "" {
		return &TrustedSubnet{}, nil
	}
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid trusted subnet %q: %w", cidr, err)
	}
	return &TrustedSubnet{network: network}, nil
}

// Contains проверяет, входит ли адрес в подсеть
func (s *TrustedSubnet) Contains(addr string) bool {
	if s == nil || s.network == nil {
		return false
	}
	ip := net.ParseIP(addr)
	return ip != nil && s.network.Contains(ip)
}

// String возвращает подсеть в CIDR-нотации
func (s *TrustedSubnet) String() string {
	if s == nil || s.network == nil {
		return ""
	}
	return s.network.String()
}

// ClientAddress выбирает адрес клиента: адрес из заголовка прокси принимается,
// только если непосредственный собеседник входит в доверенную подсеть
func (s *TrustedSubnet) ClientAddress(peer string, forwarded ...string) string {
	if !s.Contains(peer) {
		return peer
	}
	for _, header := range forwarded {
		// В X-Forwarded-For первым идёт исходный клиент
		candidate := strings.TrimSpace(strings.Split(header, ",")[0])
		if net.ParseIP(candidate) != nil {
			return candidate
		}
	}
	return peer
}

// HostOnly отрезает порт от адреса вида host:port
func HostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

type clientIPKey struct{}

// ClientIPMiddleware определяет адрес клиента и сохраняет его в контексте запроса
func ClientIPMiddleware(subnet *TrustedSubnet, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			peer := HostOnly(r.RemoteAddr)
			clientIP := subnet.ClientAddress(peer, r.Header.Get("X-Real-IP"), r.Header.Get("X-Forwarded-For"))
			if clientIP != peer {
				logger.Debug("Client address taken from proxy header",
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("client_ip", clientIP),
					zap.String("trusted_subnet", subnet.String()))
			}

			ctx := context.WithValue(r.Context(), clientIPKey{}, clientIP)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP возвращает адрес клиента, определённый ClientIPMiddleware,
// или адрес собеседника, если middleware не подключён
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPKey{}).(string); ok {
		return ip
	}
	return HostOnly(r.RemoteAddr)
}
