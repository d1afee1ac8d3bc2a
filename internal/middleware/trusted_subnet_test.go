package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseTrustedSubnet(t *testing.T) {
	subnet, err := ParseTrustedSubnet("")
	require.NoError(t, err)
	assert.False(t, subnet.Contains("127.0.0.1"), "empty subnet trusts nobody")
	assert.Equal(t, "", subnet.String())

	subnet, err = ParseTrustedSubnet("10.0.0.0/8")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/8", subnet.String())

	_, err = ParseTrustedSubnet("invalid-cidr")
	assert.Error(t, err)

	var nilSubnet *TrustedSubnet
	assert.False(t, nilSubnet.Contains("10.0.0.1"))
}

func TestClientIPMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		trustedSubnet string
		remoteAddr    string
		realIP        string
		forwardedFor  string
		expectedIP    string
	}{
		{
			name:       "No trusted subnet - headers ignored",
			remoteAddr: "203.0.113.1:1234",
			realIP:     "198.51.100.7",
			expectedIP: "203.0.113.1",
		},
		{
			name:          "Peer outside trusted subnet - headers ignored",
			trustedSubnet: "192.168.1.0/24",
			remoteAddr:    "10.0.0.1:1234",
			realIP:        "198.51.100.7",
			expectedIP:    "10.0.0.1",
		},
		{
			name:          "Trusted proxy with X-Real-IP",
			trustedSubnet: "192.168.1.0/24",
			remoteAddr:    "192.168.1.10:1234",
			realIP:        "198.51.100.7",
			expectedIP:    "198.51.100.7",
		},
		{
			name:          "Trusted proxy with X-Forwarded-For chain",
			trustedSubnet: "192.168.1.0/24",
			remoteAddr:    "192.168.1.10:1234",
			forwardedFor:  "198.51.100.8, 192.168.1.11",
			expectedIP:    "198.51.100.8",
		},
		{
			name:          "Trusted proxy with invalid X-Real-IP falls back to X-Forwarded-For",
			trustedSubnet: "192.168.1.0/24",
			remoteAddr:    "192.168.1.10:1234",
			realIP:        "invalid-ip",
			forwardedFor:  "198.51.100.9",
			expectedIP:    "198.51.100.9",
		},
		{
			name:          "Trusted proxy without headers",
			trustedSubnet: "192.168.1.0/24",
			remoteAddr:    "192.168.1.10:1234",
			expectedIP:    "192.168.1.10",
		},
		{
			name:          "IPv6 trusted proxy",
			trustedSubnet: "2001:db8::/32",
			remoteAddr:    "[2001:db8::1]:1234",
			realIP:        "2001:db9::5",
			expectedIP:    "2001:db9::5",
		},
		{
			name:          "IPv6 peer outside subnet",
			trustedSubnet: "2001:db8::/32",
			remoteAddr:    "[2001:db9::1]:1234",
			realIP:        "198.51.100.7",
			expectedIP:    "2001:db9::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subnet, err := ParseTrustedSubnet(tt.trustedSubnet)
			require.NoError(t, err)

			var got string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ClientIP(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/T1", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.forwardedFor)
			}
			rr := httptest.NewRecorder()

			ClientIPMiddleware(subnet, zap.NewNop())(handler).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.expectedIP, got)
		})
	}
}

func TestClientIP_WithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/T1", nil)
	req.RemoteAddr = "203.0.113.1:1234"
	assert.Equal(t, "203.0.113.1", ClientIP(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", ClientIP(req))
}
