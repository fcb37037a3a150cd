package metadata

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIPFromRequest(t *testing.T) {
	for _, tc := range []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{name: "first forwarded hop", forwarded: "203.0.113.7, 10.0.0.1", remoteAddr: "10.0.0.1:443", want: "203.0.113.7"},
		{name: "garbage forwarded falls through", forwarded: "not-an-ip", realIP: "198.51.100.2", want: "198.51.100.2"},
		{name: "remote addr strips port", remoteAddr: "192.0.2.9:51234", want: "192.0.2.9"},
		{name: "ipv6 remote addr", remoteAddr: "[::1]:8080", want: "::1"},
		{name: "ipv4 mapped ipv6", remoteAddr: "[::ffff:192.0.2.1]:80", want: "192.0.2.1"},
		{name: "nothing usable", remoteAddr: "pipe", want: "unknown"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}
			assert.Equal(t, tc.want, ClientIPFromRequest(req))
		})
	}
}

func TestClientMetadata(t *testing.T) {
	var ip, ua string
	h := ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ip = GetClientIP(r.Context())
		ua = GetUserAgent(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.9:51234"
	req.Header.Set("User-Agent", "  wallet/1.2  ")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.9", ip)
	assert.Equal(t, "wallet/1.2", ua)
}

func TestWithClientMetadataTruncatesUserAgent(t *testing.T) {
	ctx := WithClientMetadata(t.Context(), "192.0.2.9", strings.Repeat("a", 1000))
	assert.Len(t, GetUserAgent(ctx), maxUserAgentLen)
}

func TestMissingMetadataIsEmpty(t *testing.T) {
	assert.Empty(t, GetClientIP(t.Context()))
	assert.Empty(t, GetUserAgent(t.Context()))
}

func TestDescribeUserAgent(t *testing.T) {
	assert.Equal(t, "Unknown Device", DescribeUserAgent("  "))

	desktop := DescribeUserAgent("Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
	assert.Contains(t, desktop, "Firefox")
	assert.Contains(t, desktop, " on ")

	phone := DescribeUserAgent("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
	assert.Contains(t, phone, "iPhone")

	crawler := DescribeUserAgent("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	assert.Contains(t, crawler, "Googlebot")

	custom := DescribeUserAgent("wallet/1.2")
	assert.NotEmpty(t, custom)
	assert.Equal(t, custom, strings.TrimSpace(custom))
}
