package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"slices"
	"strings"
	"time"

	"natours/shared/constant"
	"natours/transport/http/response"

	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"
)

// RateLimit is a per-process sliding window keyed by client address.
// Replicas do not share counters.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	if !a.config.App.RateLimiter.Enable {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		a.config.App.RateLimiter.MaxRequests,
		time.Duration(a.config.App.RateLimiter.WindowSeconds)*time.Second,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return clientIP(r, a.proxies), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			response.WithRequestLimitExceeded(w)
		}),
	)
}

func trustedProxies(entries []string) []netip.Prefix {
	prefixes := make([]netip.Prefix, 0, len(entries))

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)

		if prefix, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, prefix.Masked())

			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			log.Warn().Str("entry", entry).Msg("ignoring invalid trusted proxy")

			continue
		}

		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}

	return prefixes
}

// clientIP is the peer address. Forwarding headers are read only when the peer is a trusted proxy.
func clientIP(r *http.Request, proxies []netip.Prefix) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}

	addr, err := netip.ParseAddr(peer)
	if err != nil || !slices.ContainsFunc(proxies, func(p netip.Prefix) bool { return p.Contains(addr.Unmap()) }) {
		return peer
	}

	// X-Forwarded-For can contain multiple IPs, take the first one
	if xff := r.Header.Get(constant.RequestHeaderForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get(constant.RequestHeaderRealIP); xri != "" {
		return strings.TrimSpace(xri)
	}

	return peer
}
