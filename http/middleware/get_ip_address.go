package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/xy-planning-network/trailhead"
)

// UnknownIPAddress stands in when no public client address is found.
const UnknownIPAddress = "0.0.0.0"

// IANA defined non-public ranges
var privatePrefixes = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("fc00::/7"),
}

// InjectIPAddress finds the client's IP address
// and promotes it to *http.Request.Context under trailhead.IpAddrKey.
func InjectIPAddress() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := GetIPAddress(r.Header)
			if ip == UnknownIPAddress {
				ip = remoteIP(r.RemoteAddr, ip)
			}

			h.ServeHTTP(w, r.Clone(context.WithValue(r.Context(), trailhead.IpAddrKey, ip)))
		})
	}
}

// IPAddress retrieves the address InjectIPAddress stored, or "".
func IPAddress(ctx context.Context) string {
	ip, _ := ctx.Value(trailhead.IpAddrKey).(string)
	return ip
}

// GetIPAddress parses "X-Forwarded-For" and "X-Real-Ip" headers for the client's IP address,
// marching from right to left to the first public address: the one right before our proxy.
func GetIPAddress(hm http.Header) string {
	for _, h := range []string{"X-Forwarded-For", "X-Real-Ip"} {
		addresses := strings.Split(hm.Get(h), ",")
		for i := len(addresses) - 1; i >= 0; i-- {
			ip := strings.TrimSpace(addresses[i])
			if isPublic(ip) {
				return ip
			}
		}
	}

	return UnknownIPAddress
}

// remoteIP returns the host of a RemoteAddr, or def if it is not public.
func remoteIP(remoteAddr, def string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	if !isPublic(host) {
		return def
	}

	return host
}

func isPublic(s string) bool {
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.IsGlobalUnicast() {
		return false
	}

	addr = addr.Unmap()
	for _, p := range privatePrefixes {
		if p.Contains(addr) {
			return false
		}
	}

	return true
}
