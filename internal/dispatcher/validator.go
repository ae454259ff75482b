package dispatcher

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// deniedNetworks lists the address ranges a webhook endpoint must not
// resolve to. Covers loopback, private, link-local, CGNAT, multicast,
// documentation and other non-routable blocks for both IPv4 and IPv6.
var deniedNetworks = mustParseCIDRs(
	"0.0.0.0/8",       // current network / unspecified
	"10.0.0.0/8",      // private
	"100.64.0.0/10",   // carrier-grade NAT
	"127.0.0.0/8",     // loopback
	"169.254.0.0/16",  // link-local
	"172.16.0.0/12",   // private
	"192.0.2.0/24",    // documentation (TEST-NET-1)
	"192.168.0.0/16",  // private
	"198.18.0.0/15",   // benchmarking
	"198.51.100.0/24", // documentation (TEST-NET-2)
	"203.0.113.0/24",  // documentation (TEST-NET-3)
	"224.0.0.0/4",     // multicast
	"240.0.0.0/4",     // reserved, includes broadcast
	"::/128",          // unspecified
	"::1/128",         // loopback
	"2001:db8::/32",   // documentation
	"fc00::/7",        // unique local
	"fe80::/10",       // link-local
	"fec0::/10",       // site-local (deprecated)
	"ff00::/8",        // multicast
)

func mustParseCIDRs(blocks ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(blocks))
	for _, block := range blocks {
		_, cidr, err := net.ParseCIDR(block)
		if err != nil {
			panic(fmt.Sprintf("bad denied network %q: %v", block, err))
		}
		nets = append(nets, cidr)
	}
	return nets
}

// URLValidator checks that a webhook endpoint is safe to call from the
// service network. URLs must be http(s) and every IP the host resolves
// to must be globally routable, so endpoints cannot be pointed at
// internal infrastructure.
//
// DNS resolution is synchronous and may block briefly; run validation
// on a goroutine that can tolerate blocking I/O.
type URLValidator struct {
	skipPublicIPCheck bool
}

// NewURLValidator builds a validator. With skipPublicIPCheck set the
// resolution step is bypassed so local endpoints work during
// development; scheme and parse checks still apply.
func NewURLValidator(skipPublicIPCheck bool) *URLValidator {
	return &URLValidator{skipPublicIPCheck: skipPublicIPCheck}
}

// ValidateURL returns an error describing why rawURL cannot be used as
// a webhook endpoint, or nil if it is acceptable.
func (v *URLValidator) ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return errors.New("missing url")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse url: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("unsupported url scheme: %q", parsed.Scheme)
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return fmt.Errorf("url %q has no hostname", rawURL)
	}

	if v.skipPublicIPCheck {
		return nil
	}

	if ip := net.ParseIP(hostname); ip != nil {
		if !globallyRoutable(ip) {
			return fmt.Errorf("url resolves to non-routable ip: %s", ip)
		}
		return nil
	}

	ips, err := net.LookupIP(hostname)
	if err != nil || len(ips) == 0 {
		return fmt.Errorf("failed to resolve ip of url %q", rawURL)
	}

	// The hostname is accepted only when every address it resolves to
	// is globally routable.
	for _, ip := range ips {
		if !globallyRoutable(ip) {
			return fmt.Errorf("url resolves to non-routable ip: %s", ip)
		}
	}
	return nil
}

func globallyRoutable(ip net.IP) bool {
	for _, block := range deniedNetworks {
		if block.Contains(ip) {
			return false
		}
	}
	return true
}
