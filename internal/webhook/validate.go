package webhook

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"vibemcp/internal/vibeerr"
)

// EventTypes is the closed set of event types a subscription may list,
// plus the "*" wildcard matching every event.
var EventTypes = map[string]bool{
	"task.created":        true,
	"task.updated":        true,
	"doc.created":         true,
	"doc.updated":         true,
	"session.logged":      true,
	"plan.created":        true,
	"plan.updated":        true,
	"project.initialized": true,
	"index.reindexed":     true,
	"*":                   true,
}

var blockedHostnames = map[string]bool{
	"localhost":                 true,
	"127.0.0.1":                 true,
	"0.0.0.0":                   true,
	"::1":                       true,
	"metadata.google.internal":  true,
	"169.254.169.254":           true,
}

var blockedRanges = mustParseCIDRs(
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, n, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("webhook: invalid blocked CIDR %q: %v", cidr, err))
		}
		nets = append(nets, n)
	}
	return nets
}

// resolveFunc is overridable in tests to avoid real DNS lookups.
var resolveFunc = net.LookupIP

// validateURL enforces the SSRF policy: scheme restriction, a blocked
// hostname set, and a check that none of the hostname's resolved
// addresses fall in a private or special-use range. A hostname that
// fails to resolve is allowed through - it may simply be unreachable
// right now, which is the delivery worker's problem, not the
// registration check's.
func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return vibeerr.Wrap(vibeerr.KindUnsafe, "invalid webhook URL", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return vibeerr.New(vibeerr.KindUnsafe, "webhook URL must use http or https")
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return vibeerr.New(vibeerr.KindUnsafe, "webhook URL must have a hostname")
	}
	if blockedHostnames[strings.ToLower(hostname)] {
		return vibeerr.New(vibeerr.KindUnsafe, "blocked webhook hostname: "+hostname)
	}

	addrs, err := resolveFunc(hostname)
	if err != nil {
		return nil
	}
	for _, addr := range addrs {
		for _, blocked := range blockedRanges {
			if blocked.Contains(addr) {
				return vibeerr.New(vibeerr.KindUnsafe, "webhook URL resolves to blocked IP range: "+addr.String())
			}
		}
	}
	return nil
}

// validateSecret enforces the minimum secret length.
func validateSecret(secret string) error {
	if len(secret) < 32 {
		return vibeerr.New(vibeerr.KindUnsafe, "webhook secret must be at least 32 characters")
	}
	return nil
}

// validateEventTypes rejects any event type outside the closed set.
func validateEventTypes(eventTypes []string) error {
	if len(eventTypes) == 0 {
		return vibeerr.New(vibeerr.KindInvalidArgument, "subscription must list at least one event type")
	}
	for _, et := range eventTypes {
		if !EventTypes[et] {
			return vibeerr.New(vibeerr.KindInvalidArgument, "unknown event type: "+et)
		}
	}
	return nil
}
