// Package util holds the HTTP helpers shared by kernel downloads
package util

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// NewProxyFunc builds the transport proxy function for kernel downloads.
// Without explicit proxies it defers to the environment. Hosts matching
// noProxy (comma separated names, ".suffix" entries, or "*") go direct.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	bypass := splitNoProxy(noProxy)

	return func(req *http.Request) (*url.URL, error) {
		if bypassed(req.URL.Hostname(), bypass) {
			return nil, nil
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

func splitNoProxy(noProxy string) []string {
	var out []string
	for _, entry := range strings.Split(noProxy, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if h, _, err := net.SplitHostPort(entry); err == nil {
			entry = h
		}
		out = append(out, entry)
	}
	return out
}

func bypassed(host string, entries []string) bool {
	host = strings.ToLower(host)
	for _, e := range entries {
		switch {
		case e == "*":
			return true
		case host == e:
			return true
		case strings.HasPrefix(e, ".") && strings.HasSuffix(host, e):
			return true
		case !strings.HasPrefix(e, ".") && strings.HasSuffix(host, "."+e):
			return true
		}
	}
	return false
}
