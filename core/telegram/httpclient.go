package telegram

import (
	"net"
	"net/http"
	"time"
)

const (
	defaultDialTimeout     = 5 * time.Second
	defaultTLSHandshake    = 5 * time.Second
	defaultIdleConnTimeout = 30 * time.Second
	defaultKeepAlive       = 30 * time.Second
	// requestSlack is added on top of the long poll timeout so a held
	// getUpdates call is not cut by the client.
	requestSlack = 20 * time.Second
)

// BuildHTTPClient returns the client used for Bot API calls. Failed calls are
// not retried.
func BuildHTTPClient(longPollSeconds int) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout:   longPollTimeout(longPollSeconds) + requestSlack,
		Transport: transport,
	}
}
