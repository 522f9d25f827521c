package server

import "errors"

var (
	errNoHTTPHandler       = errors.New("http handler is not configured")
	errNoServersAreCreated = errors.New("no servers are created: empty http address")
)
