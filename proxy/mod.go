// Package proxy defines the primitives of the client-facing server of the
// ledger.
package proxy

import (
	"net"
	"net/http"
)

// Proxy defines the primitives to implement an http server that handles the
// client side requests.
type Proxy interface {
	// Listen starts the proxy server. This call is assumed to be blocking.
	Listen() error

	// Stop stops the proxy server.
	Stop()

	// GetAddr returns the address of the server once it listens, otherwise
	// nil.
	GetAddr() net.Addr

	// RegisterHandler registers a new handler.
	RegisterHandler(path string, handler func(http.ResponseWriter, *http.Request))
}
