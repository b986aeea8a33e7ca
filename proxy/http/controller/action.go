package controller

import (
	"fmt"
	"time"

	"go.dedis.ch/raffle/cli/node"
	"go.dedis.ch/raffle/config"
	"go.dedis.ch/raffle/core/ledger"
	"go.dedis.ch/raffle/proxy/http"
	"golang.org/x/xerrors"
)

var (
	defaultRetry = 50
	retryDelay   = 100 * time.Millisecond
)

// startAction is an action to start the proxy and serve until a signal is
// received.
//
// - implements node.ActionTemplate
type startAction struct {
	proxyFac func(addr string) *http.HTTP
}

func newStartAction() startAction {
	return startAction{
		proxyFac: func(addr string) *http.HTTP {
			return http.NewHTTP(addr)
		},
	}
}

// Execute implements node.ActionTemplate. It starts and injects the proxy http
// server, then blocks until interrupted.
func (a startAction) Execute(ctx node.Context) error {
	var cfg config.Config
	err := ctx.Injector.Resolve(&cfg)
	if err != nil {
		return xerrors.Errorf("failed to resolve config: %v", err)
	}

	var l *ledger.Ledger
	err = ctx.Injector.Resolve(&l)
	if err != nil {
		return xerrors.Errorf("failed to resolve ledger: %v", err)
	}

	addr := ctx.Flags.String("addr")
	if addr == "" {
		addr = cfg.HTTPAddr
	}

	reg, err := http.NewRegistry()
	if err != nil {
		return xerrors.Errorf("failed to create registry: %v", err)
	}

	proxy := a.proxyFac(addr)
	http.NewService(l).Register(proxy, reg)

	ctx.Injector.Inject(proxy)

	done := make(chan error, 1)
	go func() {
		done <- proxy.Listen()
	}()

	for i := 0; i < defaultRetry && proxy.GetAddr() == nil; i++ {
		select {
		case err := <-done:
			return xerrors.Errorf("failed to start proxy server: %v", err)
		case <-time.After(retryDelay):
		}
	}

	listenAddr := proxy.GetAddr()
	if listenAddr == nil {
		proxy.Stop()
		return xerrors.New("failed to start proxy server: timeout")
	}

	fmt.Fprintf(ctx.Out, "started proxy server on %s\n", listenAddr)

	select {
	case <-ctx.Signals:
	case err := <-done:
		return xerrors.Errorf("proxy server failed: %v", err)
	}

	proxy.Stop()

	err = <-done
	if err != nil {
		return xerrors.Errorf("failed to stop proxy server: %v", err)
	}

	fmt.Fprintln(ctx.Out, "proxy server stopped")

	return nil
}
