package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/raffle/cli/node"
	"go.dedis.ch/raffle/config"
	"go.dedis.ch/raffle/core/execution/native"
	"go.dedis.ch/raffle/core/ledger"
	"go.dedis.ch/raffle/core/store/kv"
	"go.dedis.ch/raffle/internal/testing/fake"
	proxyhttp "go.dedis.ch/raffle/proxy/http"
)

func TestStartAction_Execute(t *testing.T) {
	sigs := make(chan os.Signal, 1)
	out := new(syncBuffer)

	var proxy *proxyhttp.HTTP

	action := startAction{
		proxyFac: func(addr string) *proxyhttp.HTTP {
			require.Equal(t, "127.0.0.1:0", addr)
			proxy = proxyhttp.NewHTTP(addr)
			return proxy
		},
	}

	ctx := makeContext(t, fake.Flags{"addr": "127.0.0.1:0"}, out)
	ctx.Signals = sigs

	done := make(chan error, 1)
	go func() {
		done <- action.Execute(ctx)
	}()

	require.Eventually(t, func() bool {
		return bytes.Contains(out.Bytes(), []byte("started proxy server on "))
	}, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://%s/lottery", proxy.GetAddr()))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	sigs <- syscall.SIGTERM

	require.NoError(t, <-done)
	require.Contains(t, string(out.Bytes()), "proxy server stopped\n")
}

func TestStartAction_DefaultAddr(t *testing.T) {
	action := startAction{
		proxyFac: func(addr string) *proxyhttp.HTTP {
			require.Equal(t, config.Default().HTTPAddr, addr)
			return proxyhttp.NewHTTP("127.0.0.1:-1")
		},
	}

	err := action.Execute(makeContext(t, fake.Flags{}, new(syncBuffer)))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to start proxy server: failed to listen on ")
}

func TestStartAction_MissingDependencies(t *testing.T) {
	action := newStartAction()

	ctx := node.Context{Injector: node.NewInjector(), Flags: fake.Flags{}}

	err := action.Execute(ctx)
	require.EqualError(t, err,
		"failed to resolve config: couldn't find dependency for 'config.Config'")

	ctx.Injector.Inject(config.Default())

	err = action.Execute(ctx)
	require.EqualError(t, err,
		"failed to resolve ledger: couldn't find dependency for '*ledger.Ledger'")
}

// -----------------------------------------------------------------------------
// Utility functions

func makeContext(t *testing.T, flags fake.Flags, out *syncBuffer) node.Context {
	db, err := kv.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	inj := node.NewInjector()
	inj.Inject(config.Default())
	inj.Inject(ledger.NewLedger(db, native.NewExecution()))

	return node.Context{
		Injector: inj,
		Flags:    flags,
		Out:      out,
	}
}

type syncBuffer struct {
	sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.Lock()
	defer b.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.Lock()
	defer b.Unlock()

	return append([]byte{}, b.buf.Bytes()...)
}
