package command

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/raffle/crypto"
	"go.dedis.ch/raffle/internal/testing/fake"
)

func TestAction_Keygen(t *testing.T) {
	out := new(bytes.Buffer)
	a := action{printer: out, load: LoadSigner, create: createSigner}

	path := filepath.Join(t.TempDir(), "alice.key")

	err := a.keygenAction(fake.Flags{"key": path})
	require.NoError(t, err)
	require.Regexp(t, "^schnorr:[0-9a-f]{64}\n$", out.String())

	first := out.String()
	out.Reset()

	// An existing key is kept.
	err = a.keygenAction(fake.Flags{"key": path})
	require.NoError(t, err)
	require.Equal(t, first, out.String())

	out.Reset()

	err = a.identityAction(fake.Flags{"key": path})
	require.NoError(t, err)
	require.Equal(t, first, out.String())

	signer, err := LoadSigner(path)
	require.NoError(t, err)

	text, err := signer.GetPublicKey().MarshalText()
	require.NoError(t, err)
	require.Equal(t, strings.TrimSpace(first), string(text))
}

func TestAction_Failures(t *testing.T) {
	a := action{
		printer: new(bytes.Buffer),
		load:    badLoad,
		create:  badLoad,
	}

	err := a.keygenAction(fake.Flags{})
	require.EqualError(t, err, fake.Err("failed to create key"))

	err = a.identityAction(fake.Flags{})
	require.EqualError(t, err, fake.Err("failed to load key"))

	err = a.print(badSigner{})
	require.EqualError(t, err, fake.Err("failed to marshal identity"))
}

func TestLoadSigner_Failures(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSigner(filepath.Join(dir, "none.key"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read key: ")

	path := filepath.Join(dir, "bad.key")
	require.NoError(t, os.WriteFile(path, []byte("01\n"), 0600))

	_, err = LoadSigner(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse key: ")

	_, err = createSigner(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse key: ")

	_, err = createSigner(filepath.Join(dir, "missing", "dir.key"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load or create: ")
}

func TestInitializer_Lifecycle(t *testing.T) {
	initializer := Initializer{}
	require.NoError(t, initializer.OnStart(nil, nil))
	require.NoError(t, initializer.OnStop(nil))
}

// -----------------------------------------------------------------------------
// Utility functions

func badLoad(string) (crypto.Signer, error) {
	return nil, fake.GetError()
}

type badSigner struct {
	fake.Signer
}

func (badSigner) GetPublicKey() crypto.PublicKey {
	return fake.NewBadPublicKey()
}
