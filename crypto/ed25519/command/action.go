package command

import (
	"fmt"
	"io"

	"go.dedis.ch/raffle/cli"
	"go.dedis.ch/raffle/crypto"
	"go.dedis.ch/raffle/crypto/ed25519"
	"go.dedis.ch/raffle/crypto/loader"
	"golang.org/x/xerrors"
)

// action defines the cli actions of the key commands. Defining functions and
// printer helps in testing the commands.
type action struct {
	printer io.Writer

	load   func(path string) (crypto.Signer, error)
	create func(path string) (crypto.Signer, error)
}

func (a action) keygenAction(flags cli.Flags) error {
	signer, err := a.create(flags.Path("key"))
	if err != nil {
		return xerrors.Errorf("failed to create key: %v", err)
	}

	return a.print(signer)
}

func (a action) identityAction(flags cli.Flags) error {
	signer, err := a.load(flags.Path("key"))
	if err != nil {
		return xerrors.Errorf("failed to load key: %v", err)
	}

	return a.print(signer)
}

func (a action) print(signer crypto.Signer) error {
	text, err := signer.GetPublicKey().MarshalText()
	if err != nil {
		return xerrors.Errorf("failed to marshal identity: %v", err)
	}

	fmt.Fprintln(a.printer, string(text))

	return nil
}

// LoadSigner reads the private key from the file.
func LoadSigner(path string) (crypto.Signer, error) {
	data, err := loader.NewFileLoader(path).Load()
	if err != nil {
		return nil, xerrors.Errorf("failed to read key: %v", err)
	}

	signer, err := ed25519.NewSignerFromBytes(data)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse key: %v", err)
	}

	return signer, nil
}

func createSigner(path string) (crypto.Signer, error) {
	data, err := loader.NewFileLoader(path).LoadOrCreate(generator{})
	if err != nil {
		return nil, xerrors.Errorf("failed to load or create: %v", err)
	}

	signer, err := ed25519.NewSignerFromBytes(data)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse key: %v", err)
	}

	return signer, nil
}

// generator creates a new private key.
//
// - implements loader.Generator
type generator struct{}

// Generate implements loader.Generator. It returns the marshaled private key.
func (generator) Generate() ([]byte, error) {
	data, err := ed25519.NewSigner().MarshalBinary()
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal signer: %v", err)
	}

	return data, nil
}
