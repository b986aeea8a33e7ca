package loader

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/xerrors"
)

// keyPerm is the permission of a key file: read-only for the owner.
const keyPerm = 0400

// fileLoader keeps the key hex-encoded in a file.
//
// - implements loader.Loader
type fileLoader struct {
	path string

	readFn  func(path string) ([]byte, error)
	writeFn func(path string, data []byte) error
}

// NewFileLoader returns a loader of the key stored at the path.
func NewFileLoader(path string) Loader {
	return fileLoader{
		path:    path,
		readFn:  os.ReadFile,
		writeFn: writeAtomic,
	}
}

// LoadOrCreate implements loader.Loader. A new key is written to a temporary
// file that is then renamed, so that a key file is never partially written.
func (l fileLoader) LoadOrCreate(g Generator) ([]byte, error) {
	data, err := l.Load()
	if err == nil {
		return data, nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return nil, xerrors.Errorf("failed to load file: %v", err)
	}

	data, err = g.Generate()
	if err != nil {
		return nil, xerrors.Errorf("generator failed: %v", err)
	}

	buf := make([]byte, hex.EncodedLen(len(data)), hex.EncodedLen(len(data))+1)
	hex.Encode(buf, data)

	err = l.writeFn(l.path, append(buf, '\n'))
	if err != nil {
		return nil, xerrors.Errorf("failed to write file: %v", err)
	}

	return data, nil
}

// Load implements loader.Loader.
func (l fileLoader) Load() ([]byte, error) {
	text, err := l.readFn(l.path)
	if err != nil {
		return nil, xerrors.Errorf("failed to read file: %w", err)
	}

	text = bytes.TrimSpace(text)

	data := make([]byte, hex.DecodedLen(len(text)))

	_, err = hex.Decode(data, text)
	if err != nil {
		return nil, xerrors.Errorf("malformed key file: %v", err)
	}

	return data, nil
}

func writeAtomic(path string, data []byte) error {
	file, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return xerrors.Errorf("failed to create: %v", err)
	}

	defer os.Remove(file.Name())

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		return xerrors.Errorf("failed to write: %v", err)
	}

	err = file.Close()
	if err != nil {
		return xerrors.Errorf("failed to close: %v", err)
	}

	err = os.Chmod(file.Name(), keyPerm)
	if err != nil {
		return xerrors.Errorf("failed to chmod: %v", err)
	}

	err = os.Rename(file.Name(), path)
	if err != nil {
		return xerrors.Errorf("failed to rename: %v", err)
	}

	return nil
}
