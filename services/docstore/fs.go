// Package docstoresvc stores documents on the local filesystem.
package docstoresvc

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/lori/core"
)

type fsStore struct {
	root string
}

var _ core.DocumentStore = (*fsStore)(nil)

func NewFSStore(root string) (*fsStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating docstore root")
	}
	return &fsStore{root: root}, nil
}

// path resolves key under root, refusing traversal outside it.
func (st *fsStore) path(key string) (string, error) {
	p := filepath.Join(st.root, filepath.FromSlash(key))
	if !strings.HasPrefix(p, filepath.Clean(st.root)+string(os.PathSeparator)) {
		return "", errors.Errorf("invalid document key %q", key)
	}
	return p, nil
}

func (st *fsStore) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	p, err := st.path(key)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", errors.Wrap(err, "creating document dir")
	}

	f, err := os.Create(p)
	if err != nil {
		return "", errors.Wrap(err, "creating document file")
	}
	defer func() { _ = f.Close() }()

	if _, err = io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "writing document")
	}
	return key, nil
}

func (st *fsStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := st.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrap(err, "opening document")
	}
	return f, nil
}

func (st *fsStore) Delete(ctx context.Context, key string) error {
	p, err := st.path(key)
	if err != nil {
		return err
	}
	if err = os.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting document")
	}
	return nil
}
