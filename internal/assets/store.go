package assets

import (
	"errors"
	"os"
	"path/filepath"
)

const (
	labelsDir   = "labels"
	previewsDir = "qr_codes"
)

// Store writes issued label documents and preview images to disk under a
// single static root, mirroring the public /static/ URL space.
type Store struct {
	root string
}

// NewStore constructs a store and creates the asset directories.
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("assets: empty root")
	}
	for _, dir := range []string{labelsDir, previewsDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, err
		}
	}
	return &Store{root: root}, nil
}

// Root returns the filesystem root served under /static/.
func (s *Store) Root() string {
	return s.root
}

// SaveLabel writes the label PDF for a master identifier and returns its
// web path.
func (s *Store) SaveLabel(masterID string, data []byte) (string, error) {
	return s.save(labelsDir, masterID+".pdf", data)
}

// SavePreview writes the preview PNG for a preview identifier and returns
// its web path.
func (s *Store) SavePreview(previewID string, data []byte) (string, error) {
	return s.save(previewsDir, previewID+".png", data)
}

// Remove deletes previously written assets by web path. Used to compensate
// when an issuance aborts after assets were written; missing files are not
// an error.
func (s *Store) Remove(webPaths ...string) {
	for _, webPath := range webPaths {
		rel, ok := trimWebPrefix(webPath)
		if !ok {
			continue
		}
		_ = os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	}
}

func (s *Store) save(dir, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("assets: empty payload")
	}
	if err := os.WriteFile(filepath.Join(s.root, dir, name), data, 0o644); err != nil {
		return "", err
	}
	return "/static/" + dir + "/" + name, nil
}

func trimWebPrefix(webPath string) (string, bool) {
	const prefix = "/static/"
	if len(webPath) <= len(prefix) || webPath[:len(prefix)] != prefix {
		return "", false
	}
	return webPath[len(prefix):], true
}
