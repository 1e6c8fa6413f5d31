package storage

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes images into Dir and serves them under PublicPath.
type LocalStore struct {
	Dir        string
	PublicPath string
}

func NewLocalStore(dir, publicPath string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalStore{Dir: dir, PublicPath: "/" + strings.Trim(publicPath, "/")}, nil
}

func (s *LocalStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	name := filepath.Base(key)
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("LocalStore.Put: %w", err)
	}
	return path.Join(s.PublicPath, name), nil
}

// Handler serves stored files read-only, without directory listings.
// Mount it under PublicPath.
func (s *LocalStore) Handler() http.Handler {
	files := http.StripPrefix(s.PublicPath, http.FileServer(http.Dir(s.Dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", "*")
		files.ServeHTTP(w, r)
	})
}
