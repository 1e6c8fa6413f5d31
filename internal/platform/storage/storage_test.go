package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lexora/internal/common"
)

// smallest valid PNG: signature plus IHDR chunk header is enough for sniffing
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type recordingStore struct {
	key, contentType string
	data             []byte
}

func (s *recordingStore) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	s.key, s.contentType, s.data = key, contentType, data
	return "/uploads/" + key, nil
}

func TestSaveImageRejectsNonImages(t *testing.T) {
	store := &recordingStore{}
	_, err := SaveImage(context.Background(), store, "image", "blog", []byte("#!/bin/sh\nrm -rf /\n"))
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if store.key != "" {
		t.Fatal("store should not be called")
	}

	if _, err := SaveImage(context.Background(), store, "image", "blog", nil); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("empty upload: err = %v", err)
	}
}

func TestSaveImagePNG(t *testing.T) {
	store := &recordingStore{}
	url, err := SaveImage(context.Background(), store, "image", "blog", pngHeader)
	if err != nil {
		t.Fatal(err)
	}
	if store.contentType != "image/png" || !strings.HasSuffix(store.key, ".png") || !strings.HasPrefix(store.key, "blog-") {
		t.Fatalf("key=%q type=%q", store.key, store.contentType)
	}
	if url != "/uploads/"+store.key {
		t.Fatalf("url = %q", url)
	}
}

func TestLocalStorePutAndServe(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "uploads")
	if err != nil {
		t.Fatal(err)
	}

	url, err := store.Put(context.Background(), "../escape.png", "image/png", pngHeader)
	if err != nil {
		t.Fatal(err)
	}
	if url != "/uploads/escape.png" {
		t.Fatalf("url = %q", url)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.png")); err != nil {
		t.Fatalf("file not written inside dir: %v", err)
	}

	srv := httptest.NewServer(store.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + url)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || len(body) != len(pngHeader) {
		t.Fatalf("status=%d len=%d", resp.StatusCode, len(body))
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header on uploads")
	}

	resp, err = http.Get(srv.URL + "/uploads/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("directory listing status = %d", resp.StatusCode)
	}
}
