package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"storybook-media-api/internal/config"
)

func TestLocalStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	if err := store.Put(ctx, "page/1/image/a.png", "image/png", []byte("png-bytes")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rc, err := store.Get(ctx, "page/1/image/a.png")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "png-bytes" {
		t.Fatalf("content: want=%q got=%q", "png-bytes", data)
	}

	if err := store.Delete(ctx, "page/1/image/a.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "page/1/image/a.png"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := store.Get(ctx, "page/1/image/a.png"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("Get after delete: want ErrObjectNotFound got=%v", err)
	}
}

func TestLocalStore_KeyCannotEscapeRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, _ := NewLocalStore(root)

	if err := store.Put(ctx, "../../escape.bin", "application/octet-stream", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	p, _ := store.path("../../escape.bin")
	if want := root + "/escape.bin"; p != want {
		t.Fatalf("path: want=%q got=%q", want, p)
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	store, err := New(context.Background(), &config.StorageConfig{Backend: "local", Local: config.LocalStorageConfig{Root: t.TempDir()}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := store.(*LocalStore); !ok {
		t.Fatalf("backend: want *LocalStore got=%T", store)
	}
	if _, err := New(context.Background(), &config.StorageConfig{Backend: "s3"}); err == nil {
		t.Fatalf("unknown backend: want error")
	}
}

func TestExtensionForType(t *testing.T) {
	cases := map[string]string{
		"image/png":                ".png",
		"IMAGE/JPEG":               ".jpg",
		"audio/mpeg":               ".mp3",
		"audio/wav; codecs=1":      ".wav",
		"application/octet-stream": ".bin",
	}
	for in, want := range cases {
		if got := ExtensionForType(in); got != want {
			t.Fatalf("ExtensionForType(%q): want=%q got=%q", in, want, got)
		}
	}
}
