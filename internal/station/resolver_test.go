package station

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestResolverDispatchesM3U(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "1.m3u", "http://example.com/stream\n")

	r := NewResolver(dir, 0)
	pl, err := r.Resolve(context.Background(), "1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if pl.Kind != KindLive {
		t.Errorf("expected KindLive, got %v", pl.Kind)
	}
}

func TestResolverDispatchesPLS(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "2.pls", "[playlist]\nFile1=http://example.com/a\n")

	r := NewResolver(dir, 0)
	pl, err := r.Resolve(context.Background(), "2")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(pl.Tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(pl.Tracks))
	}
}

func TestResolverDispatchesCDDescriptor(t *testing.T) {
	dir := t.TempDir()
	deviceDir := filepath.Join(dir, "cdrom")
	if err := os.MkdirAll(deviceDir, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	os.WriteFile(filepath.Join(deviceDir, "track.mp3"), []byte("x"), 0o644)
	writeTempFile(t, dir, "3.toml", "[cd]\ndevice = \""+deviceDir+"\"\n")

	r := NewResolver(dir, 0)
	pl, err := r.Resolve(context.Background(), "3")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if pl.Kind != KindFinite || len(pl.Tracks) != 1 {
		t.Errorf("unexpected playlist: %+v", pl)
	}
}

func TestResolverNotFoundWhenNoFileMatchesIndex(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(dir, 0)

	_, err := r.Resolve(context.Background(), "999")
	if err == nil {
		t.Fatal("expected error")
	}
	se, ok := As(err)
	if !ok || se.Kind != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolverPrefersM3UOverPLSWhenBothExist(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "4.m3u", "http://example.com/m3u-wins\n")
	writeTempFile(t, dir, "4.pls", "[playlist]\nFile1=http://example.com/pls-loses\n")

	r := NewResolver(dir, 0)
	pl, err := r.Resolve(context.Background(), "4")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if pl.Tracks[0].URI != "http://example.com/m3u-wins" {
		t.Errorf("expected m3u to take priority, got %q", pl.Tracks[0].URI)
	}
}

func TestResolverRejectsDescriptorWithMultipleSections(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "5.toml", "[cd]\ndevice = \"/dev/sr0\"\n[usb]\ndevice_path = \"/media/usb\"\n")

	r := NewResolver(dir, 0)
	_, err := r.Resolve(context.Background(), "5")
	if err == nil {
		t.Fatal("expected error")
	}
	se, ok := As(err)
	if !ok || se.Kind != ErrBadDescriptor {
		t.Errorf("expected ErrBadDescriptor, got %v", err)
	}
}

func TestResolverRejectsDescriptorWithNoSections(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "6.toml", "# empty\n")

	r := NewResolver(dir, 0)
	_, err := r.Resolve(context.Background(), "6")
	if err == nil {
		t.Fatal("expected error")
	}
	se, ok := As(err)
	if !ok || se.Kind != ErrBadDescriptor {
		t.Errorf("expected ErrBadDescriptor, got %v", err)
	}
}
