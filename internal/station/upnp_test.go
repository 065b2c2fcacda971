package station

import (
	"context"
	"testing"
)

// fakeUPnPClient serves a fixed tree of containers/items keyed by path, so
// resolution-mode logic can be exercised without a real UPnP device.
type fakeUPnPClient struct {
	fetchErr error
	tree     map[string]*didlLite
}

func (f *fakeUPnPClient) fetchRootDescription(ctx context.Context, url string) error {
	return f.fetchErr
}

func (f *fakeUPnPClient) browse(ctx context.Context, path string) (*didlLite, error) {
	doc, ok := f.tree[path]
	if !ok {
		return &didlLite{}, nil
	}
	return doc, nil
}

func newFakeTree() *fakeUPnPClient {
	return &fakeUPnPClient{
		tree: map[string]*didlLite{
			"/root": {
				Containers: []didlContainer{
					{ID: "/root/a", Title: "Album A"},
					{ID: "/root/b", Title: "Album B"},
				},
				Items: []didlItem{
					{ID: "i0", Title: "Root Track", Class: "object.item.audioItem", Res: "http://x/root0"},
				},
			},
			"/root/a": {
				Items: []didlItem{
					{ID: "i1", Title: "A Track 2", Class: "object.item.audioItem", TrackNum: 2, Res: "http://x/a2"},
					{ID: "i2", Title: "A Track 1", Class: "object.item.audioItem", TrackNum: 1, Res: "http://x/a1"},
				},
			},
			"/root/b": {
				Items: []didlItem{
					{ID: "i3", Title: "B Track", Class: "object.item.audioItem", TrackNum: 1, Res: "http://x/b1"},
				},
			},
		},
	}
}

func TestResolveUPnPSingleMode(t *testing.T) {
	client := newFakeTree()
	sec := &upnpSection{RootDescriptionURL: "http://dev/desc.xml", ContainerPath: "/root"}

	pl, err := resolveUPnP(context.Background(), client, ResolveSingle, sec, "UPnP Station", 1)
	if err != nil {
		t.Fatalf("resolveUPnP: %v", err)
	}
	if len(pl.Tracks) != 1 {
		t.Fatalf("expected 1 track from root items, got %d", len(pl.Tracks))
	}
	if pl.Kind != KindFinite {
		t.Errorf("expected KindFinite, got %v", pl.Kind)
	}
}

func TestResolveUPnPFlattenedMode(t *testing.T) {
	client := newFakeTree()
	sec := &upnpSection{RootDescriptionURL: "http://dev/desc.xml", ContainerPath: "/root"}

	pl, err := resolveUPnP(context.Background(), client, ResolveFlattened, sec, "UPnP Station", 1)
	if err != nil {
		t.Fatalf("resolveUPnP: %v", err)
	}
	if len(pl.Tracks) != 4 {
		t.Fatalf("expected 4 tracks (1 root + 2 + 1), got %d", len(pl.Tracks))
	}
}

func TestResolveUPnPSingleModeWithTrackNumberSort(t *testing.T) {
	client := newFakeTree()
	sec := &upnpSection{
		RootDescriptionURL: "http://dev/desc.xml",
		ContainerPath:      "/root/a",
		Sort:               SortTrackNumber,
	}

	pl, err := resolveUPnP(context.Background(), client, ResolveSingle, sec, "Album A", 1)
	if err != nil {
		t.Fatalf("resolveUPnP: %v", err)
	}
	if len(pl.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(pl.Tracks))
	}
	if pl.Tracks[0].Title != "A Track 1" || pl.Tracks[1].Title != "A Track 2" {
		t.Errorf("expected track-number order, got %+v", pl.Tracks)
	}
}

func TestResolveUPnPRandomModeIsDeterministicForSameSeed(t *testing.T) {
	sec := &upnpSection{RootDescriptionURL: "http://dev/desc.xml", ContainerPath: "/root"}

	pl1, err := resolveUPnP(context.Background(), newFakeTree(), ResolveRandom, sec, "Station", 42)
	if err != nil {
		t.Fatalf("resolveUPnP: %v", err)
	}
	pl2, err := resolveUPnP(context.Background(), newFakeTree(), ResolveRandom, sec, "Station", 42)
	if err != nil {
		t.Fatalf("resolveUPnP: %v", err)
	}
	if len(pl1.Tracks) != len(pl2.Tracks) {
		t.Fatalf("same seed produced different track counts: %d vs %d", len(pl1.Tracks), len(pl2.Tracks))
	}
	for i := range pl1.Tracks {
		if pl1.Tracks[i].URI != pl2.Tracks[i].URI {
			t.Errorf("same seed produced different track at %d: %q vs %q", i, pl1.Tracks[i].URI, pl2.Tracks[i].URI)
		}
	}
}

func TestResolveUPnPTrackCountCap(t *testing.T) {
	client := newFakeTree()
	sec := &upnpSection{
		RootDescriptionURL: "http://dev/desc.xml",
		ContainerPath:      "/root",
		TrackCountCap:      2,
	}

	pl, err := resolveUPnP(context.Background(), client, ResolveFlattened, sec, "Station", 1)
	if err != nil {
		t.Fatalf("resolveUPnP: %v", err)
	}
	if len(pl.Tracks) != 2 {
		t.Fatalf("expected cap of 2 tracks, got %d", len(pl.Tracks))
	}
}

func TestResolveUPnPNetworkFailureOnFetch(t *testing.T) {
	client := &fakeUPnPClient{fetchErr: errNetworkTest}
	sec := &upnpSection{RootDescriptionURL: "http://dev/desc.xml"}

	_, err := resolveUPnP(context.Background(), client, ResolveSingle, sec, "Station", 1)
	if err == nil {
		t.Fatal("expected error")
	}
	se, ok := As(err)
	if !ok || se.Kind != ErrNetworkFailure {
		t.Errorf("expected ErrNetworkFailure, got %v", err)
	}
}

func TestResolveUPnPEmptyContainerYieldsEmptyPlaylistError(t *testing.T) {
	client := &fakeUPnPClient{tree: map[string]*didlLite{"/empty": {}}}
	sec := &upnpSection{RootDescriptionURL: "http://dev/desc.xml", ContainerPath: "/empty"}

	_, err := resolveUPnP(context.Background(), client, ResolveSingle, sec, "Station", 1)
	if err == nil {
		t.Fatal("expected error")
	}
	se, ok := As(err)
	if !ok || se.Kind != ErrEmptyPlaylist {
		t.Errorf("expected ErrEmptyPlaylist, got %v", err)
	}
}

func TestResolveUPnPClassFilter(t *testing.T) {
	client := &fakeUPnPClient{tree: map[string]*didlLite{
		"/root": {
			Items: []didlItem{
				{ID: "i1", Title: "Audio", Class: "object.item.audioItem", Res: "http://x/1"},
				{ID: "i2", Title: "Video", Class: "object.item.videoItem", Res: "http://x/2"},
			},
		},
	}}
	sec := &upnpSection{RootDescriptionURL: "http://dev/desc.xml", ContainerPath: "/root", UPnPClassFilter: "audioItem"}

	pl, err := resolveUPnP(context.Background(), client, ResolveSingle, sec, "Station", 1)
	if err != nil {
		t.Fatalf("resolveUPnP: %v", err)
	}
	if len(pl.Tracks) != 1 || pl.Tracks[0].Title != "Audio" {
		t.Errorf("expected only the audio item to survive filtering, got %+v", pl.Tracks)
	}
}

var errNetworkTest = &Error{Kind: ErrNetworkFailure, Message: "simulated"}
