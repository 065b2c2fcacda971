package station

import (
	"context"
	"os"
	"path/filepath"
)

// Resolver turns a station index (as referenced by a command.Command's
// StationIndex) into a Playlist. It scans StationsDir for a file whose stem
// equals the index, tries extensions in a fixed priority order, and
// dispatches to the matching parser.
//
// Grounded on the teacher's directory-scan shape in
// internal/playlist/scanner.go, generalized from "scan once at startup" to
// "resolve one station on demand."
type Resolver struct {
	StationsDir string
	upnp        upnpClient
	seed        uint64
}

// NewResolver builds a Resolver rooted at dir. seed drives any PRNG-based
// UPnP resolution mode so that test callers can make it deterministic; zero
// is fine for production use since spec.md only requires determinism per
// resolution, not across process restarts.
func NewResolver(dir string, seed uint64) *Resolver {
	return &Resolver{
		StationsDir: dir,
		upnp:        newHTTPUPnPClient(),
		seed:        seed,
	}
}

// extensionPriority is the order in which candidate files are tried when
// more than one exists for the same index stem.
var extensionPriority = []string{".m3u", ".m3u8", ".pls", ".toml"}

// Resolve produces the Playlist for the given station index. ctx bounds the
// UPnP network calls a descriptor-backed station may trigger; m3u/pls/
// device-backed stations resolve synchronously and ignore it.
func (r *Resolver) Resolve(ctx context.Context, index string) (*Playlist, error) {
	path, ext, err := r.findStationFile(index)
	if err != nil {
		return nil, err
	}

	switch ext {
	case ".m3u", ".m3u8":
		return parseM3U(path)
	case ".pls":
		return parsePLS(path)
	case ".toml":
		return r.resolveDescriptor(ctx, path)
	default:
		return nil, notFound()
	}
}

func (r *Resolver) findStationFile(index string) (path string, ext string, err error) {
	for _, candidate := range extensionPriority {
		p := filepath.Join(r.StationsDir, index+candidate)
		if _, statErr := os.Stat(p); statErr == nil {
			return p, candidate, nil
		}
	}
	return "", "", notFound()
}

// resolveDescriptor handles a NN.toml station: it must declare exactly one
// of [container], [random_container], [flattened_container], [cd] or [usb].
func (r *Resolver) resolveDescriptor(ctx context.Context, path string) (*Playlist, error) {
	doc, err := parseDescriptor(path)
	if err != nil {
		return nil, err
	}
	if doc.sectionCount() != 1 {
		return nil, badDescriptor("descriptor must declare exactly one source section")
	}

	title := stationTitleFromFile(path)

	switch {
	case doc.Container != nil:
		return resolveUPnP(ctx, r.upnp, ResolveSingle, doc.Container, title, r.seed)
	case doc.RandomContainer != nil:
		return resolveUPnP(ctx, r.upnp, ResolveRandom, doc.RandomContainer, title, r.seed)
	case doc.FlattenedContainer != nil:
		return resolveUPnP(ctx, r.upnp, ResolveFlattened, doc.FlattenedContainer, title, r.seed)
	case doc.CD != nil:
		return walkDeviceTree(doc.CD.Device, title)
	case doc.USB != nil:
		return walkDeviceTree(doc.USB.DevicePath, title)
	default:
		return nil, badDescriptor("descriptor must declare exactly one source section")
	}
}
