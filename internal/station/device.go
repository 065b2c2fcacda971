package station

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// audioExtensions mirrors the set of recognized audio file extensions.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".wav":  true,
	".m4a":  true,
	".aac":  true,
}

// probeDevice checks the device path exists and is accessible. Real device
// mount/eject handling belongs to the OS and is out of scope here; this is
// the narrow "is it there" probe the resolver needs before walking it.
func probeDevice(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return deviceUnavailable()
	}
	if !info.IsDir() {
		return deviceUnavailable()
	}
	return nil
}

// walkDeviceTree resolves a CD/USB station by walking the device directory
// tree (an artist/album/track layout when structured, or a flat directory
// otherwise) and sorting by path lexicographically, case-insensitive.
//
// Adapted from the teacher's ScanMusicDirectory walk in
// internal/playlist/scanner.go: same filepath.Walk + extension filter +
// sort shape, generalized from "register every track in a shared library"
// to "produce one station's finite playlist."
func walkDeviceTree(root, title string) (*Playlist, error) {
	if err := probeDevice(root); err != nil {
		return nil, err
	}

	var paths []string
	err := filepath.Walk(root, func(path string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if fi.IsDir() {
			return nil
		}
		if audioExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, deviceUnavailable()
	}

	sort.Slice(paths, func(i, j int) bool {
		return strings.ToLower(paths[i]) < strings.ToLower(paths[j])
	})

	if len(paths) == 0 {
		return nil, emptyPlaylist()
	}

	tracks := make([]Track, 0, len(paths))
	for _, p := range paths {
		tracks = append(tracks, Track{
			URI:   p,
			Title: stationTitleFromFile(p),
		})
	}

	return &Playlist{Title: title, Tracks: tracks, Kind: KindFinite}, nil
}
