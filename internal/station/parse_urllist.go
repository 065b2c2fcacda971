package station

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// parseM3U reads a simple .m3u/.m3u8 file: one URI per non-comment line,
// with an optional "#EXTINF:<duration>,<title>" line preceding a track.
func parseM3U(path string) (*Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, badDescriptor(err.Error())
	}
	defer f.Close()

	var tracks []Track
	var pendingTitle string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#EXTINF:") {
			parts := strings.SplitN(line, ",", 2)
			if len(parts) == 2 {
				pendingTitle = strings.TrimSpace(parts[1])
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		tracks = append(tracks, Track{URI: line, Title: pendingTitle})
		pendingTitle = ""
	}
	if err := scanner.Err(); err != nil {
		return nil, badDescriptor(err.Error())
	}
	if len(tracks) == 0 {
		return nil, emptyPlaylist()
	}

	return &Playlist{
		Title:  stationTitleFromFile(path),
		Tracks: tracks,
		Kind:   KindLive,
	}, nil
}

// parsePLS reads a .pls file: "[playlist]" followed by FileN=, TitleN= keys.
func parsePLS(path string) (*Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, badDescriptor(err.Error())
	}
	defer f.Close()

	files := make(map[int]string)
	titles := make(map[int]string)
	maxN := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, ";") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case strings.HasPrefix(key, "File"):
			n, err := parseIndexSuffix(key, "File")
			if err != nil {
				continue
			}
			files[n] = value
			if n > maxN {
				maxN = n
			}
		case strings.HasPrefix(key, "Title"):
			n, err := parseIndexSuffix(key, "Title")
			if err != nil {
				continue
			}
			titles[n] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, badDescriptor(err.Error())
	}

	var tracks []Track
	for n := 1; n <= maxN; n++ {
		uri, ok := files[n]
		if !ok {
			continue
		}
		tracks = append(tracks, Track{URI: uri, Title: titles[n]})
	}
	if len(tracks) == 0 {
		return nil, emptyPlaylist()
	}

	return &Playlist{
		Title:  stationTitleFromFile(path),
		Tracks: tracks,
		Kind:   KindLive,
	}, nil
}

func parseIndexSuffix(key, prefix string) (int, error) {
	suffix := strings.TrimPrefix(key, prefix)
	var n int
	if _, err := fmt.Sscanf(suffix, "%d", &n); err != nil {
		return 0, err
	}
	return n, nil
}

func stationTitleFromFile(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
