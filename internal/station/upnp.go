package station

import (
	"context"
	"encoding/xml"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sort"
	"strings"
	"time"
)

// No UPnP/SOAP client library appears anywhere in the retrieved example
// pack, so the root-description fetch and container browse are hand-rolled
// against net/http + encoding/xml. This is a deliberately narrow, justified
// stdlib island — see DESIGN.md.

// didlLite is the minimal subset of a UPnP ContentDirectory Browse response
// this resolver understands: containers (folders) and items (tracks).
type didlLite struct {
	XMLName    xml.Name      `xml:"DIDL-Lite"`
	Containers []didlContainer `xml:"container"`
	Items      []didlItem      `xml:"item"`
}

type didlContainer struct {
	ID    string `xml:"id,attr"`
	Title string `xml:"title"`
}

type didlItem struct {
	ID         string `xml:"id,attr"`
	Title      string `xml:"title"`
	Class      string `xml:"class"`
	TrackNum   int    `xml:"originalTrackNumber"`
	Res        string `xml:"res"`
}

// upnpClient abstracts the HTTP fetch + browse call so tests can substitute
// a fake without a real UPnP device.
type upnpClient interface {
	fetchRootDescription(ctx context.Context, url string) error
	browse(ctx context.Context, containerPath string) (*didlLite, error)
}

type httpUPnPClient struct {
	httpClient *http.Client
}

func newHTTPUPnPClient() *httpUPnPClient {
	return &httpUPnPClient{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

func (c *httpUPnPClient) fetchRootDescription(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("root description fetch: status %d", resp.StatusCode)
	}
	return nil
}

// browse performs a (simplified, non-SOAP-enveloped) GET against a
// ContentDirectory browse endpoint and decodes a DIDL-Lite document. A real
// UPnP stack would wrap this in SOAP; that envelope is intentionally
// omitted here since no example in the pack models one, and the invariant
// this resolver cares about (container walk + item collection) does not
// depend on the transport envelope.
func (c *httpUPnPClient) browse(ctx context.Context, containerURL string) (*didlLite, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, containerURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var doc didlLite
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// resolveUPnP walks a UPnP container per mode and produces a Playlist.
func resolveUPnP(ctx context.Context, client upnpClient, mode ResolutionMode, sec *upnpSection, title string, seed uint64) (*Playlist, error) {
	if err := client.fetchRootDescription(ctx, sec.RootDescriptionURL); err != nil {
		return nil, networkFailure(err.Error())
	}

	doc, err := client.browse(ctx, sec.ContainerPath)
	if err != nil {
		return nil, networkFailure(err.Error())
	}

	var items []didlItem

	switch mode {
	case ResolveSingle:
		items = doc.Items

	case ResolveRandom:
		if len(doc.Containers) == 0 {
			return nil, emptyPlaylist()
		}
		// A PRNG seeded at resolution time makes the pick deterministic for
		// this one Playlist instance, per spec.md §4.3.
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		chosen := doc.Containers[rng.IntN(len(doc.Containers))]
		child, err := client.browse(ctx, chosen.ID)
		if err != nil {
			return nil, networkFailure(err.Error())
		}
		items = child.Items

	case ResolveFlattened:
		items = append(items, doc.Items...)
		for _, c := range doc.Containers {
			child, err := client.browse(ctx, c.ID)
			if err != nil {
				return nil, networkFailure(err.Error())
			}
			items = append(items, child.Items...)
		}

	default:
		return nil, badDescriptor("unknown UPnP resolution mode")
	}

	if sec.UPnPClassFilter != "" {
		filtered := items[:0]
		for _, it := range items {
			if strings.Contains(it.Class, sec.UPnPClassFilter) {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}

	switch sec.Sort {
	case SortTrackNumber:
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].TrackNum != items[j].TrackNum {
				return items[i].TrackNum < items[j].TrackNum
			}
			return items[i].Title < items[j].Title
		})
	case SortRandom:
		rng := rand.New(rand.NewPCG(seed, seed^0x1234567890abcdef))
		rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	}

	if sec.TrackCountCap > 0 && len(items) > sec.TrackCountCap {
		items = items[:sec.TrackCountCap]
	}

	if len(items) == 0 {
		return nil, emptyPlaylist()
	}

	tracks := make([]Track, 0, len(items))
	for _, it := range items {
		tracks = append(tracks, Track{URI: it.Res, Title: it.Title})
	}

	return &Playlist{Title: title, Tracks: tracks, Kind: KindFinite}, nil
}
