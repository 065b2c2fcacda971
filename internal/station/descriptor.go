package station

import (
	"github.com/BurntSushi/toml"
)

// SortMode controls secondary ordering for UPnP container resolution.
type SortMode string

const (
	SortNone        SortMode = "none"
	SortTrackNumber SortMode = "track_number"
	SortRandom      SortMode = "random"
)

// ResolutionMode is how a UPnP descriptor's container is walked.
type ResolutionMode string

const (
	ResolveSingle    ResolutionMode = "single"
	ResolveRandom    ResolutionMode = "random"
	ResolveFlattened ResolutionMode = "flattened"
)

// upnpSection is shared by [container], [random_container] and
// [flattened_container]; which table is present selects ResolutionMode.
type upnpSection struct {
	RootDescriptionURL string   `toml:"root_description_url"`
	ContainerPath      string   `toml:"container_path"`
	TrackCountCap      int      `toml:"track_count_cap"`
	Sort               SortMode `toml:"sort"`
	UPnPClassFilter    string   `toml:"upnp_class_filter"`
}

type cdSection struct {
	Device string `toml:"device"`
}

type usbSection struct {
	DevicePath string `toml:"device_path"`
}

// descriptorDoc is the on-disk shape of a NN.toml station descriptor. Exactly
// one of the optional tables is expected to be present; that is how the
// descriptor's source kind is determined.
type descriptorDoc struct {
	Container           *upnpSection `toml:"container"`
	RandomContainer      *upnpSection `toml:"random_container"`
	FlattenedContainer   *upnpSection `toml:"flattened_container"`
	CD                  *cdSection   `toml:"cd"`
	USB                 *usbSection  `toml:"usb"`
}

func parseDescriptor(path string) (*descriptorDoc, error) {
	var doc descriptorDoc
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, badDescriptor(err.Error())
	}
	return &doc, nil
}

func (d *descriptorDoc) sectionCount() int {
	n := 0
	for _, present := range []bool{d.Container != nil, d.RandomContainer != nil, d.FlattenedContainer != nil, d.CD != nil, d.USB != nil} {
		if present {
			n++
		}
	}
	return n
}
