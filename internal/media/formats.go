package media

import "sort"

// Format holds the encoder parameters for one supported output format.
type Format struct {
	Ext        string
	VideoCodec string
	AudioCodec string
	// ExtraArgs are appended to the ffmpeg command line right before the
	// output path.
	ExtraArgs []string
}

var outputFormats = map[string]Format{
	"mp4":  {Ext: "mp4", VideoCodec: "libx264", AudioCodec: "aac"},
	"webm": {Ext: "webm", VideoCodec: "libvpx-vp9", AudioCodec: "libopus", ExtraArgs: []string{"-b:v", "0", "-crf", "30"}},
	"avi":  {Ext: "avi", VideoCodec: "libx264", AudioCodec: "mp3"},
	"mkv":  {Ext: "mkv", VideoCodec: "libx264", AudioCodec: "aac"},
}

// LookupFormat returns the catalog entry for the given output format id.
func LookupFormat(id string) (Format, bool) {
	f, ok := outputFormats[id]
	return f, ok
}

// FormatIDs returns the supported output format identifiers in stable order.
func FormatIDs() []string {
	ids := make([]string, 0, len(outputFormats))
	for id := range outputFormats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
