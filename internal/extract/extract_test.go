package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cinedex/internal/domain"
)

func TestQuality(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain 1080p", "Download [1.4GB] 1080p x264", "1080p"},
		{"uppercase token", "Movie 720P HEVC", "720p"},
		{"4k", "Some Title 4K HDR", "4k"},
		{"2160p", "UHD 2160p remux", "2160p"},
		{"first occurrence wins", "480p and 1080p options", "480p"},
		{"no token", "Director's Cut", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Quality(tt.text))
		})
	}
}

func TestEncoding(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"x264", "Download [1.4GB] 1080p x264", "x264"},
		{"x265 uppercase", "720p X265 10bit", "x265"},
		{"hevc canonical spelling", "2160p hevc remux", "HEVC"},
		{"h.264", "WEB-DL H.264 AAC", "H.264"},
		{"10bit", "1080p 10BIT HEVC", "10Bit"},
		{"none", "plain title", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encoding(tt.text))
		})
	}
}

func TestSize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"gb", "Download [1.4GB] 1080p x264", "1.4GB"},
		{"mb", "480p [350MB] x264", "350MB"},
		{"lowercase unit", "[700mb] rip", "700MB"},
		{"spaces inside brackets", "[ 2.1 GB ]", "2.1GB"},
		{"unbracketed ignored", "size is 1.4GB", ""},
		{"none", "no size here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Size(tt.text))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "MKV", Format("1080p MKV x264"))
	assert.Equal(t, "MP4", Format("720p mp4"))
	assert.Equal(t, "WebM", Format("stream webm vp9"))
	assert.Equal(t, "", Format("1080p x264"))
}

func TestLinkPurpose(t *testing.T) {
	tests := []struct {
		label string
		want  domain.LinkPurpose
	}{
		{"G-Direct Download", domain.PurposeGDrive},
		{"GDrive [Instant]", domain.PurposeGDrive},
		{"V-Cloud", domain.PurposeVCloud},
		{"v-cloud resumable", domain.PurposeVCloud},
		{"Batch/Zip", domain.PurposeBatch},
		{"Single Episode Zip", domain.PurposeBatch},
		{"Download Now", domain.PurposeDirect},
		{"", domain.PurposeUnknown},
		{"   ", domain.PurposeUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LinkPurpose(tt.label), "label %q", tt.label)
	}
}

// gdrive tokens outrank batch tokens when a label carries both.
func TestLinkPurposePriority(t *testing.T) {
	assert.Equal(t, domain.PurposeGDrive, LinkPurpose("GDrive Batch"))
	assert.Equal(t, domain.PurposeVCloud, LinkPurpose("V-Cloud Zip"))
}
