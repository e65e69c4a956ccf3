// Package extract maps free-text release labels to structured facets.
// All functions are pure and safe for concurrent use; absent input yields
// the zero value, never an error.
package extract

import (
	"regexp"
	"strings"

	"cinedex/internal/domain"
)

var (
	qualityRe  = regexp.MustCompile(`(?i)(4k|2160p|1080p|720p|480p)`)
	encodingRe = regexp.MustCompile(`(?i)(x264|x265|hevc|h\.264|h\.265|10bit)`)
	sizeRe     = regexp.MustCompile(`(?i)\[\s*([0-9]+(?:\.[0-9]+)?\s*(?:mb|gb))\s*\]`)
	formatRe   = regexp.MustCompile(`(?i)\b(mkv|mp4|avi|wmv|flv|webm)\b`)
)

// canonical spellings of encoding and container tokens, keyed lowercase.
var (
	encodingCanon = map[string]string{
		"x264":  "x264",
		"x265":  "x265",
		"hevc":  "HEVC",
		"h.264": "H.264",
		"h.265": "H.265",
		"10bit": "10Bit",
	}
	formatCanon = map[string]string{
		"mkv":  "MKV",
		"mp4":  "MP4",
		"avi":  "AVI",
		"wmv":  "WMV",
		"flv":  "FLV",
		"webm": "WebM",
	}
)

// Quality returns the first quality token found in text ("4k", "2160p",
// "1080p", "720p", "480p"), or "" when none is present.
func Quality(text string) string {
	m := qualityRe.FindString(text)
	return strings.ToLower(m)
}

// Encoding returns the first encoding token found in text in its
// canonical spelling, or "" when none is present.
func Encoding(text string) string {
	m := encodingRe.FindString(text)
	if m == "" {
		return ""
	}
	return encodingCanon[strings.ToLower(m)]
}

// Size returns a bracketed size token like "1.4GB" stripped of its
// brackets and whitespace, or "" when none is present.
func Size(text string) string {
	m := sizeRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	s := strings.ReplaceAll(m[1], " ", "")
	// Unit spelling is normalized upper so "1.4gb" and "1.4GB" collapse.
	n := len(s)
	return s[:n-2] + strings.ToUpper(s[n-2:])
}

// Format returns the first container format token found in text in its
// canonical spelling, or "" when none is present.
func Format(text string) string {
	m := formatRe.FindString(text)
	if m == "" {
		return ""
	}
	return formatCanon[strings.ToLower(m)]
}

// LinkPurpose classifies a download button label. Rules are substring
// matches checked in a fixed priority order: gdrive-family tokens first,
// then vcloud, then batch/zip, then direct for any other non-empty label.
func LinkPurpose(buttonLabel string) domain.LinkPurpose {
	label := strings.ToLower(strings.TrimSpace(buttonLabel))
	switch {
	case label == "":
		return domain.PurposeUnknown
	case strings.Contains(label, "g-direct"),
		strings.Contains(label, "gdrive"),
		strings.Contains(label, "g-drive"),
		strings.Contains(label, "google drive"),
		strings.Contains(label, "instant"):
		return domain.PurposeGDrive
	case strings.Contains(label, "v-cloud"),
		strings.Contains(label, "vcloud"):
		return domain.PurposeVCloud
	case strings.Contains(label, "batch"),
		strings.Contains(label, "zip"):
		return domain.PurposeBatch
	default:
		return domain.PurposeDirect
	}
}
