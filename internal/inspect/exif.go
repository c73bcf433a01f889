package inspect

import (
	"bytes"
	"context"
	"log/slog"
	"path"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/nao1215/siteclone/internal/model"
)

// tag is one decoded EXIF entry.
type tag struct {
	name  string
	value string
}

// rule maps a group of EXIF tags to a finding.
type rule struct {
	findingType string
	title       string
	severity    model.Severity
}

// tagRules lists the EXIF tags worth reporting.
var tagRules = map[string]rule{
	"GPSLatitude":     {findingType: "exif_gps", title: "GPS coordinates in image metadata", severity: model.SeverityHigh},
	"GPSLongitude":    {findingType: "exif_gps", title: "GPS coordinates in image metadata", severity: model.SeverityHigh},
	"GPSLatitudeRef":  {findingType: "exif_gps", title: "GPS coordinates in image metadata", severity: model.SeverityHigh},
	"GPSLongitudeRef": {findingType: "exif_gps", title: "GPS coordinates in image metadata", severity: model.SeverityHigh},

	"SerialNumber":       {findingType: "exif_serial", title: "Device serial number in image metadata", severity: model.SeverityHigh},
	"CameraSerialNumber": {findingType: "exif_serial", title: "Device serial number in image metadata", severity: model.SeverityHigh},
	"BodySerialNumber":   {findingType: "exif_serial", title: "Device serial number in image metadata", severity: model.SeverityHigh},
	"LensSerialNumber":   {findingType: "exif_serial", title: "Device serial number in image metadata", severity: model.SeverityHigh},

	"Artist":       {findingType: "exif_author", title: "Author in image metadata", severity: model.SeverityMedium},
	"XPAuthor":     {findingType: "exif_author", title: "Author in image metadata", severity: model.SeverityMedium},
	"Copyright":    {findingType: "exif_author", title: "Copyright holder in image metadata", severity: model.SeverityMedium},
	"HostComputer": {findingType: "exif_computer", title: "Host computer in image metadata", severity: model.SeverityMedium},

	"Make":  {findingType: "exif_camera", title: "Camera make or model in image metadata", severity: model.SeverityLow},
	"Model": {findingType: "exif_camera", title: "Camera make or model in image metadata", severity: model.SeverityLow},

	"Software":           {findingType: "exif_software", title: "Software in image metadata", severity: model.SeverityInfo},
	"ProcessingSoftware": {findingType: "exif_software", title: "Software in image metadata", severity: model.SeverityInfo},
}

// exifExtensions are the image formats that carry EXIF blocks.
var exifExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".heic": true,
	".heif": true,
}

// Inspector scans image assets for EXIF metadata.
type Inspector struct {
	maxImageSize int64
	logger       *slog.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithMaxImageSize skips images larger than size bytes.
func WithMaxImageSize(size int64) Option {
	return func(i *Inspector) {
		i.maxImageSize = size
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		i.logger = logger
	}
}

// New creates an Inspector.
func New(opts ...Option) *Inspector {
	i := &Inspector{
		maxImageSize: 20 * 1024 * 1024,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inspect returns the metadata findings for every EXIF-capable image among
// assets, in asset order. It stops early when ctx is cancelled.
func (i *Inspector) Inspect(ctx context.Context, assets []*model.Asset) []model.Finding {
	findings := make([]model.Finding, 0)
	for _, a := range assets {
		if ctx.Err() != nil {
			return findings
		}
		if !i.candidate(a) {
			continue
		}
		tags, err := readTags(a.Content)
		if err != nil {
			i.logger.Debug("no exif data", "asset", a.ArchivePath, "error", err)
			continue
		}
		findings = append(findings, findingsFor(a.ArchivePath, tags)...)
	}
	return findings
}

func (i *Inspector) candidate(a *model.Asset) bool {
	if !a.HasContent() || a.Category != model.CategoryImage {
		return false
	}
	if i.maxImageSize > 0 && a.Size > i.maxImageSize {
		return false
	}
	if exifExtensions[strings.ToLower(path.Ext(a.ArchivePath))] {
		return true
	}
	return isJPEG(a.Content) || isTIFF(a.Content)
}

func isJPEG(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0xFF, 0xD8, 0xFF})
}

func isTIFF(b []byte) bool {
	return bytes.HasPrefix(b, []byte("II*\x00")) || bytes.HasPrefix(b, []byte("MM\x00*"))
}

// readTags extracts the flat list of EXIF tags from image bytes.
func readTags(data []byte) ([]tag, error) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return nil, err
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil, err
	}
	tags := make([]tag, 0, len(entries))
	for _, e := range entries {
		tags = append(tags, tag{name: e.TagName, value: e.Formatted})
	}
	return tags, nil
}

// findingsFor turns the tags of one asset into findings. Tags of the same
// finding type are merged into a single finding.
func findingsFor(assetPath string, tags []tag) []model.Finding {
	findings := make([]model.Finding, 0)
	index := make(map[string]int)
	for _, t := range tags {
		r, ok := tagRules[t.name]
		if !ok || strings.TrimSpace(t.value) == "" {
			continue
		}
		value := t.name + ": " + strings.TrimSpace(t.value)
		if n, ok := index[r.findingType]; ok {
			findings[n].Value += "; " + value
			continue
		}
		index[r.findingType] = len(findings)
		findings = append(findings, model.Finding{
			Type:         r.findingType,
			Title:        r.title,
			Value:        value,
			Asset:        assetPath,
			Severity:     r.severity,
			SeverityText: r.severity.String(),
		})
	}
	return findings
}
