package model

// Severity ranks inspection findings.
type Severity int

const (
	// SeverityInfo is informational only.
	SeverityInfo Severity = iota

	// SeverityLow marks metadata that is seldom sensitive, such as camera model.
	SeverityLow

	// SeverityMedium marks metadata that may identify a person, such as an author name.
	SeverityMedium

	// SeverityHigh marks metadata that identifies a place or a device, such as GPS
	// coordinates or serial numbers.
	SeverityHigh
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// Finding is a notable property of a collected asset.
// Findings never change the archived content.
type Finding struct {
	// Type is a stable machine-readable identifier, e.g. "exif_gps".
	Type string `json:"type"`

	// Title is a short human-readable summary.
	Title string `json:"title"`

	// Value is the offending value, e.g. "GPSLatitude: 35/1 39/1 0/1".
	Value string `json:"value"`

	// Asset is the archive path of the asset the finding belongs to.
	Asset string `json:"asset"`

	Severity     Severity `json:"severity"`
	SeverityText string   `json:"severity_text"`
}
