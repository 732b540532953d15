package models

// AudioField is the multipart field carrying the recording.
const AudioField = "audio"

// Match is the best-guess track for an uploaded recording.
type Match struct {
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album"`
	Confidence float64 `json:"confidence"`
}

// Track is an entry of the recognition catalog.
type Track struct {
	Title  string `yaml:"title"`
	Artist string `yaml:"artist"`
	Album  string `yaml:"album"`
	// Hex sha256 of a reference recording
	Fingerprint string `yaml:"fingerprint"`
}
