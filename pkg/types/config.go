package types

import "time"

// HTTPConfig holds shared HTTP settings for calls to the GitHub API.
type HTTPConfig struct {
	// Timeout bounds each HTTP attempt; 429 backoff waits are not counted.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// HTMLBackend selects the Markdown-to-HTML renderer.
type HTMLBackend string

const (
	HTMLGoldmark HTMLBackend = "goldmark"
	HTMLGitHub   HTMLBackend = "github"
)

// PDFBackend selects how wkhtmltopdf is run.
type PDFBackend string

const (
	PDFAuto      PDFBackend = "auto"
	PDFLocal     PDFBackend = "local"
	PDFContainer PDFBackend = "container"
)

// PreviewConfig holds settings for preview generation.
type PreviewConfig struct {
	// Renderer selects the HTML backend: goldmark or github.
	Renderer HTMLBackend `json:"renderer" yaml:"renderer"`

	// PDFBackend selects local wkhtmltopdf, a container, or auto-detection.
	PDFBackend PDFBackend `json:"pdf_backend" yaml:"pdf_backend"`

	// WkhtmltopdfBin is the local converter binary name or path.
	WkhtmltopdfBin string `json:"wkhtmltopdf" yaml:"wkhtmltopdf"`

	// PDFImage is the container image whose entrypoint is wkhtmltopdf.
	PDFImage string `json:"pdf_image" yaml:"pdf_image"`
}

// SyncConfig groups the settings used to construct a synchronizer.
type SyncConfig struct {
	HTTP    HTTPConfig    `json:"http" yaml:"http"`
	Preview PreviewConfig `json:"preview" yaml:"preview"`

	// Dir is the directory where artifacts are read and written.
	Dir string `json:"dir" yaml:"dir"`
}
