package textsource

import (
	"bytes"
	"fmt"
	"os/exec"

	"fjacquet/fatura-csv/internal/parsererror"
)

// DefaultPdftotextBinary is the poppler-utils command used when none is configured.
const DefaultPdftotextBinary = "pdftotext"

// PdftotextExtractor shells out to poppler's pdftotext in layout mode, which keeps the
// column alignment the statement patterns rely on.
type PdftotextExtractor struct {
	Binary string
}

// NewPdftotextExtractor creates a PdftotextExtractor using binary, or the default one
// when binary is empty.
func NewPdftotextExtractor(binary string) *PdftotextExtractor {
	if binary == "" {
		binary = DefaultPdftotextBinary
	}
	return &PdftotextExtractor{Binary: binary}
}

// ExtractText runs "pdftotext -layout <path> -" and returns its standard output.
func (e *PdftotextExtractor) ExtractText(path string) (string, error) {
	bin, err := exec.LookPath(e.Binary)
	if err != nil {
		return "", fmt.Errorf("%s not available: %w", e.Binary, err)
	}

	var stderr bytes.Buffer
	cmd := exec.Command(bin, "-layout", "-enc", "UTF-8", path, "-") // #nosec G204 -- fixed binary, path is an argument
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", &parsererror.ParseError{
			Parser: "pdftotext",
			Field:  "text extraction",
			Value:  path,
			Err:    fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes())),
		}
	}
	return string(out), nil
}
