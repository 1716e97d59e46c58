package command

// ScanFile loads an image file and decodes any QR codes or barcodes in it.
type ScanFile struct {
	baseJobCommand
	Path      string
	TryHarder bool
}

func NewScanFile(jobID, path string, tryHarder bool) *ScanFile {
	return &ScanFile{
		baseJobCommand: baseJobCommand{jobID: jobID},
		Path:           path,
		TryHarder:      tryHarder,
	}
}

func (c *ScanFile) CommandName() string {
	return "ScanFile"
}

// RescanImage re-runs detection on the currently held scan image,
// typically after the user toggled the decode options.
type RescanImage struct {
	baseJobCommand
	TryHarder bool
}

func NewRescanImage(jobID string, tryHarder bool) *RescanImage {
	return &RescanImage{
		baseJobCommand: baseJobCommand{jobID: jobID},
		TryHarder:      tryHarder,
	}
}

func (c *RescanImage) CommandName() string {
	return "RescanImage"
}
