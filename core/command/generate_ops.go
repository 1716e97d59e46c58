package command

// GenerateCode renders the payload as a QR code or barcode image.
// Kind and ECLevel are canonical names understood by the symbol domain
// ("qr"/"code128", "low"/"medium"/"quartile"/"high").
type GenerateCode struct {
	baseJobCommand
	Payload string
	Kind    string
	ECLevel string
	// ModuleScale overrides the configured QR module size in pixels.
	// Zero keeps the default.
	ModuleScale int
}

func NewGenerateCode(jobID, payload, kind, ecLevel string) *GenerateCode {
	return &GenerateCode{
		baseJobCommand: baseJobCommand{jobID: jobID},
		Payload:        payload,
		Kind:           kind,
		ECLevel:        ecLevel,
	}
}

func (c *GenerateCode) CommandName() string {
	return "GenerateCode"
}

// SaveCode writes the currently held generated image to a file.
// The output format is derived from the path extension (.png or .jpg/.jpeg).
type SaveCode struct {
	baseJobCommand
	Path string
}

func NewSaveCode(jobID, path string) *SaveCode {
	return &SaveCode{
		baseJobCommand: baseJobCommand{jobID: jobID},
		Path:           path,
	}
}

func (c *SaveCode) CommandName() string {
	return "SaveCode"
}
