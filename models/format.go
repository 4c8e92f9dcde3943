package models

// SourceFormat identifies the container of a discovered input. Detection is
// header-based; the file extension is never trusted.
type SourceFormat string

const (
	FormatJPEG  SourceFormat = "jpeg"
	FormatPNG   SourceFormat = "png"
	FormatWebP  SourceFormat = "webp"
	FormatOther SourceFormat = "other" // readable but no dedicated fallback encoder
)
