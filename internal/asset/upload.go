package asset

import "io"

// Upload is an inbound binary plus its metadata, as received from the
// transport layer.
type Upload struct {
	Reader      io.Reader
	FileName    string
	ContentType string
	SizeBytes   int64
}
