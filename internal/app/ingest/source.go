package ingest

import (
	"io"
)

// SourceKind tags the three ways audio enters the system.
type SourceKind string

const (
	KindDirect  SourceKind = "direct"
	KindChunked SourceKind = "chunked"
	KindRemote  SourceKind = "remote"
)

// Source is one ingest request. The concrete types are DirectSource,
// ChunkedSource and RemoteSource.
type Source interface {
	Kind() SourceKind
}

// DirectSource is a single-request upload.
type DirectSource struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (DirectSource) Kind() SourceKind { return KindDirect }

// ChunkedSource is a staged chunk set ready to be assembled.
type ChunkedSource struct {
	UploadID    string
	Filename    string
	ContentType string
}

func (ChunkedSource) Kind() SourceKind { return KindChunked }

// RemoteSource is a link to media or to a page embedding it.
type RemoteSource struct {
	URL string
}

func (RemoteSource) Kind() SourceKind { return KindRemote }

func NewDirectSource(filename, contentType string, size int64, body io.Reader) Source {
	return DirectSource{Filename: filename, ContentType: contentType, Size: size, Body: body}
}

func NewChunkedSource(uploadID, filename, contentType string) Source {
	return ChunkedSource{UploadID: uploadID, Filename: filename, ContentType: contentType}
}

func NewRemoteSource(rawURL string) Source {
	return RemoteSource{URL: rawURL}
}

// Payload is what every source normalizes to before persisting.
type Payload struct {
	Bytes       []byte
	Filename    string
	ContentType string
	OwnerID     string
}
