package client

import "fmt"

var (
	ErrBadStatus           = fmt.Errorf("unexpected status code")
	ErrManifestUnavailable = fmt.Errorf("manifest unavailable")
	ErrMalformedManifest   = fmt.Errorf("malformed manifest")
	ErrInvalidName         = fmt.Errorf("invalid file name")
)
