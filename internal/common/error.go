package common

import "fmt"

var (
	ErrInvalidInput        = fmt.Errorf("invalid input")
	ErrMetadataFetchFailed = fmt.Errorf("could not fetch video info")
	ErrTransferFailed      = fmt.Errorf("download failed")
	ErrJobNotFound         = fmt.Errorf("job not found")
	ErrPathNotFound        = fmt.Errorf("path not found")
	ErrOsIntegrationFailed = fmt.Errorf("cannot open file manager")
)
