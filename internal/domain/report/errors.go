package report

import "errors"

var (
	ErrExportNotFound = errors.New("export not found")
)
