package main

import "errors"

var (
	errFileRequired       = errors.New("at least one image file is required")
	errTablesFileRequired = errors.New("tables file is required (use - for stdin)")
	errDocumentsFailed    = errors.New("one or more documents could not be processed")
)
