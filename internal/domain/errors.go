package domain

import "errors"

var (
	ErrEmptyInput          = errors.New("input text is empty")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrOCRFailed           = errors.New("ocr extraction failed")
	ErrNoJSONInResponse    = errors.New("no JSON object found in model response")
	ErrUnknownProvider     = errors.New("unknown completion provider")
)
