package types

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrSchemeNotFound     = errors.New("scheme not found")
	ErrSoilReportNotFound = errors.New("no soil analysis found")
	ErrCropNotFound       = errors.New("crop not found")
	ErrUnauthorized       = errors.New("unauthorized")
)
