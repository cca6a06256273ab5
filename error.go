package trailhead

import "errors"

var (
	ErrBadAny               = errors.New("bad any")
	ErrBadConfig            = errors.New("bad config")
	ErrBadFormat            = errors.New("bad format")
	ErrMalformedUpload      = errors.New("malformed upload")
	ErrMissingData          = errors.New("missing data")
	ErrNotExist             = errors.New("not exist")
	ErrNotImplemented       = errors.New("not implemented")
	ErrNotValid             = errors.New("invalid")
	ErrTooLarge             = errors.New("too large")
	ErrUnexpected           = errors.New("unexpected")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)
