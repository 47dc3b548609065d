package scan

import "errors"

// ErrEmptyURL indicates a submission with no URL. No request is issued.
var ErrEmptyURL = errors.New("scan: url is required")
