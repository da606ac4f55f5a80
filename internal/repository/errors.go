package repository

import "errors"

var ErrDirectoryUnavailable = errors.New("player directory unavailable")
