package handlers

import "errors"

var errMissingMedia = errors.New("media_id or items is required")
