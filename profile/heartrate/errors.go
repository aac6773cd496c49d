package heartrate

import "errors"

var errShortPage = errors.New("heartrate: data page shorter than 8 bytes")
