package loader

import "errors"

// ErrGraphUnavailable reports that a road network could neither be read from
// cache nor fetched from the map-data service.
var ErrGraphUnavailable = errors.New("road network unavailable")
