// errors.go - sentinel errors for the render core's loader boundary

package render

import "errors"

// These are returned from the asset-loading boundary (archive, CEL, sprite,
// texture and map-lump decoders). The render hot path never returns an
// error — by the time a frame is drawn every asset it touches has already
// been validated by a loader. See assertf in log.go for the hot-path
// invariant-violation case instead.
var (
	ErrArchiveCorrupt   = errors.New("render: archive corrupt")
	ErrStreamExhausted  = errors.New("render: stream exhausted")
	ErrDecodeFailed     = errors.New("render: decode failed")
	ErrInvalidCCB       = errors.New("render: invalid cel control block")
	ErrResourceNotFound = errors.New("render: resource not found")
)
