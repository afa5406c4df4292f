package assets

import "errors"

var (
	// ErrUnsupportedMediaType indicates the upload's extension is not on
	// the allow-list.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrPayloadTooLarge indicates the upload exceeds the configured ceiling.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrUnauthorized indicates the actor may not upload for or view the video.
	ErrUnauthorized = errors.New("actor is not authorized for this video")
	// ErrStorage indicates a blob write, read, or delete failed, or the
	// record step failed after the blob was written. Compensating cleanup
	// has already run when this is returned from an upload.
	ErrStorage = errors.New("video storage failure")
)
