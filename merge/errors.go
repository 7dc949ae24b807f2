package merge

import "fmt"

// MissingAssetError is returned when a referenced clip cannot be read
type MissingAssetError struct {
	File string
	Err  error
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("missing clip %q: %v", e.File, e.Err)
}

func (e *MissingAssetError) Unwrap() error { return e.Err }

func (e *MissingAssetError) Kind() string { return "MissingAssetError" }

// SegmentError locates a failure inside the output timeline
type SegmentError struct {
	Segment string
	Bone    int
	Frame   int
	Err     error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %s bone %d frame %d: %v", e.Segment, e.Bone, e.Frame, e.Err)
}

func (e *SegmentError) Unwrap() error { return e.Err }

func (e *SegmentError) Kind() string {
	if k, ok := e.Err.(interface{ Kind() string }); ok {
		return k.Kind()
	}
	return "SegmentError"
}
