package domain

import "context"

// Label is one classification result from a media or zero-shot model.
type Label struct {
	Name  string
	Score float64
}

// Rect is a detection bounding box in pixel coordinates.
type Rect struct {
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

// Detection is one detected object in a video frame.
type Detection struct {
	Label string
	Score float64
	Box   Rect
}

// MediaAnalyzer classifies interview media and free text against label sets.
//
//go:generate mockery --name MediaAnalyzer --output ./mocks
type MediaAnalyzer interface {
	ClassifyImage(ctx context.Context, data []byte) ([]Label, error)
	ClassifyAudio(ctx context.Context, data []byte) ([]Label, error)
	DetectObjects(ctx context.Context, data []byte) ([]Detection, error)
	ZeroShot(ctx context.Context, text string, candidates []string) ([]Label, error)
}

// TopLabel returns the highest-scoring label, or false when empty.
func TopLabel(labels []Label) (Label, bool) {
	if len(labels) == 0 {
		return Label{}, false
	}
	best := labels[0]
	for _, l := range labels[1:] {
		if l.Score > best.Score {
			best = l
		}
	}
	return best, true
}
