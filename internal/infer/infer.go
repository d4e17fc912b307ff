package infer

import (
	"context"

	"github.com/crimson-sun/marionette/internal/model"
)

// Predictor evaluates the sequence model on a window of pose vectors
// and returns the mixture parameters describing the next step's
// distribution. Implementations must treat the window as read-only.
type Predictor interface {
	Predict(ctx context.Context, window []model.FlatVector) (model.MixturePrediction, error)
	Close() error
}
