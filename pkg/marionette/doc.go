// Package marionette generates real-time dance animation frames from
// a pretrained mixture-density sequence model.
//
// Quick start:
//
//	m, err := marionette.New(
//	    marionette.WithModel("models/dancer.onnx"),
//	    marionette.WithFrameHandler(func(f marionette.Frame) error {
//	        return draw(f.Pose)
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Close()
//
//	if err := m.Start(seedWindow); err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Stop()
//
// One frame is emitted per generation step: the model's mixture output
// is sampled under the current temperature, fed back into the sliding
// input window, and temporally smoothed before delivery. Keypoints at
// (0,0) mark "not detected" and must be omitted when drawing, never
// rendered at the origin.
package marionette
