package infer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/crimson-sun/marionette/internal/model"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call
// multiple times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// mixtureOutputs are the tensor names the exported sequence model must
// provide, in the order the session requests them.
var mixtureOutputs = []string{"weights", "means", "stddevs"}

// ONNXPredictor runs the pretrained mixture-density sequence model
// through ONNX Runtime. The model takes one [1, W, D] float32 tensor
// of recent pose vectors and returns weights [1, M], means [1, M*D],
// and stddevs [1, M*D].
type ONNXPredictor struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	components int64
}

// NewONNX loads the ONNX model and creates an inference session,
// validating the mixture-density input/output contract.
func NewONNX(modelPath string) (*ONNXPredictor, error) {
	// The ONNX Runtime shared library ships alongside the model files.
	modelDir := filepath.Dir(modelPath)
	libPath := filepath.Join(modelDir, "libonnxruntime.so")

	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}

	if len(inputs) != 1 {
		return nil, fmt.Errorf("onnx: expected 1 input tensor, got %d", len(inputs))
	}
	if len(inputs[0].Dimensions) != 3 {
		return nil, fmt.Errorf("onnx: expected 3D [batch, window, dim] input, got %v",
			inputs[0].Dimensions)
	}

	components, err := validateOutputs(outputs)
	if err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(4)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		mixtureOutputs,
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &ONNXPredictor{
		session:    session,
		inputName:  inputs[0].Name,
		components: components,
	}, nil
}

// validateOutputs checks that the model exposes the three mixture
// tensors and returns the component count M from the weights shape.
func validateOutputs(outputs []ort.InputOutputInfo) (int64, error) {
	byName := make(map[string]ort.InputOutputInfo, len(outputs))
	for _, out := range outputs {
		byName[out.Name] = out
	}
	for _, name := range mixtureOutputs {
		if _, ok := byName[name]; !ok {
			return 0, fmt.Errorf("onnx: model missing required output %q", name)
		}
	}

	wdims := byName["weights"].Dimensions
	if len(wdims) != 2 {
		return 0, fmt.Errorf("onnx: expected 2D weights tensor, got %v", wdims)
	}
	return wdims[1], nil
}

// Predict runs one inference step over the window. Failures and
// malformed responses carry the inference-failure sentinel so the
// generation loop can fault cleanly.
func (p *ONNXPredictor) Predict(ctx context.Context, window []model.FlatVector) (model.MixturePrediction, error) {
	if err := ctx.Err(); err != nil {
		return model.MixturePrediction{}, err
	}
	if len(window) == 0 {
		return model.MixturePrediction{}, fmt.Errorf("onnx: empty window: %w", model.ErrInferenceFailure)
	}

	w := int64(len(window))
	d := int64(len(window[0]))
	m := p.components

	in, err := ort.NewTensor(ort.NewShape(1, w, d), flattenWindow(window))
	if err != nil {
		return model.MixturePrediction{}, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer in.Destroy()

	tWeights, err := ort.NewEmptyTensor[float32](ort.NewShape(1, m))
	if err != nil {
		return model.MixturePrediction{}, fmt.Errorf("onnx: failed to create weights tensor: %w", err)
	}
	defer tWeights.Destroy()

	tMeans, err := ort.NewEmptyTensor[float32](ort.NewShape(1, m*d))
	if err != nil {
		return model.MixturePrediction{}, fmt.Errorf("onnx: failed to create means tensor: %w", err)
	}
	defer tMeans.Destroy()

	tStddevs, err := ort.NewEmptyTensor[float32](ort.NewShape(1, m*d))
	if err != nil {
		return model.MixturePrediction{}, fmt.Errorf("onnx: failed to create stddevs tensor: %w", err)
	}
	defer tStddevs.Destroy()

	err = p.session.Run(
		[]ort.Value{in},
		[]ort.Value{tWeights, tMeans, tStddevs},
	)
	if err != nil {
		return model.MixturePrediction{}, fmt.Errorf("onnx: inference failed: %v: %w",
			err, model.ErrInferenceFailure)
	}

	// Copy data out before the tensors are destroyed.
	pred := model.MixturePrediction{
		Weights: copyTensor(tWeights.GetData()),
		Means:   copyTensor(tMeans.GetData()),
		Stddevs: copyTensor(tStddevs.GetData()),
	}
	if err := pred.Validate(); err != nil {
		return model.MixturePrediction{}, fmt.Errorf("onnx: malformed model response: %v: %w",
			err, model.ErrInferenceFailure)
	}
	return pred, nil
}

// Close releases the ONNX session resources.
func (p *ONNXPredictor) Close() error {
	return p.session.Destroy()
}

// flattenWindow packs W vectors of dimensionality D into one flat
// [W*D] slice in window order, the layout the model input expects.
func flattenWindow(window []model.FlatVector) []float32 {
	if len(window) == 0 {
		return nil
	}
	flat := make([]float32, 0, len(window)*len(window[0]))
	for _, v := range window {
		flat = append(flat, v...)
	}
	return flat
}

func copyTensor(src []float32) []float32 {
	dst := make([]float32, len(src))
	copy(dst, src)
	return dst
}
