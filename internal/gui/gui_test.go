package gui

import (
	"image"
	"io"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-transform-pipeline/internal/algorithms"
	"image-transform-pipeline/internal/config"
	"image-transform-pipeline/internal/core"
	"image-transform-pipeline/internal/metrics"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newRegistry() *algorithms.Registry {
	return algorithms.NewRegistry(algorithms.Settings{Seed: 1, MaxIterations: 50})
}

func loadedSession(t *testing.T, w, h int) core.Session {
	t.Helper()
	img, err := core.NewImage(w, h, 3)
	require.NoError(t, err)
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 251)
	}
	session, err := core.Load(img, "/tmp/sample.png")
	require.NoError(t, err)
	return session
}

func TestParseValues(t *testing.T) {
	fields := FieldsFor(mustAlgorithm(t, algorithms.ResizeName), 0, 0)

	values, err := parseValues(fields, []string{" 320", "240 "})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"width": 320, "height": 240}, values)

	_, err = parseValues(fields, []string{"320", "abc"})
	assert.ErrorContains(t, err, "height")

	_, err = parseValues(fields, []string{"320"})
	assert.Error(t, err)
}

func TestParseValues_KeepsOutOfRangeForBuild(t *testing.T) {
	fields := FieldsFor(mustAlgorithm(t, algorithms.QuantizeName), 0, 0)

	values, err := parseValues(fields, []string{"0"})
	require.NoError(t, err)

	_, err = newRegistry().Build(algorithms.QuantizeName, values)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestFieldsFor(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		height   int
		expected []string
	}{
		{algorithms.QuantizeName, 640, 480, []string{"8"}},
		{algorithms.ResizeName, 640, 480, []string{"640", "480"}},
		{algorithms.ResizeName, 0, 0, []string{"", ""}},
		{algorithms.BlurName, 640, 480, []string{"2"}},
		{algorithms.EdgeName, 640, 480, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := FieldsFor(mustAlgorithm(t, tt.name), tt.width, tt.height)
			initial := make([]string, 0, len(fields))
			for _, f := range fields {
				initial = append(initial, f.Initial)
			}
			assert.Equal(t, tt.expected, initial)
		})
	}
}

func TestPrompter_NoFieldsAnswersImmediately(t *testing.T) {
	test.NewApp()
	p := NewPrompter(test.NewWindow(nil))

	called := false
	p.Ask("Edge Detection", nil, func(values map[string]int, err error) {
		called = true
		assert.NoError(t, err)
		assert.Empty(t, values)
	})
	assert.True(t, called)
}

func TestPreviewImage(t *testing.T) {
	small := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	assert.Same(t, small, previewImage(small, 200, 200))

	large := image.NewNRGBA(image.Rect(0, 0, 2000, 1000))
	preview := previewImage(large, 400, 400)
	assert.Equal(t, 400, preview.Bounds().Dx())
	assert.Equal(t, 200, preview.Bounds().Dy())
}

func TestToolbar_SetBusy(t *testing.T) {
	test.NewApp()
	tb := NewToolbar(newRegistry())

	var ran []string
	tb.SetCallbacks(nil, func(name string) { ran = append(ran, name) }, nil, nil)
	require.Len(t, tb.transformBtns, 4)

	test.Tap(tb.transformBtns[algorithms.BlurName])
	assert.Equal(t, []string{algorithms.BlurName}, ran)

	tb.SetBusy(true)
	assert.True(t, tb.loadBtn.Disabled())
	assert.True(t, tb.saveBtn.Disabled())
	test.Tap(tb.transformBtns[algorithms.BlurName])
	assert.Len(t, ran, 1, "disabled buttons do not fire")

	tb.SetBusy(false)
	assert.False(t, tb.transformBtns[algorithms.EdgeName].Disabled())
}

func TestInfoPanel_Update(t *testing.T) {
	test.NewApp()
	panel := NewInfoPanel(metrics.NewEvaluator())

	assert.Nil(t, panel.Update(core.Session{}))
	assert.Equal(t, "No image loaded", panel.detailsLabel.Text)

	session := loadedSession(t, 8, 6)
	assert.Nil(t, panel.Update(session))
	assert.Contains(t, panel.detailsLabel.Text, "png, 8x6")

	session, err := session.Apply(algorithms.BlurParams{Radius: 0})
	require.NoError(t, err)
	results := panel.Update(session)
	assert.Equal(t, 0.0, results["mse"])
	assert.Equal(t, 0.0, results["changed"])
	assert.Len(t, panel.metricsBox.Objects, 3)
}

func TestApplication_Show(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	a := NewApplication(test.NewApp(), cfg, quietLogger(), false)
	assert.Equal(t, WindowTitle, a.window.Title())

	a.show(a.controller.Session())
	assert.Equal(t, "Load an image to begin", a.status.Text)

	img, err := core.NewImage(4, 4, 3)
	require.NoError(t, err)
	session, err := a.controller.Load(img, "/tmp/black.png")
	require.NoError(t, err)
	a.show(session)
	assert.Equal(t, "Loaded /tmp/black.png", a.status.Text)

	session, err = a.controller.Apply(algorithms.BlurParams{Radius: 0})
	require.NoError(t, err)
	a.show(session)
	assert.Contains(t, a.status.Text, "Applied blur")

	a.reset()
	assert.Equal(t, "Loaded /tmp/black.png", a.status.Text)
	assert.False(t, a.controller.Session().HasProcessed())
}

func TestApplication_BusyBlocksActions(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	a := NewApplication(test.NewApp(), cfg, quietLogger(), false)
	img, err := core.NewImage(4, 4, 3)
	require.NoError(t, err)
	_, err = a.controller.Load(img, "/tmp/black.png")
	require.NoError(t, err)
	_, err = a.controller.Apply(algorithms.BlurParams{Radius: 0})
	require.NoError(t, err)

	a.setBusy("Applying quantize...")
	require.NotEmpty(t, a.menuHandler.actions)
	for _, item := range a.menuHandler.actions {
		assert.True(t, item.Disabled, item.Label)
	}
	assert.True(t, a.toolbar.resetBtn.Disabled())

	a.reset()
	a.runTransform(algorithms.BlurName)
	assert.True(t, a.controller.Session().HasProcessed(), "reset is ignored while busy")
	assert.Equal(t, "Applying quantize...", a.status.Text)

	a.setIdle()
	for _, item := range a.menuHandler.actions {
		assert.False(t, item.Disabled, item.Label)
	}
	a.reset()
	assert.False(t, a.controller.Session().HasProcessed())
}

func TestWarningMessage(t *testing.T) {
	assert.Equal(t, msgLoadFirst, warningMessage(core.ErrNoImageLoaded))
	assert.Equal(t, msgNothingSave, warningMessage(core.ErrNoProcessedImage))
	assert.Empty(t, warningMessage(core.ErrInvalidParameter))
}

func mustAlgorithm(t *testing.T, name string) algorithms.Algorithm {
	t.Helper()
	algorithm, ok := newRegistry().Get(name)
	require.True(t, ok, name)
	return algorithm
}
