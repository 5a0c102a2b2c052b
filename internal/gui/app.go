// Main window: wires the session controller, the transform registry and the widgets
package gui

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"image-transform-pipeline/internal/algorithms"
	"image-transform-pipeline/internal/config"
	"image-transform-pipeline/internal/core"
	"image-transform-pipeline/internal/debug"
	"image-transform-pipeline/internal/io"
	"image-transform-pipeline/internal/metrics"
)

const WindowTitle = "Image Processing App"

// Messages shown for actions attempted in the wrong state
const (
	msgLoadFirst   = "Please load an image first."
	msgNothingSave = "No processed image to save."
)

type Application struct {
	app    fyne.App
	window fyne.Window
	logger logrus.FieldLogger
	cfg    *config.Config

	debugMode bool
	tracker   *debug.Tracker

	// busy is only touched on the UI goroutine. While set, no action may
	// reach the controller, whose lock is held by the running transform.
	busy bool

	// Core components
	controller *core.Controller
	registry   *algorithms.Registry
	loader     *io.ImageLoader
	evaluator  *metrics.Evaluator

	// GUI components
	canvas      *ImageCanvas
	toolbar     *Toolbar
	infoPanel   *InfoPanel
	menuHandler *MenuHandler
	prompter    *Prompter
	status      *widget.Label
}

func NewApplication(app fyne.App, cfg *config.Config, logger logrus.FieldLogger, debugMode bool) *Application {
	window := app.NewWindow(WindowTitle)
	window.Resize(fyne.NewSize(float32(cfg.Window.Width), float32(cfg.Window.Height)))
	window.CenterOnScreen()

	a := &Application{
		app:       app,
		window:    window,
		logger:    logger,
		cfg:       cfg,
		debugMode: debugMode,
	}

	a.initializeCore()
	a.initializeGUI()
	a.setupLayout()
	a.setupCallbacks()

	return a
}

func (a *Application) initializeCore() {
	a.controller = core.NewController(a.logger)
	a.registry = algorithms.NewRegistry(algorithms.Settings{
		Seed:          a.cfg.Quantize.Seed,
		MaxIterations: a.cfg.Quantize.MaxIterations,
	})
	a.loader = io.NewImageLoader(a.logger)
	a.evaluator = metrics.NewEvaluator()
	a.tracker = debug.NewTracker(a.logger, a.debugMode)
}

func (a *Application) initializeGUI() {
	a.canvas = NewImageCanvas(a.cfg.Display)
	a.toolbar = NewToolbar(a.registry)
	a.infoPanel = NewInfoPanel(a.evaluator)
	a.menuHandler = NewMenuHandler(a.window, a.loader, a.registry, a.logger)
	a.prompter = NewPrompter(a.window)
	a.status = widget.NewLabel("Load an image to begin")
}

func (a *Application) setupLayout() {
	top := container.NewVBox(a.toolbar.GetContainer(), widget.NewSeparator())
	bottom := container.NewVBox(widget.NewSeparator(), a.status)
	right := container.NewVScroll(a.infoPanel.GetContainer())
	right.SetMinSize(fyne.NewSize(260, 0))

	content := container.NewBorder(top, bottom, nil, right,
		container.NewPadded(a.canvas.GetContainer()),
	)

	a.window.SetMainMenu(a.menuHandler.GetMainMenu())
	a.window.SetContent(content)
}

func (a *Application) setupCallbacks() {
	a.toolbar.SetCallbacks(a.openImage, a.runTransform, a.reset, a.saveImage)
	a.menuHandler.SetCallbacks(a.loadImage, a.saveImage, a.runTransform, a.reset)
}

func (a *Application) ShowAndRun() {
	a.window.ShowAndRun()
}

// runTransform prompts for the parameters of the named transform and applies it
func (a *Application) runTransform(name string) {
	if a.busy {
		return
	}
	session := a.controller.Session()
	if !session.HasImage() {
		a.handleError(fmt.Sprintf("run %s", name), core.ErrNoImageLoaded)
		return
	}

	algorithm, ok := a.registry.Get(name)
	if !ok {
		a.handleError("run transform", fmt.Errorf("%w: unknown transform %q", core.ErrInvalidParameter, name))
		return
	}

	original, _ := session.Original()
	fields := FieldsFor(algorithm, original.Width, original.Height)
	a.prompter.Ask(algorithm.GetTitle(), fields, func(values map[string]int, err error) {
		if errors.Is(err, ErrCancelled) {
			a.logger.WithField("transform", name).Debug("Parameter prompt cancelled")
			return
		}
		if err != nil {
			a.handleError(algorithm.GetTitle(), fmt.Errorf("%w: %v", core.ErrInvalidParameter, err))
			return
		}

		if a.busy {
			return
		}
		params, err := a.registry.Build(name, values)
		if err != nil {
			a.handleError(algorithm.GetTitle(), err)
			return
		}
		a.apply(params)
	})
}

// apply runs params off the UI goroutine and refreshes the window when done
func (a *Application) apply(params algorithms.Params) {
	a.setBusy(fmt.Sprintf("Applying %s...", params.Name()))

	go func() {
		op := a.tracker.Start("apply " + params.Name())
		session, err := a.controller.Apply(params)
		op.End()
		fyne.Do(func() {
			a.setIdle()
			if err != nil {
				a.handleError(fmt.Sprintf("Apply %s", params.Name()), err)
				return
			}
			a.show(session)
		})
	}()
}

func (a *Application) openImage() {
	if a.busy {
		return
	}
	a.menuHandler.OpenImage()
}

func (a *Application) loadImage(path string) {
	if a.busy {
		return
	}
	a.setBusy("Loading " + path + "...")

	go func() {
		op := a.tracker.Start("load")
		img, err := a.loader.LoadImage(path)
		op.End()
		var session core.Session
		if err == nil {
			session, err = a.controller.Load(img, path)
		}
		fyne.Do(func() {
			a.setIdle()
			if err != nil {
				a.handleError("Load image", err)
				return
			}
			a.show(session)
		})
	}()
}

func (a *Application) saveImage() {
	if a.busy {
		return
	}
	processed, err := a.controller.Session().Processed()
	if err != nil {
		a.handleError("Save image", core.ErrNoProcessedImage)
		return
	}

	a.menuHandler.AskSavePath(func(path string) {
		if err := a.loader.SaveImage(processed, path); err != nil {
			a.handleError("Save image", err)
			return
		}
		msg := "Processed image saved at " + path
		a.status.SetText(msg)
		dialog.ShowInformation("Saved", msg, a.window)
	})
}

func (a *Application) reset() {
	if a.busy {
		return
	}
	session, err := a.controller.Reset()
	if err != nil {
		a.handleError("Reset", err)
		return
	}
	a.show(session)
}

func (a *Application) show(session core.Session) {
	a.canvas.Show(session)
	results := a.infoPanel.Update(session)

	switch {
	case session.HasProcessed():
		status := "Applied " + session.LastOperation()
		if summary := a.evaluator.Summary(results); summary != "" {
			status += "  " + summary
		}
		a.status.SetText(status)
	case session.HasImage():
		a.status.SetText("Loaded " + session.Metadata().Path)
	default:
		a.status.SetText("Load an image to begin")
	}
}

func (a *Application) setBusy(status string) {
	a.busy = true
	a.toolbar.SetBusy(true)
	a.menuHandler.SetBusy(true)
	a.status.SetText(status)
}

func (a *Application) setIdle() {
	a.busy = false
	a.toolbar.SetBusy(false)
	a.menuHandler.SetBusy(false)
}

// handleError shows state warnings as notices and everything else as errors
func (a *Application) handleError(action string, err error) {
	if msg := warningMessage(err); msg != "" {
		a.logger.WithField("action", action).Warn(msg)
		dialog.ShowInformation("Warning", msg, a.window)
		return
	}

	a.logger.WithError(err).WithField("action", action).Error("Action failed")
	a.status.SetText(action + " failed")
	dialog.ShowError(err, a.window)
}

func warningMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrNoImageLoaded):
		return msgLoadFirst
	case errors.Is(err, core.ErrNoProcessedImage):
		return msgNothingSave
	default:
		return ""
	}
}
