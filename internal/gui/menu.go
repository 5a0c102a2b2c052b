// Main menu and the file dialogs behind it
package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"image-transform-pipeline/internal/algorithms"
	"image-transform-pipeline/internal/io"
)

// DefaultSaveName is offered by the save dialog
const DefaultSaveName = "processed_image.png"

type MenuHandler struct {
	window   fyne.Window
	loader   *io.ImageLoader
	registry *algorithms.Registry
	logger   logrus.FieldLogger

	mainMenu *fyne.MainMenu
	// actions are disabled while a load or transform runs
	actions []*fyne.MenuItem

	onOpen      func(path string)
	onSave      func()
	onTransform func(name string)
	onReset     func()
}

func NewMenuHandler(window fyne.Window, loader *io.ImageLoader, registry *algorithms.Registry, logger logrus.FieldLogger) *MenuHandler {
	return &MenuHandler{
		window:   window,
		loader:   loader,
		registry: registry,
		logger:   logger,
	}
}

func (mh *MenuHandler) SetCallbacks(onOpen func(string), onSave func(), onTransform func(string), onReset func()) {
	mh.onOpen = onOpen
	mh.onSave = onSave
	mh.onTransform = onTransform
	mh.onReset = onReset
}

func (mh *MenuHandler) GetMainMenu() *fyne.MainMenu {
	openItem := fyne.NewMenuItem("Open Image...", mh.OpenImage)
	saveItem := fyne.NewMenuItem("Save Processed Image...", func() {
		if mh.onSave != nil {
			mh.onSave()
		}
	})
	fileMenu := fyne.NewMenu("File",
		openItem,
		saveItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Exit", func() {
			mh.window.Close()
		}),
	)

	var transformItems []*fyne.MenuItem
	for _, name := range mh.registry.Names() {
		algorithm, _ := mh.registry.Get(name)
		transformItems = append(transformItems, fyne.NewMenuItem(algorithm.GetTitle()+"...", func() {
			if mh.onTransform != nil {
				mh.onTransform(name)
			}
		}))
	}
	transformMenu := fyne.NewMenu("Transform", transformItems...)

	resetItem := fyne.NewMenuItem("Reset to Original", func() {
		if mh.onReset != nil {
			mh.onReset()
		}
	})
	editMenu := fyne.NewMenu("Edit", resetItem)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mh.showAbout),
	)

	mh.actions = append([]*fyne.MenuItem{openItem, saveItem, resetItem}, transformItems...)
	mh.mainMenu = fyne.NewMainMenu(fileMenu, editMenu, transformMenu, helpMenu)
	return mh.mainMenu
}

// SetBusy disables the items that start an action; Exit and About stay usable
func (mh *MenuHandler) SetBusy(busy bool) {
	for _, item := range mh.actions {
		item.Disabled = busy
	}
	if mh.mainMenu != nil {
		mh.mainMenu.Refresh()
	}
}

// OpenImage asks for a file and hands its path to the open callback
func (mh *MenuHandler) OpenImage() {
	mh.logger.Debug("Opening file dialog for image selection")

	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mh.showError("File dialog error", err)
			return
		}
		if reader == nil {
			return // cancelled
		}
		path := reader.URI().Path()
		reader.Close()

		if mh.onOpen != nil {
			mh.onOpen(path)
		}
	}, mh.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter(mh.loader.LoadExtensions()))
	fileDialog.Show()
}

// AskSavePath asks where to write the processed image
func (mh *MenuHandler) AskSavePath(onPath func(string)) {
	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mh.showError("File dialog error", err)
			return
		}
		if writer == nil {
			return // cancelled
		}
		path := writer.URI().Path()
		// The encoder writes the file itself
		writer.Close()

		onPath(path)
	}, mh.window)

	fileDialog.SetFileName(DefaultSaveName)
	fileDialog.SetFilter(storage.NewExtensionFileFilter(mh.loader.SaveExtensions()))
	fileDialog.Show()
}

func (mh *MenuHandler) showAbout() {
	content := container.NewVBox(
		widget.NewLabel("Image Processing App"),
		widget.NewSeparator(),
		widget.NewLabel("Load an image, apply one transform at a time"),
		widget.NewLabel("to the original and save the result."),
		widget.NewSeparator(),
		widget.NewLabel("Built with Go, Fyne v2.6 and OpenCV"),
	)

	aboutDialog := dialog.NewCustom("About", "Close", content, mh.window)
	aboutDialog.Resize(fyne.NewSize(400, 240))
	aboutDialog.Show()
}

func (mh *MenuHandler) showError(title string, err error) {
	mh.logger.WithError(err).Error(title)
	dialog.ShowError(err, mh.window)
}
