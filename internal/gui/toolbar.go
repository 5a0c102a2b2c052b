// Action bar: load, one button per transform, reset and save
package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"image-transform-pipeline/internal/algorithms"
)

type Toolbar struct {
	container *fyne.Container

	loadBtn       *widget.Button
	resetBtn      *widget.Button
	saveBtn       *widget.Button
	transformBtns map[string]*widget.Button

	// Callbacks
	onLoad      func()
	onTransform func(name string)
	onReset     func()
	onSave      func()
}

func NewToolbar(registry *algorithms.Registry) *Toolbar {
	tb := &Toolbar{
		transformBtns: make(map[string]*widget.Button),
	}
	tb.initializeUI(registry)
	return tb
}

func (tb *Toolbar) initializeUI(registry *algorithms.Registry) {
	tb.loadBtn = widget.NewButtonWithIcon("Load Image", theme.FolderOpenIcon(), func() {
		if tb.onLoad != nil {
			tb.onLoad()
		}
	})
	tb.loadBtn.Importance = widget.HighImportance

	transforms := container.NewHBox()
	for _, name := range registry.Names() {
		algorithm, _ := registry.Get(name)
		btn := widget.NewButton(algorithm.GetTitle(), func() {
			if tb.onTransform != nil {
				tb.onTransform(name)
			}
		})
		tb.transformBtns[name] = btn
		transforms.Add(btn)
	}

	tb.resetBtn = widget.NewButtonWithIcon("Reset", theme.ViewRefreshIcon(), func() {
		if tb.onReset != nil {
			tb.onReset()
		}
	})

	tb.saveBtn = widget.NewButtonWithIcon("Save Processed Image", theme.DocumentSaveIcon(), func() {
		if tb.onSave != nil {
			tb.onSave()
		}
	})
	tb.saveBtn.Importance = widget.HighImportance

	tb.container = container.NewBorder(
		nil, nil,
		tb.loadBtn,
		container.NewHBox(tb.resetBtn, tb.saveBtn),
		container.NewCenter(transforms),
	)
}

func (tb *Toolbar) GetContainer() fyne.CanvasObject {
	return tb.container
}

func (tb *Toolbar) SetCallbacks(onLoad func(), onTransform func(string), onReset, onSave func()) {
	tb.onLoad = onLoad
	tb.onTransform = onTransform
	tb.onReset = onReset
	tb.onSave = onSave
}

// SetBusy disables every action while a load or transform is running
func (tb *Toolbar) SetBusy(busy bool) {
	for _, btn := range tb.buttons() {
		if busy {
			btn.Disable()
		} else {
			btn.Enable()
		}
	}
}

func (tb *Toolbar) buttons() []*widget.Button {
	out := []*widget.Button{tb.loadBtn, tb.resetBtn, tb.saveBtn}
	for _, btn := range tb.transformBtns {
		out = append(out, btn)
	}
	return out
}
