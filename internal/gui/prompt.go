package gui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/data/validation"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"image-transform-pipeline/internal/algorithms"
)

// ErrCancelled is passed to prompt callbacks when the user dismisses the form
var ErrCancelled = errors.New("prompt cancelled")

var integerValidator = validation.NewRegexp(`^\s*-?[0-9]+\s*$`, "enter a whole number")

// Field is one integer to ask for, with the text the entry starts with
type Field struct {
	Info    algorithms.ParameterInfo
	Initial string
}

// Prompter collects transform parameters through a form dialog.
// Range checks are left to the transform so invalid values surface as
// parameter errors.
type Prompter struct {
	window fyne.Window
}

func NewPrompter(window fyne.Window) *Prompter {
	return &Prompter{window: window}
}

// Ask shows one entry per field. onDone receives the parsed values, or
// ErrCancelled. Without fields it answers immediately.
func (p *Prompter) Ask(title string, fields []Field, onDone func(map[string]int, error)) {
	if len(fields) == 0 {
		onDone(map[string]int{}, nil)
		return
	}

	entries := make([]*widget.Entry, len(fields))
	items := make([]*widget.FormItem, len(fields))
	for i, f := range fields {
		entry := widget.NewEntry()
		entry.SetText(f.Initial)
		entry.Validator = integerValidator
		entries[i] = entry

		item := widget.NewFormItem(f.Info.Prompt, entry)
		item.HintText = f.Info.Description
		items[i] = item
	}

	form := dialog.NewForm(title, "Apply", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			onDone(nil, ErrCancelled)
			return
		}
		texts := make([]string, len(entries))
		for i, entry := range entries {
			texts[i] = entry.Text
		}
		onDone(parseValues(fields, texts))
	}, p.window)
	form.Resize(fyne.NewSize(460, form.MinSize().Height))
	form.Show()
}

// FieldsFor builds the prompt for algorithm, suggesting the current image
// size for width and height and the descriptor default otherwise
func FieldsFor(algorithm algorithms.Algorithm, width, height int) []Field {
	infos := algorithm.GetParameterInfo()
	fields := make([]Field, 0, len(infos))
	for _, info := range infos {
		f := Field{Info: info}
		switch {
		case info.Name == "width" && width > 0:
			f.Initial = strconv.Itoa(width)
		case info.Name == "height" && height > 0:
			f.Initial = strconv.Itoa(height)
		case info.HasDefault():
			f.Initial = strconv.Itoa(info.Default)
		}
		fields = append(fields, f)
	}
	return fields
}

func parseValues(fields []Field, texts []string) (map[string]int, error) {
	if len(fields) != len(texts) {
		return nil, fmt.Errorf("expected %d values, got %d", len(fields), len(texts))
	}

	values := make(map[string]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(texts[i]))
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a whole number", f.Info.Name, texts[i])
		}
		values[f.Info.Name] = v
	}
	return values, nil
}
