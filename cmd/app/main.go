// Image Processing App: load an image, apply one transform to it, save the result.
// Without a subcommand the desktop window is started.
package main

import (
	"os"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/sirupsen/logrus"

	"image-transform-pipeline/internal/config"
	"image-transform-pipeline/internal/gui"
)

const (
	AppName    = "Image Processing App"
	AppID      = "com.example.image-transform-pipeline"
	AppVersion = "1.0.0"
)

func main() {
	root := newRootCmd(os.Stdout, runGUI)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGUI(cfg *config.Config, logger *logrus.Logger, debugMode bool) error {
	myApp := app.NewWithID(AppID)
	myApp.SetIcon(theme.DocumentIcon())
	myApp.Settings().SetTheme(theme.DefaultTheme())

	mainApp := gui.NewApplication(myApp, cfg, logger, debugMode)
	mainApp.ShowAndRun()

	logger.Info("Application shutting down gracefully")
	return nil
}
