package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"image-transform-pipeline/internal/algorithms"
	"image-transform-pipeline/internal/config"
	"image-transform-pipeline/internal/core"
	"image-transform-pipeline/internal/debug"
	imageio "image-transform-pipeline/internal/io"
	"image-transform-pipeline/internal/logging"
	"image-transform-pipeline/internal/metrics"
)

// guiRunner starts the desktop window; swapped out in tests
type guiRunner func(cfg *config.Config, logger *logrus.Logger, debugMode bool) error

// cli holds state shared by every command once the persistent flags are parsed
type cli struct {
	configPath string
	debug      bool

	cfg    *config.Config
	logger *logrus.Logger
	closer io.Closer
	stdout io.Writer
}

func newRootCmd(stdout io.Writer, startGUI guiRunner) *cobra.Command {
	c := &cli{stdout: stdout}

	root := &cobra.Command{
		Use:          "imgpipe",
		Short:        AppName,
		Version:      AppVersion,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return c.closer.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.logger.WithFields(logrus.Fields{
				"version":    AppVersion,
				"debug_mode": c.debug,
			}).Info("Starting Image Processing App")
			return startGUI(c.cfg, c.logger, c.debug)
		},
	}
	root.SetOut(stdout)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug mode with verbose logging")

	// Descriptors only feed flag names here; settings are rebound per run
	registry := algorithms.NewRegistry(algorithms.Settings{})
	for _, name := range registry.Names() {
		algorithm, _ := registry.Get(name)
		root.AddCommand(newTransformCmd(c, algorithm))
	}
	root.AddCommand(newFormatsCmd(c))

	return root
}

// setup loads the configuration and builds the logger. Logs go to stderr so
// stdout only carries command output.
func (c *cli) setup(logOut io.Writer) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	logger, closer, err := logging.New(cfg.Log, c.debug, logOut)
	if err != nil {
		return err
	}
	c.cfg, c.logger, c.closer = cfg, logger, closer
	return nil
}

// newTransformCmd exposes one transform as "NAME IN OUT" with a flag per parameter
func newTransformCmd(c *cli, algorithm algorithms.Algorithm) *cobra.Command {
	name := algorithm.GetName()
	infos := algorithm.GetParameterInfo()

	var (
		seed          int64
		maxIterations int
	)

	cmd := &cobra.Command{
		Use:   name + " IN OUT",
		Short: algorithm.GetTitle(),
		Long:  algorithm.GetDescription(),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := algorithms.Settings{
				Seed:          c.cfg.Quantize.Seed,
				MaxIterations: c.cfg.Quantize.MaxIterations,
			}
			if cmd.Flags().Changed("seed") {
				settings.Seed = seed
			}
			if cmd.Flags().Changed("max-iterations") {
				settings.MaxIterations = maxIterations
			}

			values, err := intFlags(cmd.Flags(), infos)
			if err != nil {
				return err
			}
			params, err := algorithms.NewRegistry(settings).Build(name, values)
			if err != nil {
				return err
			}
			return c.runTransform(params, args[0], args[1])
		},
	}

	for _, info := range infos {
		def := 0
		if info.HasDefault() {
			def = info.Default
		}
		cmd.Flags().Int(info.Name, def, info.Description)
		if !info.HasDefault() {
			_ = cmd.MarkFlagRequired(info.Name)
		}
	}
	if name == algorithms.QuantizeName {
		cmd.Flags().Int64Var(&seed, "seed", 0, "k-means seed (0 = unseeded; default from config)")
		cmd.Flags().IntVar(&maxIterations, "max-iterations", algorithms.DefaultMaxIterations, "k-means iteration cap (default from config)")
	}

	return cmd
}

func intFlags(flags *pflag.FlagSet, infos []algorithms.ParameterInfo) (map[string]int, error) {
	values := make(map[string]int, len(infos))
	for _, info := range infos {
		v, err := flags.GetInt(info.Name)
		if err != nil {
			return nil, err
		}
		values[info.Name] = v
	}
	return values, nil
}

// runTransform is the headless equivalent of one load, apply, save round in the window
func (c *cli) runTransform(params algorithms.Params, in, out string) error {
	loader := imageio.NewImageLoader(c.logger)
	controller := core.NewController(c.logger)
	tracker := debug.NewTracker(c.logger, c.debug)

	op := tracker.Start("load")
	img, err := loader.LoadImage(in)
	op.End()
	if err != nil {
		return err
	}
	if _, err := controller.Load(img, in); err != nil {
		return err
	}

	op = tracker.Start("apply " + params.Name())
	session, err := controller.Apply(params)
	op.End()
	if err != nil {
		return err
	}
	original, _ := session.Original()
	processed, err := session.Processed()
	if err != nil {
		return err
	}

	if err := loader.SaveImage(processed, out); err != nil {
		return err
	}

	evaluator := metrics.NewEvaluator()
	results := evaluator.CalculateAll(original, processed)
	fields := logrus.Fields{"session_id": session.ID(), "output": out}
	for metric, value := range results {
		fields["metric_"+metric] = value
	}
	c.logger.WithFields(fields).Info("Processed image saved")

	fmt.Fprintf(c.stdout, "Processed image saved at %s\n", out)
	if summary := evaluator.Summary(results); summary != "" {
		fmt.Fprintln(c.stdout, summary)
	}
	return nil
}

func newFormatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported image formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader := imageio.NewImageLoader(c.logger)
			fmt.Fprintf(c.stdout, "Formats: %s\n", strings.Join(loader.GetSupportedFormats(), ", "))
			fmt.Fprintf(c.stdout, "Load: %s\n", strings.Join(loader.LoadExtensions(), " "))
			fmt.Fprintf(c.stdout, "Save: %s\n", strings.Join(loader.SaveExtensions(), " "))
			return nil
		},
	}
}
