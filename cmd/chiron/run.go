package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/chironlang/chiron/model"
	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var (
	configPath string
	binFlag    bool
	paramsArg  string
	debugFlag  bool
	hooksFlag  bool
	maxSteps   int
	svgPath    string
	waitFlag   bool
	recordFlag bool
)

var runCmd = &cobra.Command{
	Use:   "run [PROGRAM]",
	Short: "Run a program",
	Long: "Run a program from a text (.toml, .yaml) or binary (.kw) IR file.\n" +
		"With --config, settings come from a TOML run configuration and\n" +
		"flags given on the command line override them.",
	Args: cobra.MaximumNArgs(1),
	Run:  runCommand,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "TOML run configuration")
	runCmd.Flags().BoolVarP(&binFlag, "bin", "b", false, "Load the program as binary IR")
	runCmd.Flags().StringVarP(&paramsArg, "params", "d", "", "Initial variables as a JSON object or a .json file")
	runCmd.Flags().BoolVar(&debugFlag, "debug", false, "Run under the interactive debugger")
	runCmd.Flags().BoolVarP(&hooksFlag, "hooks", "k", false, "Dump the final state when the program ends")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "Abort after this many instructions (0 = unlimited)")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "Write the drawing to this SVG file")
	runCmd.Flags().BoolVar(&waitFlag, "wait", false, "Wait for ESC on the terminal after the program ends")
	runCmd.Flags().BoolVar(&recordFlag, "record", false, "Keep a trace of every step and print it at the end")
}

// buildSpec combines the run configuration, if any, with the flags that
// were set explicitly.
func buildSpec(cmd *cobra.Command, args []string) (*model.Spec, error) {
	spec := &model.Spec{}
	if configPath != "" {
		s, err := model.LoadSpecFromFile(configPath)
		if err != nil {
			return nil, err
		}
		spec = s
	}
	if len(args) > 0 {
		spec.Run.Program = args[0]
	}
	if spec.Run.Program == "" {
		return nil, fmt.Errorf("no program given")
	}
	flags := cmd.Flags()
	if flags.Changed("bin") {
		spec.Run.Bin = binFlag
	}
	if flags.Changed("debug") {
		spec.Run.Debug = debugFlag
	}
	if flags.Changed("hooks") {
		spec.Run.Hooks = hooksFlag
	}
	if flags.Changed("max-steps") {
		spec.Run.MaxSteps = maxSteps
	}
	if flags.Changed("svg") {
		spec.Run.SVG = svgPath
	}
	if flags.Changed("wait") {
		spec.Run.Wait = waitFlag
	}
	if flags.Changed("record") {
		spec.Run.Record = recordFlag
	}
	return spec, nil
}

func runCommand(cmd *cobra.Command, args []string) {
	spec, err := buildSpec(cmd, args)
	if err != nil {
		fatal(err, "Couldn't load run configuration")
	}
	exec, err := spec.BuildExecutor()
	if err != nil {
		fatal(err, "Couldn't load program")
	}
	atexit.Register(func() {
		if err := exec.Close(); err != nil {
			log.Error().Err(err).Msg("closing output")
		}
	})

	params, err := model.ParseParams(paramsArg)
	if err != nil {
		fatal(err, "Couldn't parse params")
	}
	exec.Params = model.MergeParams(exec.Params, params)
	exec.Reporter = &model.ColorReporter{Writer: os.Stderr}
	if err := exec.Initialize(); err != nil {
		fatal(err, "Couldn't initialize executor")
	}
	if log.Debug().Enabled() {
		exec.Program.DebugPrint(os.Stderr)
		fmt.Fprintf(os.Stderr, "Initial state:\n%s\n", exec.Engine.Env.PrettyPrint())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := exec.RunModel(ctx)
	if err != nil {
		fatal(err, "Error running program")
	}
	if !result.Success {
		fmt.Fprint(os.Stderr, model.FormatRunError(result))
	}
	if exec.Recorder != nil {
		fmt.Fprintln(os.Stderr)
		model.FormatTrace(os.Stderr, exec.Recorder, false)
	}
	fmt.Fprint(os.Stderr, model.FormatStatistics(result.Statistics))
	if !result.Success {
		atexit.Exit(1)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, color.Green.Sprint("✓ Program completed"))
}
