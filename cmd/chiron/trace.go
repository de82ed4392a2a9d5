package main

import (
	"context"
	"os"

	"github.com/chironlang/chiron/exec"
	"github.com/chironlang/chiron/interp"
	"github.com/chironlang/chiron/model"
	"github.com/chironlang/chiron/vm"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var (
	traceBin      bool
	traceParams   string
	traceMaxSteps int
	traceDetails  bool
)

var traceCmd = &cobra.Command{
	Use:   "trace PROGRAM",
	Short: "Run a program and print every step",
	Args:  cobra.ExactArgs(1),
	Run:   traceCommand,
}

func init() {
	traceCmd.Flags().BoolVarP(&traceBin, "bin", "b", false, "Load the program as binary IR")
	traceCmd.Flags().StringVarP(&traceParams, "params", "d", "", "Initial variables as a JSON object or a .json file")
	traceCmd.Flags().IntVar(&traceMaxSteps, "max-steps", 10000, "Abort after this many instructions (0 = unlimited)")
	traceCmd.Flags().BoolVar(&traceDetails, "details", false, "Print the environment after every step")
}

func loadProgram(path string, bin bool) (*vm.Program, error) {
	if bin {
		return vm.LoadPathAs(path, vm.FormatBinary)
	}
	return vm.LoadPath(path)
}

func traceCommand(cmd *cobra.Command, args []string) {
	prog, err := loadProgram(args[0], traceBin)
	if err != nil {
		fatal(err, "Couldn't load program")
	}
	params, err := model.ParseParams(traceParams)
	if err != nil {
		fatal(err, "Couldn't parse params")
	}
	e := interp.New(prog, nil)
	e.InitProgramContext(params)
	e.MaxSteps = traceMaxSteps
	rec := exec.NewRecorder(nil)
	e.Observer = rec

	runErr := e.Run(context.Background())
	model.FormatTrace(os.Stdout, rec, traceDetails)
	if runErr != nil {
		fatal(runErr, "Program failed")
	}
	atexit.Exit(0)
}
