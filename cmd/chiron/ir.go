package main

import (
	"fmt"
	"os"

	"github.com/chironlang/chiron/vm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var (
	irBin  bool
	irDump string
	irCFG  bool
)

var irCmd = &cobra.Command{
	Use:   "ir PROGRAM",
	Short: "Print a program's instructions, optionally converting it to binary IR",
	Args:  cobra.ExactArgs(1),
	Run:   irCommand,
}

func init() {
	irCmd.Flags().BoolVarP(&irBin, "bin", "b", false, "Load the program as binary IR")
	irCmd.Flags().StringVar(&irDump, "dump", "", "Write the program as binary IR to this file")
	irCmd.Flags().BoolVar(&irCFG, "cfg", false, "Print static successors and unreachable instructions")
}

func irCommand(cmd *cobra.Command, args []string) {
	prog, err := loadProgram(args[0], irBin)
	if err != nil {
		fatal(err, "Couldn't load program")
	}
	var cfg *vm.StaticCFG
	if irCFG {
		cfg = vm.BuildStaticCFG(prog)
		prog.SetCFG(cfg)
	}
	prog.DebugPrint(os.Stdout)
	if cfg != nil {
		for pc, ok := range cfg.Reachable() {
			if !ok {
				fmt.Printf("  %03d unreachable\n", pc)
			}
		}
	}
	if irDump == "" {
		return
	}
	f, err := os.Create(irDump)
	if err != nil {
		fatal(err, "Couldn't create dump file")
	}
	atexit.Register(func() { f.Close() })
	if err := vm.DumpBinary(f, prog); err != nil {
		fatal(err, "Couldn't write binary IR")
	}
	log.Info().Str("file", irDump).Int("instructions", prog.Len()).Msg("wrote binary IR")
}
