package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"starling/internal/logger"
	"starling/pkg/errors"
	"starling/pkg/vm"
)

var (
	traceFlag   bool
	noColorFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "starling",
	Short: "Starling register VM",
	Long:  "Starling is the call-frame and calling-convention core of a register-based bytecode VM.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(traceFlag, noColorFlag)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the built-in demo program",
	RunE: func(cmd *cobra.Command, args []string) error {
		machine := vm.NewVM()
		machine.SetTrace(traceFlag)

		result, errs := machine.Interpret(demoScript())
		if len(errs) > 0 {
			errors.DisplayErrors(errs)
			return fmt.Errorf("execution failed")
		}
		fmt.Printf("script result: %s\n", result.Inspect())

		// Drive the demo generator through the resume protocol.
		counter := counterGenerator()
		genVal, err := machine.Call(vm.ObjectValue(vm.NewFunctionObject(counter)), vm.Undefined(), []vm.Value{vm.Integer(3)})
		if err != nil {
			errors.DisplayErrors([]errors.EngineError{err})
			return fmt.Errorf("execution failed")
		}
		gen := genVal.AsObject().Generator()
		for {
			value, done, rerr := machine.ResumeGenerator(gen, vm.ResumeNormal, vm.Undefined())
			if rerr != nil {
				errors.DisplayErrors([]errors.EngineError{rerr})
				return fmt.Errorf("execution failed")
			}
			if done {
				fmt.Printf("generator done: %s\n", value.Inspect())
				return nil
			}
			fmt.Printf("generator yielded: %s\n", value.Inspect())
		}
	},
}

var disCmd = &cobra.Command{
	Use:   "dis",
	Short: "Disassemble the built-in demo program",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(demoScript().Disassemble())
		fmt.Println()
		fmt.Print(counterGenerator().Disassemble())
	},
}

// demoScript computes (2 + 40) via a helper function call.
func demoScript() *vm.CodeBlock {
	const line = 1

	helper := vm.NewCodeBlock("add", vm.FuncNormal, 4)
	hc := helper.Chunk
	hc.WriteOpCode(vm.OpGetArg, line)
	hc.WriteByte(0)
	hc.WriteByte(0)
	hc.WriteOpCode(vm.OpGetArg, line)
	hc.WriteByte(1)
	hc.WriteByte(1)
	hc.WriteOpCode(vm.OpAdd, line)
	hc.WriteByte(2)
	hc.WriteByte(0)
	hc.WriteByte(1)
	hc.WriteOpCode(vm.OpReturn, line)
	hc.WriteByte(2)
	helper.Arity = 2

	script := vm.NewCodeBlock("<script>", vm.FuncNormal, 8)
	c := script.Chunk
	fnIdx := c.AddConstant(vm.ObjectValue(vm.NewFunctionObject(helper)))
	aIdx := c.AddConstant(vm.Integer(2))
	bIdx := c.AddConstant(vm.Integer(40))

	c.WriteOpCode(vm.OpLoadConst, line)
	c.WriteByte(0)
	c.WriteUint16(fnIdx)
	c.WriteOpCode(vm.OpLoadConst, line)
	c.WriteByte(1)
	c.WriteUint16(aIdx)
	c.WriteOpCode(vm.OpLoadConst, line)
	c.WriteByte(2)
	c.WriteUint16(bIdx)
	c.WriteOpCode(vm.OpCall, line)
	c.WriteByte(3) // result register
	c.WriteByte(0) // function register
	c.WriteByte(2) // argument count
	c.WriteOpCode(vm.OpReturn, line)
	c.WriteByte(3)
	return script
}

// counterGenerator yields 1..n, then returns n+1.
func counterGenerator() *vm.CodeBlock {
	const line = 1

	code := vm.NewCodeBlock("counter", vm.FuncGenerator, 8)
	c := code.Chunk
	oneIdx := c.AddConstant(vm.Integer(1))

	// R0 = n, R1 = i, R2 = 1, R3 = scratch
	c.WriteOpCode(vm.OpGetArg, line)
	c.WriteByte(0)
	c.WriteByte(0)
	c.WriteOpCode(vm.OpLoadConst, line)
	c.WriteByte(2)
	c.WriteUint16(oneIdx)
	c.WriteOpCode(vm.OpLoadConst, line)
	c.WriteByte(1)
	c.WriteUint16(oneIdx)
	// loop: if !(i < n+1) break
	c.WriteOpCode(vm.OpAdd, line) // R3 = n + 1
	c.WriteByte(3)
	c.WriteByte(0)
	c.WriteByte(2)
	c.WriteOpCode(vm.OpLess, line) // R3 = i < R3
	c.WriteByte(3)
	c.WriteByte(1)
	c.WriteByte(3)
	c.WriteOpCode(vm.OpJumpIfFalse, line)
	c.WriteByte(3)
	c.WriteUint16(10) // over yield+add+loop to the return
	c.WriteOpCode(vm.OpYield, line)
	c.WriteByte(1) // yield i
	c.WriteByte(4) // resume kind register
	c.WriteOpCode(vm.OpAdd, line) // i++
	c.WriteByte(1)
	c.WriteByte(1)
	c.WriteByte(2)
	c.WriteOpCode(vm.OpLoopNext, line)
	c.WriteInt16(-22) // back to loop head
	c.WriteOpCode(vm.OpReturn, line)
	c.WriteByte(1)
	code.Arity = 1
	return code
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "log frame transitions")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
	rootCmd.AddCommand(runCmd, disCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}
