// Command armsim is a thin CLI front end over pkg/asm and pkg/interp
// (spec §6 "any front-end may sit" over the Interpreter façade). It is a
// convenience for assembling and running programs from a terminal, not
// the product itself — a web or TUI debugger would wire the same two
// packages differently (spec §1 Out of scope).
package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"armsim/pkg/asm"
	"armsim/pkg/decoder"
	"armsim/pkg/interp"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "armsim",
		Short: "ARM assembler and cycle-aware simulator",
	}

	var verbose bool
	var fillValue uint8

	assembleCmd := &cobra.Command{
		Use:   "assemble <file.s>",
		Short: "Assemble a source file and print the section layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readLines(args[0])
			if err != nil {
				return err
			}
			prog, diags := asm.Assemble(src, asm.Config{FillValue: fillValue})
			for _, d := range diags {
				fmt.Fprintln(os.Stderr, d.Error())
			}
			names := make([]asm.SectionName, 0, len(prog.Sections))
			for n := range prog.Sections {
				names = append(names, n)
			}
			sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
			for _, n := range names {
				fmt.Printf("%s: %d bytes at 0x%08X\n", n, len(prog.Sections[n]), asm.SectionBase(n))
				if verbose {
					fmt.Printf("  % X\n", prog.Sections[n])
				}
			}
			if len(diags) > 0 {
				return fmt.Errorf("%d diagnostic(s)", len(diags))
			}
			return nil
		},
	}
	assembleCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print assembled bytes")
	assembleCmd.Flags().Uint8Var(&fillValue, "fill", 0, "Fill byte for DSn declarations")

	var maxSteps int
	var pcBehavior string

	runCmd := &cobra.Command{
		Use:   "run <file.s>",
		Short: "Assemble and run a program to completion or a step budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readLines(args[0])
			if err != nil {
				return err
			}
			prog, diags := asm.Assemble(src, asm.Config{FillValue: fillValue})
			for _, d := range diags {
				fmt.Fprintln(os.Stderr, d.Error())
			}

			cfg := interp.DefaultConfig()
			cfg.PCBehavior = pcBehavior
			ip, err := interp.New(prog.Sections, prog.Addr, cfg, nil)
			if err != nil {
				return err
			}

			for i := 0; i < maxSteps; i++ {
				reason, err := ip.Step(interp.StepInto)
				if err != nil {
					fmt.Printf("stopped after %d step(s): %v\n", i+1, err)
					break
				}
				if reason != interp.StopNone {
					fmt.Printf("stopped after %d step(s): %s\n", i+1, reason)
					break
				}
				if verbose {
					fmt.Printf("[%6d] %s\n", ip.CycleCount(), ip.LastDisassembly().Text)
				}
			}

			regs := ip.GetRegisters()
			fmt.Printf("\ncycles: %d\n", ip.CycleCount())
			for i := 0; i < 16; i++ {
				fmt.Printf("R%-2d = 0x%08X", i, regs[i])
				if i%4 == 3 {
					fmt.Println()
				} else {
					fmt.Print("  ")
				}
			}
			flags := ip.GetFlags()
			fmt.Printf("N=%v Z=%v C=%v V=%v mode=%s\n",
				flags["N"], flags["Z"], flags["C"], flags["V"], ip.ProcessorMode())
			return nil
		},
	}
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 10000, "Maximum instructions to execute")
	runCmd.Flags().StringVar(&pcBehavior, "pc-behavior", "+8", "PC display convention: +0 or +8")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print each instruction as it executes")
	runCmd.Flags().Uint8Var(&fillValue, "fill", 0, "Fill byte for DSn declarations")

	disasmCmd := &cobra.Command{
		Use:   "disasm <file.s>",
		Short: "Assemble a source file and disassemble its CODE section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readLines(args[0])
			if err != nil {
				return err
			}
			prog, diags := asm.Assemble(src, asm.Config{FillValue: fillValue})
			for _, d := range diags {
				fmt.Fprintln(os.Stderr, d.Error())
			}
			cfg := interp.DefaultConfig()
			ip, err := interp.New(prog.Sections, prog.Addr, cfg, nil)
			if err != nil {
				return err
			}
			base := asm.SectionBase(asm.SectionCode)
			end := base + uint32(len(prog.Sections[asm.SectionCode]))
			for addr := base; addr < end; addr += 4 {
				line, _ := prog.Addr.CurrentLine(addr)
				fmt.Printf("0x%08X (line %d): %s\n", addr, line, instructionAt(ip, addr))
			}
			return nil
		},
	}

	rootCmd.AddCommand(assembleCmd, runCmd, disasmCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// instructionAt decodes and disassembles the word at addr purely for
// display; it does not affect ip's execution state.
func instructionAt(ip *interp.Interpreter, addr uint32) string {
	mem := ip.GetMemory()
	var word uint32
	for i := 0; i < 4; i++ {
		word |= uint32(mem[addr+uint32(i)]) << (8 * uint(i))
	}
	in, err := decoder.Decode(word)
	if err != nil {
		return fmt.Sprintf("0x%08X  (%v)", word, err)
	}
	return fmt.Sprintf("0x%08X  %s", word, in.Kind)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// parseHex accepts both "0x..." and bare decimal forms, matching the
// flexible numeric literal parsing pkg/token's tokenizer allows in
// assembly source.
func parseHex(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		return uint32(v), err
	}
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}
