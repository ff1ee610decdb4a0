package asm

import (
	"runtime"
	"sync"

	"armsim/pkg/token"
)

// lexLine is one line's lexing result.
type lexLine struct {
	line   int // 0-based index into the source
	tokens []token.Token
}

// lexAll tokenizes every source line. Lines are independent (spec §4.1:
// "the assembler collects errors but continues lexing subsequent lines"),
// so — adapted from the teacher's search.WorkerPool, which fans
// independent per-sequence search tasks out across goroutines — lexing
// fans independent per-line tasks out across NumCPU workers and
// reassembles them in original order. This concurrency is safe only
// because assembly happens once, before execution; the Interpreter itself
// stays strictly synchronous (spec §5).
func lexAll(lines []string, diags *diagnosticSink) [][]token.Token {
	n := len(lines)
	out := make([][]token.Token, n)
	if n == 0 {
		return out
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				toks, err := tokenizeLine(lines[i], i+1)
				if err != nil {
					diags.add(Diagnostic{Kind: KindSyntax, Line: i + 1, Msg: err.Error()})
					out[i] = nil
					continue
				}
				out[i] = toks
			}
		}()
	}
	wg.Wait()

	return out
}
