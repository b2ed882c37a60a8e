// Command inrfmt prints amounts with Indian digit grouping.
//
// Usage:
//
//	inrfmt 1234567 2500.75
//	printf '1234567\n₹ 9,99,999\n' | inrfmt
//
// One result is printed per input. Malformed amounts are reported on stderr
// and make the exit status 1.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"capex/internal/core"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	status := 0
	emit := func(raw string) {
		res := core.NormalizeAmount(raw)
		if !res.Valid() {
			fmt.Fprintf(stderr, "inrfmt: %q: %s\n", raw, res.Error)
			status = 1
			return
		}
		fmt.Fprintln(stdout, res.Display)
	}

	if len(args) > 0 {
		for _, a := range args {
			emit(a)
		}
		return status
	}

	sc := bufio.NewScanner(stdin)
	for sc.Scan() {
		emit(sc.Text())
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(stderr, "inrfmt: reading input: %v\n", err)
		return 1
	}
	return status
}
