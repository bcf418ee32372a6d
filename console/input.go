package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter reads answers one line at a time. At end of input every question
// gets the empty answer, so a game always runs to its end.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

func (p *Prompter) line(prompt string) string {
	fmt.Fprint(p.out, prompt)
	if !p.scanner.Scan() {
		fmt.Fprintln(p.out)
		return ""
	}
	return strings.TrimSpace(p.scanner.Text())
}

// CaseID asks for a case number. ok is false when the answer is not a number;
// id is then 0, which the engine replaces with a random case.
func (p *Prompter) CaseID(prompt string) (id int, ok bool) {
	n, err := strconv.Atoi(p.line(prompt))
	if err != nil {
		return 0, false
	}
	return n, true
}

// YesNo reports whether the answer starts with y or Y.
func (p *Prompter) YesNo(prompt string) bool {
	answer := p.line(prompt)
	return strings.HasPrefix(strings.ToUpper(answer), "Y")
}
