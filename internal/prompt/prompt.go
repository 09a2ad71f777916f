// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

// Package prompt reads operator input from a terminal or any line-oriented stream.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/term"
)

// CodeNoTerminal marks a secret prompt with no terminal to read from.
const CodeNoTerminal = "PROMPT_NO_TERMINAL"

// Line shows a banner and reads one line of input.
type Line struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLine creates a Line prompter reading from in and writing banners to out.
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{in: bufio.NewReader(in), out: out}
}

// Prompt writes banner on its own line and returns the next input line with
// its terminator removed. The answer is returned as typed. ctx is checked
// before the banner is shown; once reading has started, Prompt blocks until
// a line or EOF arrives.
func (p *Line) Prompt(ctx context.Context, banner string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", oops.Wrap(err)
	}
	if _, err := fmt.Fprintln(p.out, banner); err != nil {
		return "", oops.Wrapf(err, "write prompt")
	}

	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", oops.Wrapf(err, "read answer")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadSecret prompts for a value on the controlling terminal with echo
// disabled. It fails when stdin is not a terminal.
func ReadSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", oops.Code(CodeNoTerminal).
			Errorf("no terminal available to read %s", strings.ToLower(label))
	}

	fmt.Fprint(os.Stderr, label+": ")
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", oops.Wrapf(err, "read %s", strings.ToLower(label))
	}
	return string(secret), nil
}
