package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompt texts
const (
	TokenPrompt    = "Enter a vine vanity or user ID: "
	DownloadPrompt = "Do you want to download data for each post? (yes/no): "
)

// Prompter asks questions on the console
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter reads answers from in and writes questions to out.
// When interactive is false answers are echoed, since nothing else shows
// them on the console.
func NewPrompter(in io.Reader, out io.Writer, interactive bool) *Prompter {
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// NewStdPrompter prompts on stdin and stdout
func NewStdPrompter() *Prompter {
	return NewPrompter(os.Stdin, Output(), IsTerminal(os.Stdin))
}

// Ask prints question and returns the trimmed answer. Reaching end of
// input with no answer returns io.EOF.
func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question)

	answer, err := p.in.ReadString('\n')
	answer = strings.TrimSpace(answer)
	if err != nil && (err != io.EOF || answer == "") {
		if !p.interactive {
			fmt.Fprintln(p.out)
		}
		return "", err
	}

	if !p.interactive {
		fmt.Fprintln(p.out, answer)
	}
	return answer, nil
}

// PromptToken asks for a vanity name or user ID
func (p *Prompter) PromptToken() (string, error) {
	return p.Ask(TokenPrompt)
}

// Confirm asks a yes/no question. Only "yes", in any letter case, confirms;
// end of input means no.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.Ask(question)
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.ToLower(answer) == "yes", nil
}
