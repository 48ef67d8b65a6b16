package storefront

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Notifier shows one-shot messages to the buyer
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

var (
	okLabel    = color.New(color.FgGreen, color.Bold)
	errorLabel = color.New(color.FgRed, color.Bold)
)

// ColorNotifier prints notifications to a terminal
type ColorNotifier struct {
	Out io.Writer
}

func (n ColorNotifier) Success(msg string) {
	okLabel.Fprint(n.Out, "[OK] ")
	fmt.Fprintln(n.Out, msg)
}

func (n ColorNotifier) Failure(msg string) {
	errorLabel.Fprint(n.Out, "[ERROR] ")
	fmt.Fprintln(n.Out, msg)
}
