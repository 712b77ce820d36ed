// Package cli runs the interactive pest-risk menu on a line-oriented terminal.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOption is returned by ParseCommand for anything outside the menu.
var ErrInvalidOption = errors.New("invalid option")

// Command is a menu entry.
type Command int

const (
	CommandEvaluate Command = iota + 1
	CommandShowFull
	CommandShowSummary
	CommandExit
)

func (c Command) String() string {
	switch c {
	case CommandEvaluate:
		return "evaluate"
	case CommandShowFull:
		return "show_full"
	case CommandShowSummary:
		return "show_summary"
	case CommandExit:
		return "exit"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// ParseCommand maps a menu selection ("1" to "4") to its Command.
func ParseCommand(input string) (Command, error) {
	switch strings.TrimSpace(input) {
	case "1":
		return CommandEvaluate, nil
	case "2":
		return CommandShowFull, nil
	case "3":
		return CommandShowSummary, nil
	case "4":
		return CommandExit, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOption, input)
	}
}

// Outcome tells the session loop what to do after a command.
type Outcome int

const (
	// OutcomeContinue asks whether to open the menu again.
	OutcomeContinue Outcome = iota
	// OutcomeRetry returns straight to the menu after rejected input.
	OutcomeRetry
	// OutcomeExit ends the session.
	OutcomeExit
)
