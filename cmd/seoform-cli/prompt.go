package main

import (
	"context"
	"errors"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("prompt aborted")

// Prompter asks for values the user left off the command line.
type Prompter interface {
	Input(ctx context.Context, message, def string) (string, error)
	Confirm(ctx context.Context, message string, def bool) (bool, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(ctx context.Context, message, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{Message: message, Default: def}
	if err := survey.AskOne(prompt, &out, survey.WithValidator(survey.Required)); err != nil {
		return "", translateSurveyErr(err)
	}
	return strings.TrimSpace(out), nil
}

func (surveyPrompter) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
