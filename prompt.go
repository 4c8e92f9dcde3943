package main

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"

	"github.com/mnishina/avif-converter/config"
)

// promptMissing asks for the directories the command line did not provide.
// With tuning set it also offers the encode settings, current values as
// defaults.
func promptMissing(cfg *config.Config, tuning bool) error {
	if cfg.InputDir == "" {
		if err := survey.AskOne(&survey.Input{Message: "Input directory:"}, &cfg.InputDir, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}
	if cfg.OutputDir == "" {
		if err := survey.AskOne(&survey.Input{Message: "Output directory:"}, &cfg.OutputDir, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}
	if !tuning {
		return nil
	}

	var err error
	if cfg.Quality, err = promptInt("Quality (0-100):", cfg.Quality); err != nil {
		return err
	}
	if cfg.Effort, err = promptInt("Effort (0-9):", cfg.Effort); err != nil {
		return err
	}
	return nil
}

func promptInt(message string, current int) (int, error) {
	answer := ""
	prompt := &survey.Input{Message: message, Default: strconv.Itoa(current)}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", answer)
	}
	return n, nil
}
