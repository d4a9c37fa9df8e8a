package commands

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/swaybuild/internal/config"
	ferrors "git.home.luguber.info/inful/swaybuild/internal/foundation/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	return RunInit(g, root.Config, i.Force)
}

func RunInit(g *Global, configPath string, force bool) error {
	if err := config.Init(configPath, force); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			return ferrors.WrapError(err, ferrors.CategoryValidation, "refusing to overwrite configuration").
				UserAction().
				WithContext("path", configPath).
				Build()
		}
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write configuration").
			WithContext("path", configPath).
			Build()
	}
	_, err := fmt.Fprintf(g.out(), "Wrote default configuration to %s\n", configPath)
	return err
}
