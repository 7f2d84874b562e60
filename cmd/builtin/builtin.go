// Package builtin provides the stock commands for the virtual namespace.
package builtin

import (
	"github.com/tagsfs/tagsfs/cmd"
)

// InitBuiltin registers all builtin commands with the manager.
func InitBuiltin(manager *cmd.Manager) error {
	commands := []cmd.Command{
		&LsCommand{},
		&StatCommand{},
		&TagsCommand{},
		&MvCommand{},
		&MkdirCommand{},
		&RmdirCommand{},
		&RmCommand{},
		&ResolveCommand{},
		&CatCommand{},
	}

	for _, command := range commands {
		if err := manager.Register(command); err != nil {
			return err
		}
	}

	return nil
}
