package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/tagsfs/tagsfs/cmd"
)

type MvCommand struct {
}

func (mv *MvCommand) Name() string {
	return "mv"
}

func (mv *MvCommand) Description() string {
	return "Move an entry, editing the tags its path derives from"
}

func (mv *MvCommand) Usage() string {
	return "mv <old> <new>"
}

func (mv *MvCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 2 {
		return 1, fmt.Errorf("usage: %s", mv.Usage())
	}

	if err := api.Rename(ctx, args.Args[0], args.Args[1]); err != nil {
		return 1, err
	}

	return 0, nil
}

func (mv *MvCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
