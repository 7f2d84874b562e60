package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/tagsfs/tagsfs/cmd"
)

type MkdirCommand struct {
}

func (mk *MkdirCommand) Name() string {
	return "mkdir"
}

func (mk *MkdirCommand) Description() string {
	return "Create a virtual directory"
}

func (mk *MkdirCommand) Usage() string {
	return "mkdir <path>"
}

func (mk *MkdirCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return 1, fmt.Errorf("usage: %s", mk.Usage())
	}

	if err := api.MkDir(args.Args[0]); err != nil {
		return 1, err
	}

	return 0, nil
}

func (mk *MkdirCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
