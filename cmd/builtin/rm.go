package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/tagsfs/tagsfs/cmd"
)

type RmCommand struct {
}

func (rm *RmCommand) Name() string {
	return "rm"
}

func (rm *RmCommand) Description() string {
	return "Remove a virtual file and its backing file"
}

func (rm *RmCommand) Usage() string {
	return "rm <path>"
}

func (rm *RmCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return 1, fmt.Errorf("usage: %s", rm.Usage())
	}

	if err := api.Unlink(ctx, args.Args[0]); err != nil {
		return 1, err
	}

	return 0, nil
}

func (rm *RmCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
