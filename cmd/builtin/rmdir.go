package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/tagsfs/tagsfs/cmd"
)

type RmdirCommand struct {
}

func (rd *RmdirCommand) Name() string {
	return "rmdir"
}

func (rd *RmdirCommand) Description() string {
	return "Remove an empty virtual directory"
}

func (rd *RmdirCommand) Usage() string {
	return "rmdir <path>"
}

func (rd *RmdirCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return 1, fmt.Errorf("usage: %s", rd.Usage())
	}

	if err := api.RmDir(args.Args[0]); err != nil {
		return 1, err
	}

	return 0, nil
}

func (rd *RmdirCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
