package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/tagsfs/tagsfs/cmd"
)

type ResolveCommand struct {
}

func (rc *ResolveCommand) Name() string {
	return "resolve"
}

func (rc *ResolveCommand) Description() string {
	return "Print the source file behind a virtual path"
}

func (rc *ResolveCommand) Usage() string {
	return "resolve <path>"
}

func (rc *ResolveCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return 1, fmt.Errorf("usage: %s", rc.Usage())
	}

	source, err := api.Resolve(args.Args[0])
	if err != nil {
		return 1, err
	}

	fmt.Fprintln(writer, source)
	return 0, nil
}

func (rc *ResolveCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
