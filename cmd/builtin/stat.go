package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/tagsfs/tagsfs/cmd"
)

type StatCommand struct {
}

func (st *StatCommand) Name() string {
	return "stat"
}

func (st *StatCommand) Description() string {
	return "Describe the entry at a virtual path"
}

func (st *StatCommand) Usage() string {
	return "stat <path>"
}

func (st *StatCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return 1, fmt.Errorf("usage: %s", st.Usage())
	}

	attr, err := api.Stat(args.Args[0])
	if err != nil {
		return 1, err
	}

	if attr.IsDir {
		fmt.Fprintf(writer, "%s: directory\n", args.Args[0])
		return 0, nil
	}

	fmt.Fprintf(writer, "%s: file\n", args.Args[0])
	fmt.Fprintf(writer, "  size:    %d\n", attr.Size)
	fmt.Fprintf(writer, "  mode:    %04o\n", attr.Mode)
	fmt.Fprintf(writer, "  modtime: %s\n", attr.ModTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(writer, "  source:  %s\n", attr.FileID)

	return 0, nil
}

func (st *StatCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
