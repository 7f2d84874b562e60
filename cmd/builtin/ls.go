package builtin

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/tagsfs/tagsfs/cmd"
)

type LsCommand struct {
}

func (ls *LsCommand) Name() string {
	return "ls"
}

func (ls *LsCommand) Description() string {
	return "List the entries of a virtual directory"
}

func (ls *LsCommand) Usage() string {
	return "ls [-l] [path]"
}

func (ls *LsCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	target := "/"
	if len(args.Args) > 0 {
		target = args.Args[0]
	}

	entries, err := api.ReadDir(target)
	if err != nil {
		return 1, err
	}

	long := args.Bool("long")
	for _, entry := range entries {
		if !long {
			fmt.Fprintln(writer, entry.Name)
			continue
		}

		if entry.IsDir {
			fmt.Fprintf(writer, "d %10s  %s\n", "-", entry.Name)
			continue
		}

		attr, err := api.Stat(path.Join(target, entry.Name))
		if err != nil {
			fmt.Fprintf(writer, "- %10s  %s\n", "?", entry.Name)
			continue
		}
		fmt.Fprintf(writer, "- %10d  %s\n", attr.Size, entry.Name)
	}

	return 0, nil
}

func (ls *LsCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"long": {
				Name:        "long",
				Short:       "l",
				Type:        "bool",
				Description: "Show sizes and entry kinds",
			},
		},
	}
}
