package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/tagsfs/tagsfs/cmd"
)

type CatCommand struct {
}

func (cat *CatCommand) Name() string {
	return "cat"
}

func (cat *CatCommand) Description() string {
	return "Write the contents of a virtual file to the output"
}

func (cat *CatCommand) Usage() string {
	return "cat <path>"
}

func (cat *CatCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return 1, fmt.Errorf("usage: %s", cat.Usage())
	}

	token, err := api.Open(args.Args[0], false)
	if err != nil {
		return 1, err
	}
	defer api.Release(token)

	buffer := make([]byte, 32*1024)
	offset := int64(0)
	for {
		n, err := api.ReadAt(token, buffer, offset)
		if n > 0 {
			if _, werr := writer.Write(buffer[:n]); werr != nil {
				return 1, werr
			}
			offset += int64(n)
		}
		if err == io.EOF {
			return 0, nil
		}
		if err != nil {
			return 1, err
		}
		if n == 0 {
			return 0, nil
		}
	}
}

func (cat *CatCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
