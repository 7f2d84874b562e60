package builtin

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tagsfs/tagsfs/cmd"
)

type TagsCommand struct {
}

func (tc *TagsCommand) Name() string {
	return "tags"
}

func (tc *TagsCommand) Description() string {
	return "Print the stored tags of a virtual file"
}

func (tc *TagsCommand) Usage() string {
	return "tags [-t name] <path>"
}

func (tc *TagsCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return 1, fmt.Errorf("usage: %s", tc.Usage())
	}

	tags, err := api.Tags(args.Args[0])
	if err != nil {
		return 1, err
	}

	if name := args.String("tag", ""); name != "" {
		values, exists := tags[name]
		if !exists {
			return 1, fmt.Errorf("no tag %q on %s", name, args.Args[0])
		}
		fmt.Fprintln(writer, strings.Join(values, ","))
		return 0, nil
	}

	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(writer, "%s=%s\n", name, strings.Join(tags[name], ","))
	}

	return 0, nil
}

func (tc *TagsCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"tag": {
				Name:        "tag",
				Short:       "t",
				Type:        "string",
				Description: "Print only the values of this tag",
			},
		},
	}
}
