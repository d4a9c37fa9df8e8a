package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/swaybuild/cmd/swaybuild/commands"
	ferrors "git.home.luguber.info/inful/swaybuild/internal/foundation/errors"
	"git.home.luguber.info/inful/swaybuild/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli commands.CLI
	parser, err := kong.New(&cli,
		kong.Name("swaybuild"),
		kong.Description("Build Sway contracts and scripts from upstream repositories and collect their outputs."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(&cli),
	)
	if err != nil {
		return ferrors.NewCLIErrorAdapter(false, nil).Report(
			ferrors.WrapError(err, ferrors.CategoryInternal, "build command line parser").Build())
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		return 2
	}

	adapter := ferrors.NewCLIErrorAdapter(cli.Verbose, nil)
	return adapter.Report(kctx.Run(&commands.Global{Ctx: ctx, Out: os.Stdout}))
}
