package main

import (
	"context"
	"os"

	"github.com/mkuzmins/authkeeper/internal/buildinfo"
	"github.com/mkuzmins/authkeeper/internal/client/cli"
	"github.com/mkuzmins/authkeeper/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	app.Run(ctx)

}
