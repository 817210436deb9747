package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/lwmacct/251207-go-pkg-version/pkg/version"
	"github.com/lwmacct/251219-go-pkg-logm/pkg/logm"
	"github.com/urfave/cli/v3"

	catalogcmd "github.com/lwmacct/260829-go-pkg-jobtpl/internal/command/catalog"
	"github.com/lwmacct/260829-go-pkg-jobtpl/internal/command/render"
)

func main() {
	_ = logm.Init(logm.PresetAuto()...)

	cmd := &cli.Command{
		Name:  "jobtpl",
		Usage: "化学模拟作业模板解析工具",
		Commands: []*cli.Command{
			render.Command,
			catalogcmd.Command,
			version.Command,
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("应用程序运行失败", "error", err)
		os.Exit(1)
	}
}
