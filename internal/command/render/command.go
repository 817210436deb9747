// Package render 提供模板展开命令。
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lwmacct/251207-go-pkg-version/pkg/version"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/260829-go-pkg-jobtpl/internal/command"
	"github.com/lwmacct/260829-go-pkg-jobtpl/internal/config"
	"github.com/lwmacct/260829-go-pkg-jobtpl/pkg/ctree"
	"github.com/lwmacct/260829-go-pkg-jobtpl/pkg/expand"
)

// Command 模板展开命令
var Command = &cli.Command{
	Name:      "render",
	Usage:     "展开指定模板，输出完整的作业输入",
	ArgsUsage: "<template>",
	Action:    action,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "catalog-path",
			Aliases: []string{"c"},
			Value:   command.Defaults.Catalog.Path,
			Usage:   "模板目录文件路径，留空使用内置目录",
		},
		&cli.StringSliceFlag{
			Name:    "base-paths",
			Aliases: []string{"b"},
			Value:   command.Defaults.Base.Paths,
			Usage:   "基础配置文件路径，可多次指定，后者覆盖前者",
		},
		&cli.StringFlag{
			Name:    "render-format",
			Aliases: []string{"f"},
			Value:   command.Defaults.Render.Format,
			Usage:   "输出格式 (yaml 或 json)",
		},
		&cli.BoolFlag{
			Name:  "render-keep-absent",
			Value: command.Defaults.Render.KeepAbsent,
			Usage: "保留未命中的字段并渲染为 null",
		},
		&cli.BoolFlag{
			Name:  "render-expand-env",
			Value: command.Defaults.Render.ExpandEnv,
			Usage: "展开字符串字段中的环境变量模板",
		},
	},
}

func action(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errors.New("用法: render <template>")
	}
	name := cmd.Args().First()

	cfg, err := config.Load(cmd, version.GetAppRawName())
	if err != nil {
		return err
	}

	cat, err := command.LoadCatalog(cfg.Catalog.Path)
	if cat == nil {
		return err
	}
	if err != nil {
		slog.Warn("模板目录存在失效条目", "error", err)
	}

	base := ctree.New(map[string]any{})
	if len(cfg.Base.Paths) > 0 {
		if base, err = ctree.Load(cfg.Base.Paths...); err != nil {
			return err
		}
	} else {
		slog.Debug("未指定基础配置文件，路径字段将全部解析为 Absent")
	}

	tpl, err := cat.MustGet(name)
	if err != nil {
		return err
	}

	job := expand.Expand(tpl, base)

	if cfg.Render.ExpandEnv {
		if job, err = job.ExpandStrings(); err != nil {
			return err
		}
	}

	if absent := job.AbsentFields(); len(absent) > 0 {
		slog.Debug("未命中的路径字段", "template", name, "fields", absent)
		if !cfg.Render.KeepAbsent {
			job = job.Compact()
		}
	}

	var data []byte
	switch cfg.Render.Format {
	case "yaml":
		data, err = job.ToYAML()
	case "json":
		data, err = job.ToJSON()
	default:
		return fmt.Errorf("不支持的输出格式 %q (支持 yaml/json)", cfg.Render.Format)
	}
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(data)

	return err
}
