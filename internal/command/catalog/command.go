// Package catalog 提供模板目录的查询与校验命令。
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/lwmacct/251207-go-pkg-version/pkg/version"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/260829-go-pkg-jobtpl/internal/command"
	"github.com/lwmacct/260829-go-pkg-jobtpl/internal/config"
	catpkg "github.com/lwmacct/260829-go-pkg-jobtpl/pkg/catalog"
	"github.com/lwmacct/260829-go-pkg-jobtpl/pkg/expand"
)

// Command 模板目录命令
var Command = &cli.Command{
	Name:  "catalog",
	Usage: "查询与校验作业模板目录",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "catalog-path",
			Aliases: []string{"c"},
			Value:   command.Defaults.Catalog.Path,
			Usage:   "模板目录文件路径，留空使用内置目录",
		},
	},
	Action: action,
	Commands: []*cli.Command{
		{
			Name:   "list",
			Usage:  "列出目录中的全部模板",
			Action: listAction,
		},
		{
			Name:      "show",
			Usage:     "显示单个模板的完整定义",
			ArgsUsage: "<template>",
			Action:    showAction,
		},
		{
			Name:   "validate",
			Usage:  "校验目录并报告全部失效条目",
			Action: validateAction,
		},
	},
}

func action(ctx context.Context, cmd *cli.Command) error {
	// 默认行为：显示帮助
	return cli.ShowAppHelp(cmd)
}

// loadCatalog 解析配置并加载目录，失效条目不阻断查询类子命令。
func loadCatalog(cmd *cli.Command) (*catpkg.Catalog, error) {
	cfg, err := config.Load(cmd, version.GetAppRawName())
	if err != nil {
		return nil, err
	}

	cat, err := command.LoadCatalog(cfg.Catalog.Path)
	if cat == nil {
		return nil, err
	}

	return cat, nil
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	cat, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMOL_TYPE\tFIELDS\tDESCRIPTION")
	for _, name := range cat.Names() {
		tpl, _ := cat.Get(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", tpl.Name, tpl.MolType, len(tpl.Fields), tpl.Description)
	}

	return w.Flush()
}

func showAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errors.New("用法: catalog show <template>")
	}

	cat, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	tpl, err := cat.MustGet(cmd.Args().First())
	if err != nil {
		return err
	}

	// 复用 Job 的 YAML 渲染输出模板定义
	fields := make(map[string]any, len(tpl.Fields))
	for name, field := range tpl.Fields {
		if field.IsPath() {
			fields[name] = map[string]any{"path": pathToSeq(field)}
			continue
		}
		fields[name] = map[string]any{"value": field.Value()}
	}

	doc := expand.Job{
		"description": tpl.Description,
		"mol_type":    string(tpl.MolType),
		"template":    fields,
	}

	data, err := doc.ToYAML()
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(data)

	return err
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd, version.GetAppRawName())
	if err != nil {
		return err
	}

	cat, err := command.LoadCatalog(cfg.Catalog.Path)
	if cat == nil {
		return err
	}
	if err != nil {
		return fmt.Errorf("目录校验未通过 (合法条目 %d 个):\n%w", cat.Len(), err)
	}

	fmt.Printf("目录校验通过，共 %d 个模板\n", cat.Len())

	return nil
}

// pathToSeq 把路径转为 []any 以便 YAML 渲染为序列。
func pathToSeq(field catpkg.Field) []any {
	p := field.Path()
	out := make([]any, len(p))
	for i, key := range p {
		out[i] = key
	}

	return out
}
