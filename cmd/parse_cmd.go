package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/expr-lang/expr"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dzjyyds666/hyconf/parse"
	"github.com/dzjyyds666/hyconf/pkg"
)

type ParseParams struct {
	Find   string   `json:"find"`   // 查询表达式
	Input  string   `json:"input"`  // 输入文件路径
	Output string   `json:"output"` // 输出文件地址
	Format string   `json:"format"` // 文档格式, 默认自动检测
	Vars   string   `json:"vars"`   // 变量文件
	Set    []string `json:"set"`    // key.path=value
	Env    bool     `json:"env"`
	To     string   `json:"to"` // 输出格式
	Strict bool     `json:"strict"`
}

var params *ParseParams

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "parse a hybrid configuration document",
	Args:  cobra.NoArgs,
	RunE:  parseRun,
}

func init() {
	params = &ParseParams{}
	parseCmd.Flags().StringVarP(&params.Find, "find", "f", "", "expression evaluated against the parsed data, e.g. app.port")
	parseCmd.Flags().StringVarP(&params.Input, "input", "i", "", "input file path, - for stdin")
	parseCmd.Flags().StringVarP(&params.Output, "output", "o", "", "output path")
	parseCmd.Flags().StringVar(&params.Format, "format", "auto", "document format: auto, toml, yaml or properties")
	parseCmd.Flags().StringVar(&params.Vars, "vars", "", "variable file (.json, .jsonc, .yaml, .yml or .toml)")
	parseCmd.Flags().StringArrayVar(&params.Set, "set", nil, "set a variable, key.path=value (repeatable)")
	parseCmd.Flags().BoolVar(&params.Env, "env", false, "expose the process environment as env.*")
	parseCmd.Flags().StringVar(&params.To, "to", "json", "output encoding: json, yaml or toml")
	parseCmd.Flags().BoolVar(&params.Strict, "strict", false, "fail when the document produced warnings")
}

func parseRun(cmd *cobra.Command, args []string) error {
	if len(params.Input) == 0 {
		return fmt.Errorf("no input file path")
	}
	content, err := pkg.ReadInput(params.Input)
	if err != nil {
		return err
	}
	out, warnings, err := convert(content, params, os.Environ())
	printWarnings(cmd.ErrOrStderr(), warnings)
	if err != nil {
		return err
	}
	if params.Strict && len(warnings) > 0 {
		return fmt.Errorf("%d warning(s) in %s", len(warnings), params.Input)
	}
	if params.Output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	return pkg.WriteOutput(params.Output, out)
}

// convert parses content and encodes the (optionally queried) result.
func convert(content string, p *ParseParams, environ []string) ([]byte, []string, error) {
	format, err := parse.ParseFormat(p.Format)
	if err != nil {
		return nil, nil, err
	}
	vars, err := variables(p, environ)
	if err != nil {
		return nil, nil, err
	}
	res, err := parse.Parse(content, parse.Options{
		Format:    format,
		Variables: vars,
		Logger:    newLogger(os.Stderr, verbose),
	})
	if err != nil {
		return nil, nil, err
	}
	data := res.Data
	if p.Find != "" {
		if data, err = query(data, p.Find); err != nil {
			return nil, res.Warnings, err
		}
	}
	out, err := encode(data, p.To)
	return out, res.Warnings, err
}

// variables builds the bag from the variable file, the environment and --set,
// later sources overriding earlier ones.
func variables(p *ParseParams, environ []string) (map[string]any, error) {
	vars := map[string]any{}
	if p.Vars != "" {
		loaded, err := pkg.LoadVariables(p.Vars)
		if err != nil {
			return nil, err
		}
		vars = loaded
	}
	if p.Env {
		vars["env"] = pkg.EnvVariables(environ)
	}
	for _, a := range p.Set {
		if err := pkg.SetVariable(vars, a); err != nil {
			return nil, err
		}
	}
	return vars, nil
}

func query(data any, q string) (any, error) {
	env, ok := data.(map[string]any)
	if !ok {
		env = map[string]any{"data": data}
	}
	v, err := expr.Eval(q, env)
	if err != nil {
		return nil, fmt.Errorf("find %q: %w", q, err)
	}
	return v, nil
}

func encode(v any, to string) ([]byte, error) {
	switch to {
	case "", "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(v)
	case "toml":
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("toml output needs a table, got %T", v)
		}
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(m); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown output encoding %q", to)
	}
}
