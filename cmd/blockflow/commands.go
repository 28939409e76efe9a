package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"blockflow/common"
	"blockflow/config"
	"blockflow/render"
	"blockflow/state"
)

func layoutCommand() *cli.Command {
	return &cli.Command{
		Name:         "layout",
		Usage:        "Lays out box document(s) and writes results in requested format",
		OnUsageError: passUsageError,
		Action:       render.Run,
		ArgsUsage:    "SOURCE [DESTINATION]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Value: common.OutputFmtText.String(),
				Usage: "result `FORMAT`: " + strings.Join(common.OutputFmtNames(), ", ")},
			&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "put all results directly into destination"},
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "replace existing results"},
			&cli.BoolFlag{Name: "collapse", Value: true, Usage: "collapse adjoining vertical margins (overrides configuration)"},
			&cli.BoolFlag{Name: "trace", Usage: "record margin collapsing decisions into debug report (requires --debug)"},
			&cli.StringFlag{Name: "force-zip-cp",
				Usage: "decode non UTF-8 names in archives using IANA character set `NAME`"},
		},
		CustomHelpTemplate: cli.CommandHelpTemplate + `
SOURCE:
    document.xml or document.xml.gz        single document
    directory                              all documents and archives under it, recursively
    archive.zip                            documents in archive (under document.archive_prefix if configured)
    archive.zip/path/in/archive            documents in archive under given path, or single document

    Archives inside archives are not looked into.

DESTINATION:
    directory for results, current directory if absent. Result names are
    built from source names or output.name_template.
`,
	}
}

func dumpConfigCommand() *cli.Command {
	return &cli.Command{
		Name:         "dumpconfig",
		Usage:        "Writes default or effective configuration (YAML)",
		OnUsageError: passUsageError,
		Action:       dumpConfig,
		ArgsUsage:    "[DESTINATION]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "default", Usage: "write embedded defaults instead of effective configuration"},
		},
		CustomHelpTemplate: cli.CommandHelpTemplate + `
DESTINATION:
    file to write to, STDOUT if absent

Effective configuration is defaults with --config file values applied on top.
`,
	}
}

func dumpConfig(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Extra arguments ignored", zap.Strings("args", cmd.Args().Slice()[1:]))
	}

	var data []byte
	kind := "effective"
	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to produce %s configuration: %w", kind, err)
	}

	var out io.Writer = os.Stdout
	dst := "STDOUT"
	if name := cmd.Args().Get(0); len(name) > 0 {
		var f *os.File
		if f, err = os.Create(name); err != nil {
			return fmt.Errorf("unable to create '%s': %w", name, err)
		}
		defer func() {
			if er := f.Close(); er != nil && err == nil {
				err = er
			}
		}()
		out, dst = f, name
	}

	env.Log.Info("Writing configuration", zap.String("kind", kind), zap.String("to", dst))
	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
