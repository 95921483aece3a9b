// shadermat derives shader materials declared in a YAML or JSONC material
// file and writes the resulting vertex and fragment programs to disk.
//
//	shadermat [flags] materials.yaml
//
// Each material is written to <out>/<name>.vert and <out>/<name>.frag and
// its program key is printed to stdout. With --compile every derived
// program is also compiled on the GPU, which requires CGo and a display.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/pflag"

	"github.com/soypat/shadermat"
	"github.com/soypat/shadermat/chunklib"
	"github.com/soypat/shadermat/glcompile"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	out         string
	verbose     bool
	compile     bool
	strict      bool
	listTypes   bool
	glslVersion string
}

func run(args []string) error {
	var f flags
	flagSet := pflag.NewFlagSet("shadermat", pflag.ContinueOnError)
	flagSet.StringVarP(&f.out, "out", "o", ".", "output directory for derived programs")
	flagSet.BoolVarP(&f.verbose, "verbose", "v", false, "log derivation details")
	flagSet.BoolVar(&f.compile, "compile", false, "compile every derived program on the GPU")
	flagSet.BoolVar(&f.strict, "strict", false, "fail when a derivation reports problems")
	flagSet.BoolVar(&f.listTypes, "list-types", false, "list extendable material types and exit")
	flagSet.StringVar(&f.glslVersion, "glsl-version", "", "version directive overriding the material file's")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if f.listTypes {
		for _, name := range shadermat.MaterialTypes() {
			fmt.Println(name)
		}
		return nil
	}
	if flagSet.NArg() != 1 {
		return errors.New("expected exactly one material file argument")
	}
	return derive(flagSet.Arg(0), f, logger)
}

func derive(path string, f flags, logger *slog.Logger) error {
	file, err := shadermat.LoadFile(path)
	if err != nil {
		return err
	}
	version := file.Version
	if f.glslVersion != "" {
		version = f.glslVersion
	}
	ext := shadermat.NewExtender(chunklib.Default())
	ext.Logger = logger
	materials, err := file.Build(ext)
	if err != nil {
		return err
	}
	if err := ext.Err(); err != nil && f.strict {
		return err
	}
	if err := os.MkdirAll(f.out, 0o755); err != nil {
		return err
	}

	names := make([]string, 0, len(materials))
	for name := range materials {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m := materials[name]
		for _, stage := range []shadermat.Stage{shadermat.StageVertex, shadermat.StageFragment} {
			dst := filepath.Join(f.out, name+"."+string(stage))
			err = os.WriteFile(dst, m.AppendProgram(nil, stage, version), 0o644)
			if err != nil {
				return err
			}
			logger.Debug("wrote stage", slog.String("material", name), slog.String("path", dst))
		}
		key, err := m.ProgramKey()
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", name, key)
	}

	if f.compile {
		return compileAll(materials, names, version, logger)
	}
	return nil
}

func compileAll(materials map[string]*shadermat.ShaderMaterial, names []string, version string, logger *slog.Logger) error {
	terminate, err := glcompile.Init()
	if err != nil {
		return err
	}
	defer terminate()
	cfg := glcompile.Config{Version: version, NumDirLights: 1}
	for _, name := range names {
		m := materials[name]
		if _, err := cfg.Compile(m); err != nil {
			return err
		}
		logger.Info("compiled program", slog.String("material", name))
	}
	return nil
}
