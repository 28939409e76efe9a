package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"blockflow/document"
	"blockflow/layout"
	"blockflow/layout/margins"
	"blockflow/output"
	"blockflow/state"
)

// pipeline turns documents into layout results. Single pipeline is used for
// all documents of the run and is not safe for concurrent use.
type pipeline struct {
	env      *state.LocalEnv
	log      *zap.Logger
	loader   *document.Loader
	layouter *layout.Layouter
	writer   *output.Writer
	tracer   *margins.Tracer
	count    int
}

func newPipeline(env *state.LocalEnv, log *zap.Logger) (*pipeline, error) {
	loader, err := document.NewLoader(env.Cfg, env.DefaultStyle, log)
	if err != nil {
		return nil, err
	}

	var workDir string
	if env.Tracing() {
		if workDir, err = os.MkdirTemp("", "blockflow-trace-"); err != nil {
			return nil, fmt.Errorf("unable to create trace directory: %w", err)
		}
		// report removes directory when it is closed
		env.Rpt.StoreWorkDir("trace", workDir)
	}
	tracer := margins.NewTracer(workDir)
	if tracer.IsEnabled() {
		log.Debug("Margins tracing enabled", zap.String("run", tracer.Run()), zap.String("dir", workDir))
	}

	return &pipeline{
		env:      env,
		log:      log,
		loader:   loader,
		layouter: layout.New(&env.Cfg.Layout, log, tracer),
		writer:   output.New(&env.Cfg.Output, log),
		tracer:   tracer,
	}, nil
}

// processDocument lays out single document. "src" is part of the source path
// (always including file name) relative to the original path. "dst" is the
// destination directory.
func (p *pipeline) processDocument(ctx context.Context, r io.Reader, src, dst string) (rerr error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	var outputName string

	p.log.Info("Layout starting", zap.String("from", src))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			p.log.Error("Layout ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("layout panic: %v", r)
		} else if rerr == nil {
			p.log.Info("Layout completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	doc, err := p.loader.Load(r, src)
	if err != nil {
		return err
	}

	res, err := p.layouter.Layout(doc.Root, doc.Area)
	p.flushTrace(src)
	if err != nil {
		return fmt.Errorf("unable to layout %s: %w", src, err)
	}

	outputName = buildOutputPath(src, dst, p.env.Format, res, p.env)
	if err := prepareOutput(outputName, p.env.Overwrite, p.log); err != nil {
		return err
	}

	f, err := os.Create(outputName)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	if err := p.writer.Write(f, p.env.Format, src, res); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to close output file: %w", err)
	}
	p.count++

	if p.env.Rpt != nil {
		p.env.Rpt.Store(fmt.Sprintf("result-%04d%s", p.count, filepath.Ext(outputName)), outputName)
	}
	return nil
}

// flushTrace moves collected margins trace of the document into report.
func (p *pipeline) flushTrace(src string) {
	path := p.tracer.Flush()
	if path == "" || p.env.Rpt == nil {
		return
	}
	name := fmt.Sprintf("trace-%04d-%s.txt", p.count+1, documentBase(src))
	if err := p.env.Rpt.StoreCopy(name, path); err != nil {
		p.log.Warn("Unable to save margins trace", zap.String("document", src), zap.Error(err))
	}
}

// prepareOutput makes sure output file could be created.
func prepareOutput(name string, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(name); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Warn("Overwriting existing file", zap.String("file", name))
		return os.Remove(name)
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}
