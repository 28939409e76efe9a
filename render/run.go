// Package render drives the whole processing: finds documents, lays them out
// and writes results.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	fixzip "github.com/hidez8891/zip"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"blockflow/archive"
	"blockflow/common"
	"blockflow/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	format, err := common.ParseOutputFmt(cmd.String("to"))
	if err != nil {
		log.Warn("Unknown output format requested, switching to text", zap.Error(err))
		format = common.OutputFmtText
	}

	env.Format = format
	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")
	if cmd.Bool("trace") {
		env.Cfg.Layout.Trace = true
	}
	if env.Cfg.Layout.Trace && env.Rpt == nil {
		log.Warn("Margins tracing requires debug report, ignoring")
	}
	if cmd.IsSet("collapse") {
		env.Cfg.Layout.CollapseMargins = cmd.Bool("collapse")
	}

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	p, err := newPipeline(env, log)
	if err != nil {
		return err
	}
	return process(ctx, p, src, dst)
}

// process determines the input type (directory, archive, or single file) and
// processes accordingly. Source could point inside of an archive.
func process(ctx context.Context, p *pipeline, src, dst string) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, p, head, dst); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			if len(tail) == 0 {
				tail = p.env.Cfg.Document.ArchivePrefix
			}
			if err := processArchive(ctx, p, head, tail, "", dst); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		doc, compressed, err := isDocumentFile(head)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if doc && len(tail) == 0 {
			// document cannot have tail
			if err := processFile(ctx, p, head, filepath.Base(head), dst, compressed); err != nil {
				return err
			}
			break
		}
		return fmt.Errorf("input was not recognized as document (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

func processFile(ctx context.Context, p *pipeline, path, src, dst string, compressed bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", path, err)
	}
	defer file.Close()

	r, err := selectReader(file, compressed)
	if err != nil {
		return err
	}
	defer r.Close()
	return p.processDocument(ctx, r, src, dst)
}

// processDir walks directory tree finding documents and archives and
// processes them. Failures of individual documents are logged and do not
// stop processing.
func processDir(ctx context.Context, p *pipeline, dir, dst string) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			p.log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			p.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		isArchive, err := isArchiveFile(path)
		if err != nil {
			p.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if isArchive {
			count++
			rel := filepath.Dir(strings.TrimPrefix(path, dir))
			if err := processArchive(ctx, p, path, p.env.Cfg.Document.ArchivePrefix, rel, dst); err != nil {
				p.log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			return nil
		}

		doc, compressed, err := isDocumentFile(path)
		if err != nil {
			p.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !doc {
			p.log.Debug("Skipping file, not recognized as document or archive", zap.String("file", path))
			return nil
		}

		count++
		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := processFile(ctx, p, path, src, dst, compressed); err != nil {
			p.log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
	return err
}

// processArchive walks all files inside archive, finds documents under
// "pathIn" and processes them. Results go under "pathOut" relative to
// destination.
func processArchive(ctx context.Context, p *pipeline, path, pathIn, pathOut, dst string) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			p.log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	err = archive.Walk(path, pathIn, func(archive string, f *fixzip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		r, err := f.Open()
		if err != nil {
			p.log.Error("Unable to process file in archive",
				zap.String("archive", archive), zap.String("file", f.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		head, err := readHeader(r)
		if err != nil {
			p.log.Warn("Skipping file in archive", zap.String("archive", archive), zap.String("path", f.Name), zap.Error(err))
			return nil
		}
		doc, compressed := isDocument(f.Name, head)
		if !doc {
			p.log.Debug("Skipping file, not recognized as document", zap.String("archive", archive), zap.String("file", f.Name))
			return nil
		}

		count++

		dr, err := selectReader(io.MultiReader(bytes.NewReader(head), r), compressed)
		if err != nil {
			p.log.Error("Unable to process file in archive",
				zap.String("archive", archive), zap.String("file", f.Name), zap.Error(err))
			return nil
		}
		defer dr.Close()

		if err := p.processDocument(ctx, dr, filepath.Join(pathOut, filepath.FromSlash(p.entryName(f))), dst); err != nil {
			p.log.Error("Unable to process file in archive",
				zap.String("archive", archive), zap.String("file", f.Name), zap.Error(err))
		}
		return nil
	})
	return err
}

// entryName returns name of archive entry converting it from forced code page
// when necessary.
func (p *pipeline) entryName(f *fixzip.File) string {
	cp := p.env.CodePage
	if cp == nil || !f.NonUTF8 {
		return f.Name
	}
	name, err := cp.NewDecoder().String(f.Name)
	if err != nil {
		n, _ := ianaindex.IANA.Name(cp)
		p.log.Warn("Unable to convert archive name from specified encoding",
			zap.String("charset", n), zap.String("path", f.Name), zap.Error(err))
		return f.Name
	}
	return name
}
