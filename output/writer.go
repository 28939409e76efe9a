// Package output writes layout results in one of supported formats.
package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/amazon-ion/ion-go/ion"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"blockflow/box"
	"blockflow/common"
	"blockflow/config"
	"blockflow/layout"
	"blockflow/utils/debug"
	"blockflow/utils/images"
)

// Writer produces layout results. It is stateless and could be reused.
type Writer struct {
	cfg *config.OutputConfig
	log *zap.Logger
}

func New(cfg *config.OutputConfig, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{cfg: cfg, log: log.Named("output")}
}

// Write writes result of document layout to out in requested format.
func (w *Writer) Write(out io.Writer, format common.OutputFmt, name string, res *layout.Result) error {
	if res == nil || res.Root == nil {
		return fmt.Errorf("no layout result for %s", name)
	}

	var err error
	switch format {
	case common.OutputFmtText:
		err = writeText(out, name, res)
	case common.OutputFmtYaml:
		err = writeYAML(out, NewReport(name, res))
	case common.OutputFmtIon:
		err = writeIon(out, NewReport(name, res), false)
	case common.OutputFmtIonb:
		err = writeIon(out, NewReport(name, res), true)
	case common.OutputFmtSvg:
		_, err = buildSVG(name, res).WriteTo(out)
	case common.OutputFmtPng, common.OutputFmtJpeg:
		err = w.writeRaster(out, format, name, res)
	default:
		err = fmt.Errorf("unsupported output format %s", format)
	}
	if err != nil {
		return fmt.Errorf("unable to write %s output for %s: %w", format, name, err)
	}
	w.log.Debug("Result written", zap.String("document", name), zap.Stringer("format", format))
	return nil
}

func fmtFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

func writeText(out io.Writer, name string, res *layout.Result) error {
	overflow := make(map[*box.Node]bool, len(res.Overflow))
	for _, n := range res.Overflow {
		overflow[n] = true
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "document %s area=%s", name, res.Area)
	res.Root.Walk(func(n *box.Node, depth int) bool {
		var collapsed, float, over string
		if n.Collapsed.HasTop || n.Collapsed.HasBottom {
			collapsed = "yes"
		}
		if n.IsFloated() {
			float = n.Style.Float.String()
		}
		if overflow[n] {
			over = "yes"
		}
		tw.Fields(depth+1, n.String(),
			"occupied", n.Occupied.String(),
			"margins", fmtFloat(n.EffectiveMarginTop())+"/"+fmtFloat(n.EffectiveMarginBottom()),
			"collapsed", collapsed,
			"float", float,
			"overflow", over,
		)
		if len(n.Text) > 0 {
			tw.TextBlock(depth+2, "text", n.Text)
		}
		return true
	})
	_, err := tw.WriteTo(out)
	return err
}

func writeYAML(out io.Writer, rpt *Report) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(rpt); err != nil {
		return err
	}
	return enc.Close()
}

func writeIon(out io.Writer, rpt *Report, binary bool) error {
	var (
		data []byte
		err  error
	)
	if binary {
		data, err = ion.MarshalBinary(rpt)
	} else {
		data, err = ion.MarshalText(rpt)
	}
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func (w *Writer) writeRaster(out io.Writer, format common.OutputFmt, name string, res *layout.Result) error {
	doc := buildSVG(name, res)
	data, err := doc.WriteToBytes()
	if err != nil {
		return err
	}
	img, err := images.RasterizeSVG(data, w.cfg.Raster.Scale)
	if err != nil {
		return fmt.Errorf("unable to rasterize: %w", err)
	}
	if format == common.OutputFmtJpeg {
		// one pixel per point at scale 1
		return images.EncodeJPEG(out, img, w.cfg.Raster.JPEGQuality, int(float64(w.cfg.Raster.DPI)*w.cfg.Raster.Scale))
	}
	return images.EncodePNG(out, img, w.cfg.Raster.Compression)
}
