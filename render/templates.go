package render

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"blockflow/box"
	"blockflow/common"
	"blockflow/config"
	"blockflow/layout"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Name       string
	SourceFile string
	SourceDir  string
	Format     string
	Width      float32
	Height     float32
	Boxes      int
	Overflow   int
}

func buildValues(name config.TemplateFieldName, src string, format common.OutputFmt, res *layout.Result) Values {
	v := Values{
		Context:    string(name),
		SourceFile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		SourceDir:  filepath.ToSlash(filepath.Dir(src)),
		Format:     format.String(),
	}
	v.Name = strings.TrimSuffix(v.SourceFile, docExt)
	if res != nil {
		v.Width, v.Height = res.Area.Width, res.Area.Height
		v.Overflow = len(res.Overflow)
		if res.Root != nil {
			res.Root.Walk(func(_ *box.Node, _ int) bool {
				v.Boxes++
				return true
			})
		}
	}
	return v
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
