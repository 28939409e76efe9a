package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	LayoutConfig struct {
		PageWidth       float32 `yaml:"page_width" validate:"gt=0"`
		PageHeight      float32 `yaml:"page_height" validate:"gt=0"`
		LineHeight      float32 `yaml:"line_height" validate:"gt=0"`
		CharWidth       float32 `yaml:"char_width" validate:"gt=0"`
		FontSize        float32 `yaml:"font_size" validate:"gt=0"`
		CollapseMargins bool    `yaml:"collapse_margins"`
		Trace           bool    `yaml:"trace"`
	}

	DocumentConfig struct {
		StylesheetPath string `yaml:"stylesheet_path" sanitize:"assure_file_access"`
		// SentenceLines breaks text of anonymous lines into one line per sentence.
		SentenceLines bool   `yaml:"sentence_lines"`
		ArchivePrefix string `yaml:"archive_prefix"`
	}

	RasterConfig struct {
		Scale       float64 `yaml:"scale" validate:"gt=0,lte=8"`
		Compression string  `yaml:"compression" validate:"oneof=default none speed best"`
		JPEGQuality int     `yaml:"jpeg_quality" validate:"gte=40,lte=100"`
		DPI         int     `yaml:"dpi" validate:"gte=0,lte=1200"`
	}

	OutputConfig struct {
		NameTemplate          string       `yaml:"name_template"`
		FileNameTransliterate bool         `yaml:"file_name_transliterate"`
		Raster                RasterConfig `yaml:"raster"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Layout    LayoutConfig   `yaml:"layout"`
		Document  DocumentConfig `yaml:"document"`
		Output    OutputConfig   `yaml:"output"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// NOTE: must match yaml field name above.
const NameTemplateFieldName TemplateFieldName = "name_template"

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(NameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
