package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"pdfepub/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	ImagesConfig struct {
		Dir         string `yaml:"dir" validate:"required"`
		MaxWidth    int    `yaml:"max_width" validate:"gte=0"`
		JPEGQuality int    `yaml:"jpeg_quality_level" validate:"min=40,max=100"`
	}

	DocumentConfig struct {
		FixZip                bool         `yaml:"fix_zip"`
		StylesheetPath        string       `yaml:"stylesheet_path" sanitize:"assure_file_access"`
		FileNameTransliterate bool         `yaml:"file_name_transliterate"`
		OutputNameTemplate    string       `yaml:"output_name_template"`
		Language              string       `yaml:"language" validate:"required,bcp47_language_tag"`
		Images                ImagesConfig `yaml:"images"`
	}

	PipelineConfig struct {
		Executable    string             `yaml:"executable" validate:"required"`
		OutputDir     string             `yaml:"output_dir" sanitize:"path_clean" validate:"required"`
		Method        common.ParseMethod `yaml:"method"`
		Backend       common.Backend     `yaml:"backend"`
		Lang          string             `yaml:"lang" validate:"required"`
		FormulaEnable bool               `yaml:"formula_enable"`
		TableEnable   bool               `yaml:"table_enable"`
		ServerURL     string             `yaml:"server_url" validate:"omitempty,url"`
		ModelSource   common.ModelSource `yaml:"model_source"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Pipeline  PipelineConfig `yaml:"pipeline"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

type TemplateFieldName string

// NOTE: must match yaml field name above
const OutputNameTemplateFieldName TemplateFieldName = "output_name_template"

// templates are expanded later, for every converted document
var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// Only fields we defined are allowed, so no yaml.Unmarshal here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if !process {
		return cfg, nil
	}
	if err := gencfg.Sanitize(cfg); err != nil {
		return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
	}
	if err := gencfg.Validate(cfg); err != nil {
		return nil, fmt.Errorf("failed to validate configuration: %w", err)
	}
	return cfg, nil
}

// LoadConfiguration expands embedded configuration template, superimposes
// values from the file at the given path (if any) and validates the result.
// Template expansion is the only place where process environment is
// consulted.
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
	cfg, err = unmarshalConfig(data, cfg, true)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare returns expanded default configuration.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
