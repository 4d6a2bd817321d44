package simpleexcel

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Types
// =============================================================================

// DataExporter is the main entry point for exporting data.
type DataExporter struct {
	template *ReportTemplate
	// data holds data bound to specific section IDs (for YAML flow)
	data map[string]interface{}
	// sheets holds manually added sheets (for programmatic flow)
	sheets []*SheetBuilder
	// formatters holds registered formatter functions by name
	formatters map[string]func(interface{}) interface{}
}

// ReportTemplate represents the YAML structure.
type ReportTemplate struct {
	Sheets []SheetTemplate `yaml:"sheets"`
}

// SheetTemplate represents a sheet in the YAML.
type SheetTemplate struct {
	Name     string          `yaml:"name"`
	Sections []SectionConfig `yaml:"sections"`
}

// SectionConfig defines a section of data in a sheet.
type SectionConfig struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Data        interface{}    `yaml:"-"` // Data is bound at runtime
	ShowHeader  bool           `yaml:"show_header"`
	HeaderStyle *StyleTemplate `yaml:"header_style"`
	Columns     []ColumnConfig `yaml:"columns"`
}

// ColumnConfig defines a column in a section.
type ColumnConfig struct {
	FieldName string  `yaml:"field_name"` // Struct field name or map key
	Header    string  `yaml:"header"`
	Width     float64 `yaml:"width"`
	Formatter string  `yaml:"formatter"` // Name of a registered formatter
}

// StyleTemplate defines basic styling.
type StyleTemplate struct {
	Bold      bool   `yaml:"bold"`
	FontColor string `yaml:"font_color"`
	FillColor string `yaml:"fill_color"`
}

// SheetBuilder collects sections for one programmatically added sheet.
type SheetBuilder struct {
	exporter *DataExporter
	name     string
	sections []*SectionConfig
}

// =============================================================================
// Constructors
// =============================================================================

func NewDataExporter() *DataExporter {
	return &DataExporter{
		data:       make(map[string]interface{}),
		formatters: make(map[string]func(interface{}) interface{}),
	}
}

// NewDataExporterFromYamlConfig parses an inline YAML report template.
func NewDataExporterFromYamlConfig(config string) (*DataExporter, error) {
	return newFromReader(strings.NewReader(config))
}

// NewDataExporterFromYamlFile parses a YAML report template file.
func NewDataExporterFromYamlFile(path string) (*DataExporter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open yaml file: %w", err)
	}
	defer f.Close()
	return newFromReader(f)
}

func newFromReader(r io.Reader) (*DataExporter, error) {
	var tmpl ReportTemplate
	if err := yaml.NewDecoder(r).Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(tmpl.Sheets) == 0 {
		return nil, fmt.Errorf("report template has no sheets")
	}
	e := NewDataExporter()
	e.template = &tmpl
	return e, nil
}

// =============================================================================
// Fluent API
// =============================================================================

// AddSheet starts a new sheet builder.
func (e *DataExporter) AddSheet(name string) *SheetBuilder {
	sb := &SheetBuilder{exporter: e, name: name}
	e.sheets = append(e.sheets, sb)
	return sb
}

func (sb *SheetBuilder) AddSection(config *SectionConfig) *SheetBuilder {
	sb.sections = append(sb.sections, config)
	return sb
}

func (sb *SheetBuilder) Build() *DataExporter {
	return sb.exporter
}

// BindSectionData binds data to a section ID (for YAML-based export).
func (e *DataExporter) BindSectionData(id string, data interface{}) *DataExporter {
	e.data[id] = data
	return e
}

// RegisterFormatter makes fn available to columns declaring formatter: name.
func (e *DataExporter) RegisterFormatter(name string, fn func(interface{}) interface{}) *DataExporter {
	e.formatters[name] = fn
	return e
}

// =============================================================================
// Output
// =============================================================================

// BuildExcel renders every sheet into a new workbook.
func (e *DataExporter) BuildExcel() (*excelize.File, error) {
	f := excelize.NewFile()
	first := true

	addSheet := func(name string) error {
		if first {
			first = false
			f.SetSheetName("Sheet1", name)
			return nil
		}
		idx, err := f.GetSheetIndex(name)
		if err != nil {
			return err
		}
		if idx == -1 {
			_, err = f.NewSheet(name)
		}
		return err
	}

	for _, sb := range e.sheets {
		if err := addSheet(sb.name); err != nil {
			return nil, err
		}
		if err := e.renderSections(f, sb.name, sb.sections); err != nil {
			return nil, err
		}
	}

	if e.template != nil {
		for _, sheetTmpl := range e.template.Sheets {
			if err := addSheet(sheetTmpl.Name); err != nil {
				return nil, err
			}
			sections := make([]*SectionConfig, len(sheetTmpl.Sections))
			for j := range sheetTmpl.Sections {
				sec := sheetTmpl.Sections[j]
				if data, ok := e.data[sec.ID]; ok {
					sec.Data = data
				}
				sections[j] = &sec
			}
			if err := e.renderSections(f, sheetTmpl.Name, sections); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

// ToBytes exports the Excel file to an in-memory byte slice.
func (e *DataExporter) ToBytes() ([]byte, error) {
	f, err := e.BuildExcel()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := new(bytes.Buffer)
	if _, err := f.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToWriter writes the Excel file to the provided io.Writer.
func (e *DataExporter) ToWriter(w io.Writer) error {
	f, err := e.BuildExcel()
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

// =============================================================================
// Rendering Logic
// =============================================================================

func (e *DataExporter) renderSections(f *excelize.File, sheet string, sections []*SectionConfig) error {
	row := 1
	for _, sec := range sections {
		if sec.Title != "" {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetCellValue(sheet, cell, sec.Title); err != nil {
				return err
			}
			row++
		}

		if sec.ShowHeader {
			styleID, err := createStyle(f, sec.HeaderStyle)
			if err != nil {
				return err
			}
			for i, col := range sec.Columns {
				cell, _ := excelize.CoordinatesToCellName(1+i, row)
				if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
					return err
				}
				if col.Width > 0 {
					colName, _ := excelize.ColumnNumberToName(1 + i)
					if err := f.SetColWidth(sheet, colName, colName, col.Width); err != nil {
						return err
					}
				}
			}
			row++
		}

		dataVal := reflect.ValueOf(sec.Data)
		if dataVal.Kind() == reflect.Slice {
			for i := 0; i < dataVal.Len(); i++ {
				item := dataVal.Index(i)
				for j, col := range sec.Columns {
					val := extractValue(item, col.FieldName)
					if fn, ok := e.formatters[col.Formatter]; ok && col.Formatter != "" {
						val = fn(val)
					}
					cell, _ := excelize.CoordinatesToCellName(1+j, row)
					if err := f.SetCellValue(sheet, cell, val); err != nil {
						return err
					}
				}
				row++
			}
		}
		// blank row between sections
		row++
	}
	return nil
}

// extractValue reads fieldName from a struct or map item. Nil pointers become "";
// fmt.Stringer values are rendered with String().
func extractValue(item reflect.Value, fieldName string) interface{} {
	for item.Kind() == reflect.Ptr || item.Kind() == reflect.Interface {
		if item.IsNil() {
			return ""
		}
		item = item.Elem()
	}

	var field reflect.Value
	switch item.Kind() {
	case reflect.Struct:
		field = item.FieldByName(fieldName)
	case reflect.Map:
		field = item.MapIndex(reflect.ValueOf(fieldName))
	}
	if !field.IsValid() {
		return ""
	}

	for field.Kind() == reflect.Ptr || field.Kind() == reflect.Interface {
		if field.IsNil() {
			return ""
		}
		if s, ok := field.Interface().(fmt.Stringer); ok {
			return s.String()
		}
		field = field.Elem()
	}
	if s, ok := field.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return field.Interface()
}

func createStyle(f *excelize.File, tmpl *StyleTemplate) (int, error) {
	style := &excelize.Style{Font: &excelize.Font{Bold: true}}
	if tmpl != nil {
		style.Font = &excelize.Font{
			Bold:  tmpl.Bold,
			Color: strings.TrimPrefix(tmpl.FontColor, "#"),
		}
		if tmpl.FillColor != "" {
			style.Fill = excelize.Fill{
				Type:    "pattern",
				Color:   []string{strings.TrimPrefix(tmpl.FillColor, "#")},
				Pattern: 1,
			}
		}
	}
	return f.NewStyle(style)
}
