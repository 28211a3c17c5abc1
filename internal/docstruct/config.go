package docstruct

// Config holds every tunable knob the engine exposes. Field names mirror
// the external-interface table; the YAML tags are consumed by
// internal/config for hot-reloadable loading via viper.
type Config struct {
	DefaultPageWidth          int     `yaml:"default_page_width" mapstructure:"default_page_width"`
	DefaultPageHeight         int     `yaml:"default_page_height" mapstructure:"default_page_height"`
	TextCellMinWidthRatio     float64 `yaml:"text_cell_min_width_ratio" mapstructure:"text_cell_min_width_ratio"`
	FrameTableMinHeightRatio  float64 `yaml:"frame_table_min_height_ratio" mapstructure:"frame_table_min_height_ratio"`
	MinFrameColumns           int     `yaml:"min_frame_columns" mapstructure:"min_frame_columns"`
	FrameFooterMinIndentRatio float64 `yaml:"frame_footer_min_indent_ratio" mapstructure:"frame_footer_min_indent_ratio"`
	AppendixHeaderMaxChars    int     `yaml:"appendix_header_max_chars" mapstructure:"appendix_header_max_chars"`
	DefaultNumberingLevels    int     `yaml:"default_numbering_levels" mapstructure:"default_numbering_levels"`
	DefaultFontSizePt         float64 `yaml:"default_font_size_pt" mapstructure:"default_font_size_pt"`
	MaxTOCPages               int     `yaml:"max_toc_pages" mapstructure:"max_toc_pages"`
	AvgPageCharsCount         int     `yaml:"avg_page_chars_count" mapstructure:"avg_page_chars_count"`
	MaxDocPages               int     `yaml:"max_doc_pages" mapstructure:"max_doc_pages"`
	TOCHeaderMaxChars         int     `yaml:"toc_header_max_chars" mapstructure:"toc_header_max_chars"`
	HeadingTagDepthClamp      int     `yaml:"heading_tag_depth_clamp" mapstructure:"heading_tag_depth_clamp"`
	BoldRunsThreshold         float64 `yaml:"bold_runs_threshold" mapstructure:"bold_runs_threshold"`
}

// DefaultConfig returns the knob defaults from the external-interface table.
func DefaultConfig() *Config {
	return &Config{
		DefaultPageWidth:          11907,
		DefaultPageHeight:         16840,
		TextCellMinWidthRatio:     0.8,
		FrameTableMinHeightRatio:  0.8,
		MinFrameColumns:           7,
		FrameFooterMinIndentRatio: 0.82,
		AppendixHeaderMaxChars:    40,
		DefaultNumberingLevels:    9,
		DefaultFontSizePt:         12,
		MaxTOCPages:               10,
		AvgPageCharsCount:         1200,
		MaxDocPages:               2000,
		TOCHeaderMaxChars:         35,
		HeadingTagDepthClamp:      9,
		BoldRunsThreshold:         0.6,
	}
}
