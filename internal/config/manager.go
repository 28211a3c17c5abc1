// Package config provides hot-reloadable loading of the docstruct engine's
// tunable knobs, grounded on the viper/fsnotify manager pattern.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"normaproc/internal/docstruct"
)

// Manager handles loading and hot-reloading the engine configuration.
type Manager struct {
	mu        sync.RWMutex
	cfg       *docstruct.Config
	callbacks []func(*docstruct.Config)
}

// NewManager creates a config manager, loading defaults overlaid with an
// optional YAML file and NORMAPROC_-prefixed environment variables.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{}
	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}
	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.cfg = cfg
	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	defaults := docstruct.DefaultConfig()
	viper.SetDefault("default_page_width", defaults.DefaultPageWidth)
	viper.SetDefault("default_page_height", defaults.DefaultPageHeight)
	viper.SetDefault("text_cell_min_width_ratio", defaults.TextCellMinWidthRatio)
	viper.SetDefault("frame_table_min_height_ratio", defaults.FrameTableMinHeightRatio)
	viper.SetDefault("min_frame_columns", defaults.MinFrameColumns)
	viper.SetDefault("frame_footer_min_indent_ratio", defaults.FrameFooterMinIndentRatio)
	viper.SetDefault("appendix_header_max_chars", defaults.AppendixHeaderMaxChars)
	viper.SetDefault("default_numbering_levels", defaults.DefaultNumberingLevels)
	viper.SetDefault("default_font_size_pt", defaults.DefaultFontSizePt)
	viper.SetDefault("max_toc_pages", defaults.MaxTOCPages)
	viper.SetDefault("avg_page_chars_count", defaults.AvgPageCharsCount)
	viper.SetDefault("max_doc_pages", defaults.MaxDocPages)
	viper.SetDefault("toc_header_max_chars", defaults.TOCHeaderMaxChars)
	viper.SetDefault("heading_tag_depth_clamp", defaults.HeadingTagDepthClamp)
	viper.SetDefault("bold_runs_threshold", defaults.BoldRunsThreshold)

	viper.SetEnvPrefix("NORMAPROC")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docstruct")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/normaproc")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func (cm *Manager) load() (*docstruct.Config, error) {
	var cfg docstruct.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration.
func (cm *Manager) Get() *docstruct.Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.cfg
}

// OnChange registers a callback fired after every successful reload.
func (cm *Manager) OnChange(fn func(*docstruct.Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading via fsnotify.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}
		cm.mu.Lock()
		cm.cfg = cfg
		callbacks := make([]func(*docstruct.Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}
