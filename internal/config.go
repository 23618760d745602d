package internal

import (
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notedown/internal/assemble"
	"github.com/starford/notedown/internal/images"
	"github.com/starford/notedown/internal/notion"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Notion  NotionConfig      `yaml:"notion"`
	Posts   PostsConfig       `yaml:"posts"`
	Journal JournalConfig     `yaml:"journal"`
	Images  ImagesConfig      `yaml:"images"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Notion.Validate(); err != nil {
		return err
	}
	if err := c.Posts.Validate(); err != nil {
		return err
	}
	return c.Images.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// Workers bounds how many create/update items are in flight at once
	// during the apply phase.
	Workers int `yaml:"workers"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(32)),
	)
}

// NotionConfig holds the remote content API settings. Token and
// DatabaseID are the required inputs; the rest defaults to the public
// API.
type NotionConfig struct {
	Token          string `yaml:"token"`
	DatabaseID     string `yaml:"database_id"`
	BaseURL        string `yaml:"base_url"`
	Version        string `yaml:"version"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Validate validates the remote API configuration.
func (c *NotionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Token, validation.Required),
		validation.Field(&c.DatabaseID, validation.Required),
	)
}

// ClientConfig maps the section onto the notion client's config.
func (c *NotionConfig) ClientConfig() notion.Config {
	return notion.Config{
		BaseURL:    c.BaseURL,
		Token:      c.Token,
		Version:    c.Version,
		DatabaseID: c.DatabaseID,
		Timeout:    time.Duration(c.TimeoutSeconds) * time.Second,
	}
}

// PostsConfig holds the generated-posts directory and front-matter date
// formatting.
type PostsConfig struct {
	Dir string `yaml:"dir"`
	// TimeSuffix is the fixed time-of-day and UTC offset appended to each
	// post's date in front matter.
	TimeSuffix string `yaml:"time_suffix"`
}

// Validate validates the posts configuration.
func (c *PostsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// JournalConfig holds the sync-history database location. An empty path
// disables the journal.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// ImagesConfig holds the image localization settings.
type ImagesConfig struct {
	Dir        string   `yaml:"dir"`
	PublicPath string   `yaml:"public_path"`
	Prefixes   []string `yaml:"prefixes"`
}

// Validate validates the images configuration.
func (c *ImagesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// LocalizerConfig maps the section onto the localizer's config.
func (c *ImagesConfig) LocalizerConfig() images.Config {
	return images.Config{
		Dir:        c.Dir,
		PublicPath: c.PublicPath,
		Prefixes:   c.Prefixes,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
// Token and database id have no defaults: they come from the config file
// or environment expansion.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			Workers:  4,
		},
		Notion: NotionConfig{
			BaseURL:        notion.DefaultBaseURL,
			Version:        notion.DefaultVersion,
			TimeoutSeconds: 30,
		},
		Posts: PostsConfig{
			Dir:        "_posts",
			TimeSuffix: assemble.DefaultTimeSuffix,
		},
		Journal: JournalConfig{
			Path: "./notedown.db",
		},
		Images: ImagesConfig{
			Dir:        "images",
			PublicPath: "/images",
			Prefixes:   images.DefaultPrefixes,
		},
	}
}
