// Package pageadapter renders the HTML home page: an optional markdown notice
// followed by the list of completed downloads.
package pageadapter

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"os"

	_ "embed"

	"github.com/jgivc/mediafetch/internal/config"
	"github.com/jgivc/mediafetch/internal/entity"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

//go:embed templates/index.html
var defaultIndexContent string

type Frontmatter struct {
	Title string `yaml:"title"`
}

type PageContext struct {
	Title      string
	NoticeHTML template.HTML
	Videos     []*entity.CatalogEntry
}

type pageAdapter struct {
	fs     afero.Fs
	cfg    *config.PageConfig
	md     goldmark.Markdown
	tmpl   *template.Template
	title  string
	notice template.HTML
	log    *slog.Logger
}

func NewPageAdapterWithFS(fs afero.Fs, cfg *config.PageConfig, log *slog.Logger) (*pageAdapter, error) {
	tmpl, err := template.New("index").Parse(defaultIndexContent)
	if err != nil {
		return nil, fmt.Errorf("cannot parse index template: %w", err)
	}

	a := &pageAdapter{
		fs:  fs,
		cfg: cfg,
		md: goldmark.New(
			goldmark.WithExtensions(
				&frontmatter.Extender{},
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithXHTML(),
			),
		),
		tmpl:  tmpl,
		title: cfg.Title,
		log:   log.With(slog.String("item", "PageAdapter")),
	}

	if err := a.loadNotice(); err != nil {
		return nil, err
	}

	return a, nil
}

// loadNotice converts the configured markdown file. A missing file is not an error.
func (a *pageAdapter) loadNotice() error {
	if a.cfg.NoticeFile == "" {
		return nil
	}

	data, err := afero.ReadFile(a.fs, a.cfg.NoticeFile)
	if err != nil {
		if os.IsNotExist(err) {
			a.log.Warn("Notice file not found", slog.String("path", a.cfg.NoticeFile))

			return nil
		}

		return fmt.Errorf("cannot read notice file: %w", err)
	}

	pc := parser.NewContext()

	var buf bytes.Buffer
	if err := a.md.Convert(data, &buf, parser.WithContext(pc)); err != nil {
		return fmt.Errorf("cannot convert markdown: %w", err)
	}

	if fmData := frontmatter.Get(pc); fmData != nil {
		var fm Frontmatter
		if err := fmData.Decode(&fm); err != nil {
			return fmt.Errorf("cannot decode frontmatter: %w", err)
		}

		if fm.Title != "" {
			a.title = fm.Title
		}
	}

	a.notice = template.HTML(buf.String())

	return nil
}

func (a *pageAdapter) Render(entries []*entity.CatalogEntry) (string, error) {
	buf := bytes.Buffer{}

	if err := a.tmpl.Execute(&buf, &PageContext{
		Title:      a.title,
		NoticeHTML: a.notice,
		Videos:     entries,
	}); err != nil {
		return "", fmt.Errorf("cannot execute template: %w", err)
	}

	return buf.String(), nil
}
