package config

import "git.home.luguber.info/inful/gempost/internal/staticmerge"

// Default values for optional keys.
const (
	DefaultPublicDir         = "./public/"
	DefaultStaticDir         = "./static/"
	DefaultPostsDir          = "./posts/"
	DefaultIndexTemplateFile = "./templates/index.tmpl"
	DefaultPostTemplateFile  = "./templates/post.tmpl"
	DefaultPagesDir          = "./pages/"
	DefaultPageTemplateFile  = "./templates/page.tmpl"
	DefaultPostPath          = "/posts/{{ .slug }}.gmi"
	DefaultPagePath          = "/{{ .slug }}.gmi"
	DefaultIndexPath         = "/posts/index.gmi"
	DefaultFeedPath          = "/posts/atom.xml"
)

func applyDefaults(cfg *Config) {
	setDefault(&cfg.PublicDir, DefaultPublicDir)
	setDefault(&cfg.StaticDir, DefaultStaticDir)
	setDefault(&cfg.PostsDir, DefaultPostsDir)
	setDefault(&cfg.IndexTemplateFile, DefaultIndexTemplateFile)
	setDefault(&cfg.PostTemplateFile, DefaultPostTemplateFile)
	setDefault(&cfg.PagesDir, DefaultPagesDir)
	setDefault(&cfg.PageTemplateFile, DefaultPageTemplateFile)
	setDefault(&cfg.PostPath, DefaultPostPath)
	setDefault(&cfg.PagePath, DefaultPagePath)
	setDefault(&cfg.IndexPath, DefaultIndexPath)
	setDefault(&cfg.FeedPath, DefaultFeedPath)
	setDefault(&cfg.StaticConflict, string(staticmerge.PolicyFail))
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
