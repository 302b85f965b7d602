package commands

import (
	"errors"
	"fmt"

	ferrors "git.home.luguber.info/inful/gempost/internal/foundation/errors"
	"git.home.luguber.info/inful/gempost/internal/scaffold"
)

// NewCmd implements the 'new' command.
type NewCmd struct {
	Slug  string `arg:"" optional:"" help:"Slug of the post; derived from --title when omitted"`
	Title string `short:"t" help:"Title of the post"`
}

func (n *NewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	return createDraft(cfg.PostsDir, "post", n.Slug, n.Title)
}

// NewPageCmd implements the 'new-page' command.
type NewPageCmd struct {
	Slug  string `arg:"" optional:"" help:"Slug of the page; derived from --title when omitted"`
	Title string `short:"t" help:"Title of the page"`
}

func (n *NewPageCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	return createDraft(cfg.PagesDir, "page", n.Slug, n.Title)
}

// createDraft scaffolds a draft entry in dir. kind only shapes messages.
func createDraft(dir, kind, slug, title string) error {
	created, err := scaffold.New(dir, scaffold.Options{Slug: slug, Title: title})
	switch {
	case err == nil:
	case errors.Is(err, scaffold.ErrAlreadyExists):
		if slug == "" {
			slug = scaffold.Slugify(title)
		}
		return ferrors.AlreadyExistsError("there is already a "+kind+" with this slug").
			WithCause(err).
			WithContext("slug", slug).
			Build()
	case errors.Is(err, scaffold.ErrInvalidSlug):
		return ferrors.ValidationError("cannot name the new " + kind).WithCause(err).Build()
	default:
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed creating new "+kind).Build()
	}

	fmt.Printf("Created %s\nCreated %s\n", created.BodyPath, created.MetadataPath)
	return nil
}
