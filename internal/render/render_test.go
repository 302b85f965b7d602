package render

import (
	"encoding/xml"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gempost/internal/entry"
	"git.home.luguber.info/inful/gempost/internal/feed"
	"git.home.luguber.info/inful/gempost/internal/location"
	"git.home.luguber.info/inful/gempost/internal/metadata"
)

const indexTemplate = `# {{ .Title }}
{{ range .Entries }}=> {{ .URL }} {{ .Published | date "2006-01-02" }} {{ .Title }}
{{ end }}`

const postTemplate = `# {{ .Entry.Title }}
{{ .Entry.Body }}
mood: {{ .Entry.Extra.mood }}
=> {{ .Feed.IndexURL }} Back to {{ .Feed.Title }}
`

func writeTemplates(t *testing.T, index, post string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	indexFile := filepath.Join(dir, "index.tmpl")
	postFile := filepath.Join(dir, "post.tmpl")
	require.NoError(t, os.WriteFile(indexFile, []byte(index), 0o600))
	require.NoError(t, os.WriteFile(postFile, []byte(post), 0o600))
	return indexFile, postFile
}

func testFeed(t *testing.T) feed.Feed {
	t.Helper()
	base, err := url.Parse("gemini://example.org/")
	require.NoError(t, err)
	expander, err := location.NewExpander(base, "/posts/{{ .year }}/{{ .slug }}.gmi")
	require.NoError(t, err)

	var extra metadata.Fields
	extra.Set("mood", metadata.String("sunny"))

	published := time.Date(2024, time.March, 5, 9, 30, 0, 0, time.UTC)
	loc, err := expander.Locate("hello", &published)
	require.NoError(t, err)

	summary := "Fish & <chips>"
	subtitle := "Notes"
	e := entry.Entry{
		Slug: "hello",
		Body: "Hello, world!",
		Metadata: metadata.EntryMetadata{
			ID:         "urn:uuid:1",
			Title:      `Tom & Jerry <3 "quotes"`,
			Updated:    published.Add(time.Hour),
			Published:  &published,
			Summary:    &summary,
			Categories: []string{"cats & dogs"},
			Extra:      extra,
		},
		Location: loc,
	}

	return feed.Build(feed.Options{
		CapsuleURL: base,
		FeedPath:   "/posts/atom.xml",
		IndexPath:  "/posts/index.gmi",
		Title:      "A <capsule> & more",
		Subtitle:   &subtitle,
		Author:     &metadata.Author{Name: "Ada"},
	}, []entry.Entry{e}, time.Now())
}

func TestRender_WritesAllOutputs(t *testing.T) {
	indexFile, postFile := writeTemplates(t, indexTemplate, postTemplate)
	public := t.TempDir()

	r, err := New(public, indexFile, postFile)
	require.NoError(t, err)

	res, err := r.Render(testFeed(t))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("posts", "index.gmi"), res.Index)
	assert.Equal(t, filepath.Join("posts", "atom.xml"), res.Feed)
	assert.Equal(t, []string{filepath.Join("posts", "2024", "hello.gmi")}, res.Posts)

	index, err := os.ReadFile(filepath.Join(public, res.Index))
	require.NoError(t, err)
	assert.Equal(t, "# A <capsule> & more\n=> gemini://example.org/posts/2024/hello.gmi 2024-03-05 Tom & Jerry <3 \"quotes\"\n", string(index))

	post, err := os.ReadFile(filepath.Join(public, res.Posts[0]))
	require.NoError(t, err)
	assert.Contains(t, string(post), "Hello, world!")
	assert.Contains(t, string(post), "mood: sunny")
	assert.Contains(t, string(post), "=> gemini://example.org/posts/index.gmi Back to A <capsule> & more")
}

type atomFeed struct {
	XMLName  xml.Name `xml:"http://www.w3.org/2005/Atom feed"`
	ID       string   `xml:"id"`
	Title    string   `xml:"title"`
	Subtitle string   `xml:"subtitle"`
	Updated  string   `xml:"updated"`
	Author   struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Links []struct {
		Href string `xml:"href,attr"`
		Rel  string `xml:"rel,attr"`
	} `xml:"link"`
	Entries []struct {
		ID        string `xml:"id"`
		Title     string `xml:"title"`
		Published string `xml:"published"`
		Summary   string `xml:"summary"`
		Link      struct {
			Href string `xml:"href,attr"`
		} `xml:"link"`
		Categories []struct {
			Term string `xml:"term,attr"`
		} `xml:"category"`
	} `xml:"entry"`
}

func TestRender_AtomIsWellFormedAndEscaped(t *testing.T) {
	indexFile, postFile := writeTemplates(t, indexTemplate, postTemplate)
	public := t.TempDir()
	r, err := New(public, indexFile, postFile)
	require.NoError(t, err)

	res, err := r.Render(testFeed(t))
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(public, res.Feed))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "<?xml"))
	assert.Contains(t, string(raw), "A &lt;capsule&gt; &amp; more")

	dec := xml.NewDecoder(strings.NewReader(string(raw)))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}

	var doc atomFeed
	require.NoError(t, xml.Unmarshal(raw, &doc))
	assert.Equal(t, "gemini://example.org/", doc.ID)
	assert.Equal(t, "A <capsule> & more", doc.Title)
	assert.Equal(t, "Notes", doc.Subtitle)
	assert.Equal(t, "Ada", doc.Author.Name)
	require.Len(t, doc.Links, 2)
	assert.Equal(t, "gemini://example.org/posts/atom.xml", doc.Links[0].Href)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, `Tom & Jerry <3 "quotes"`, doc.Entries[0].Title)
	assert.Equal(t, "Fish & <chips>", doc.Entries[0].Summary)
	assert.Equal(t, "2024-03-05T09:30:00Z", doc.Entries[0].Published)
	assert.Equal(t, "gemini://example.org/posts/2024/hello.gmi", doc.Entries[0].Link.Href)
	require.Len(t, doc.Entries[0].Categories, 1)
	assert.Equal(t, "cats & dogs", doc.Entries[0].Categories[0].Term)
}

func TestRender_EmptyFeed(t *testing.T) {
	indexFile, postFile := writeTemplates(t, indexTemplate, postTemplate)
	public := t.TempDir()
	r, err := New(public, indexFile, postFile)
	require.NoError(t, err)

	base, err := url.Parse("gemini://example.org")
	require.NoError(t, err)
	now := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	res, err := r.Render(feed.Build(feed.Options{CapsuleURL: base, FeedPath: "atom.xml", IndexPath: "index.gmi", Title: "Empty"}, nil, now))
	require.NoError(t, err)
	assert.Empty(t, res.Posts)

	var doc atomFeed
	raw, err := os.ReadFile(filepath.Join(public, "atom.xml"))
	require.NoError(t, err)
	require.NoError(t, xml.Unmarshal(raw, &doc))
	assert.Equal(t, "2025-01-01T00:00:00Z", doc.Updated)
	assert.Empty(t, doc.Entries)
}

func TestRender_OverwritesExistingFiles(t *testing.T) {
	indexFile, postFile := writeTemplates(t, indexTemplate, postTemplate)
	public := t.TempDir()
	stale := filepath.Join(public, "posts", "index.gmi")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o750))
	require.NoError(t, os.WriteFile(stale, []byte(strings.Repeat("stale ", 100)), 0o600))

	r, err := New(public, indexFile, postFile)
	require.NoError(t, err)
	_, err = r.Render(testFeed(t))
	require.NoError(t, err)

	got, err := os.ReadFile(stale)
	require.NoError(t, err)
	assert.NotContains(t, string(got), "stale")
}

func TestNew_TemplateErrors(t *testing.T) {
	t.Run("index syntax", func(t *testing.T) {
		indexFile, postFile := writeTemplates(t, "{{ .Title ", postTemplate)
		_, err := New(t.TempDir(), indexFile, postFile)
		var tErr *TemplateError
		require.ErrorAs(t, err, &tErr)
		assert.Equal(t, KindIndex, tErr.Kind)
		assert.Equal(t, indexFile, tErr.Path)
		assert.Contains(t, err.Error(), "index template")
	})

	t.Run("post syntax", func(t *testing.T) {
		indexFile, postFile := writeTemplates(t, indexTemplate, "{{ end }}")
		_, err := New(t.TempDir(), indexFile, postFile)
		var tErr *TemplateError
		require.ErrorAs(t, err, &tErr)
		assert.Equal(t, KindPost, tErr.Kind)
		assert.Equal(t, postFile, tErr.Path)
	})

	t.Run("missing file", func(t *testing.T) {
		_, postFile := writeTemplates(t, indexTemplate, postTemplate)
		_, err := New(t.TempDir(), filepath.Join(t.TempDir(), "nope.tmpl"), postFile)
		var tErr *TemplateError
		require.ErrorAs(t, err, &tErr)
		assert.Equal(t, KindIndex, tErr.Kind)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestRender_MissingVariable(t *testing.T) {
	indexFile, postFile := writeTemplates(t, indexTemplate, "{{ .Entry.Extra.nope }}")
	r, err := New(t.TempDir(), indexFile, postFile)
	require.NoError(t, err)

	_, err = r.Render(testFeed(t))
	var tErr *TemplateError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, KindPost, tErr.Kind)
	assert.Equal(t, postFile, tErr.Path)
}

func testPage(t *testing.T) entry.Entry {
	t.Helper()
	base, err := url.Parse("gemini://example.org/")
	require.NoError(t, err)
	expander, err := location.NewExpander(base, "/{{ .slug }}.gmi")
	require.NoError(t, err)
	loc, err := expander.Locate("about", nil)
	require.NoError(t, err)
	return entry.Entry{
		Slug: "about",
		Body: "Who writes this.",
		Metadata: metadata.EntryMetadata{
			ID:      "urn:uuid:2",
			Title:   "About",
			Updated: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
		},
		Location: loc,
	}
}

func TestRenderPages(t *testing.T) {
	indexFile, postFile := writeTemplates(t, indexTemplate, postTemplate)
	pageFile := filepath.Join(t.TempDir(), "page.tmpl")
	require.NoError(t, os.WriteFile(pageFile, []byte("# {{ .Entry.Title }}\n{{ .Entry.Body }}\n=> {{ .Feed.IndexURL }} {{ len .Feed.Entries }} posts\n"), 0o600))
	public := t.TempDir()

	r, err := New(public, indexFile, postFile)
	require.NoError(t, err)
	require.NoError(t, r.LoadPageTemplate(pageFile))

	written, err := r.RenderPages([]entry.Entry{testPage(t)}, testFeed(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"about.gmi"}, written)

	page, err := os.ReadFile(filepath.Join(public, "about.gmi"))
	require.NoError(t, err)
	assert.Equal(t, "# About\nWho writes this.\n=> gemini://example.org/posts/index.gmi 1 posts\n", string(page))
}

func TestRenderPages_Errors(t *testing.T) {
	indexFile, postFile := writeTemplates(t, indexTemplate, postTemplate)

	t.Run("no pages needs no template", func(t *testing.T) {
		r, err := New(t.TempDir(), indexFile, postFile)
		require.NoError(t, err)
		written, err := r.RenderPages(nil, testFeed(t))
		require.NoError(t, err)
		assert.Empty(t, written)
	})

	t.Run("missing template", func(t *testing.T) {
		r, err := New(t.TempDir(), indexFile, postFile)
		require.NoError(t, err)
		_, err = r.RenderPages([]entry.Entry{testPage(t)}, testFeed(t))
		var tErr *TemplateError
		require.ErrorAs(t, err, &tErr)
		assert.Equal(t, KindPage, tErr.Kind)
	})

	t.Run("syntax", func(t *testing.T) {
		r, err := New(t.TempDir(), indexFile, postFile)
		require.NoError(t, err)
		pageFile := filepath.Join(t.TempDir(), "page.tmpl")
		require.NoError(t, os.WriteFile(pageFile, []byte("{{ if }}"), 0o600))
		err = r.LoadPageTemplate(pageFile)
		var tErr *TemplateError
		require.ErrorAs(t, err, &tErr)
		assert.Equal(t, KindPage, tErr.Kind)
		assert.Equal(t, pageFile, tErr.Path)
		assert.Contains(t, err.Error(), "page template")
	})
}

func TestWriteOutput_RejectsEscapes(t *testing.T) {
	for _, rel := range []string{"", ".", "..", "../x", "/abs"} {
		err := WriteOutput(t.TempDir(), rel, nil)
		assert.ErrorIs(t, err, ErrUnsafePath, rel)
	}
}

func TestFuncs(t *testing.T) {
	html, err := markdownToHTML("*hi*")
	require.NoError(t, err)
	assert.Equal(t, "<p><em>hi</em></p>\n", html)

	escaped, err := escapeXML(`<a href="x">&</a>`)
	require.NoError(t, err)
	assert.Equal(t, "&lt;a href=&#34;x&#34;&gt;&amp;&lt;/a&gt;", escaped)

	escaped, err = escapeXML(nil)
	require.NoError(t, err)
	assert.Empty(t, escaped)

	d, err := formatDate("Jan 2, 2006", "2024-03-05T09:30:00+01:00")
	require.NoError(t, err)
	assert.Equal(t, "Mar 5, 2024", d)

	d, err = formatDate("2006", "")
	require.NoError(t, err)
	assert.Empty(t, d)

	_, err = formatDate("2006", "yesterday")
	require.Error(t, err)
}
