package metadata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullSidecar = `id: urn:uuid:8f0e1c1e-1111-4a4a-9c9c-123456789abc
title: Hello, capsule
updated: 2024-03-06T10:00:00Z
published: "2024-03-05T09:30:00+01:00"
summary: First post
author:
  name: Ada
  email: ada@example.org
rights: CC-BY-4.0
lang: en
categories: [meta, gemini]
mood: cheerful
series:
  name: intro
  part: 1
tags_extra: [1, 2.5, true, null]
`

func TestParse_FullSchema(t *testing.T) {
	m, err := Parse([]byte(fullSidecar), "posts/hello.yaml")
	require.NoError(t, err)

	assert.Equal(t, "urn:uuid:8f0e1c1e-1111-4a4a-9c9c-123456789abc", m.ID)
	assert.Equal(t, "Hello, capsule", m.Title)
	assert.True(t, m.Updated.Equal(time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)))
	require.NotNil(t, m.Published)
	assert.True(t, m.Published.Equal(time.Date(2024, 3, 5, 8, 30, 0, 0, time.UTC)))
	require.NotNil(t, m.Summary)
	assert.Equal(t, "First post", *m.Summary)
	require.NotNil(t, m.Author)
	assert.Equal(t, "Ada", m.Author.Name)
	require.NotNil(t, m.Author.Email)
	assert.Equal(t, "ada@example.org", *m.Author.Email)
	assert.Nil(t, m.Author.URI)
	assert.Equal(t, []string{"meta", "gemini"}, m.Categories)
	assert.False(t, m.Draft)

	assert.Equal(t, []string{"mood", "series", "tags_extra"}, m.Extra.Keys())
	mood, ok := m.Extra.Get("mood")
	require.True(t, ok)
	assert.Equal(t, KindString, mood.Kind())
	assert.Equal(t, "cheerful", mood.Str())

	series, _ := m.Extra.Get("series")
	require.Equal(t, KindMap, series.Kind())
	assert.Equal(t, []string{"name", "part"}, series.Fields().Keys())
	part, _ := series.Fields().Get("part")
	assert.Equal(t, int64(1), part.IntValue())

	tags, _ := m.Extra.Get("tags_extra")
	assert.Equal(t, []any{int64(1), 2.5, true, nil}, tags.Interface())
}

func TestParse_Defaults(t *testing.T) {
	m, err := Parse([]byte("id: x\ntitle: T\nupdated: 2024-01-01T00:00:00Z\n"), "a.yaml")
	require.NoError(t, err)
	assert.False(t, m.Draft)
	assert.Nil(t, m.Published)
	assert.Empty(t, m.Categories)
	assert.NotNil(t, m.Categories)
	assert.Equal(t, 0, m.Extra.Len())
	assert.True(t, m.SortTime().Equal(m.Updated))
}

func TestParse_Draft(t *testing.T) {
	m, err := Parse([]byte("id: x\ntitle: T\nupdated: 2024-01-01T00:00:00Z\ndraft: true\n"), "a.yaml")
	require.NoError(t, err)
	assert.True(t, m.Draft)
}

func TestParse_ReservedKeysNeverPassThrough(t *testing.T) {
	m, err := Parse([]byte("id: x\ntitle: T\nupdated: 2024-01-01T00:00:00Z\nextra_variables: {a: 1}\nb: 2\n"), "a.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, m.Extra.Keys())
}

func TestParse_MalformedUpdated(t *testing.T) {
	_, err := Parse([]byte("id: x\ntitle: T\nupdated: \"not-a-date\"\n"), "posts/bad.yaml")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidMetadata)
	require.ErrorIs(t, err, ErrInvalidTimestamp)
	assert.Contains(t, err.Error(), "posts/bad.yaml")
	assert.Contains(t, err.Error(), ExampleTimestamp)
	assert.Contains(t, err.Error(), "`updated`")
}

func TestParse_MalformedPublished(t *testing.T) {
	_, err := Parse([]byte("id: x\ntitle: T\nupdated: 2024-01-01T00:00:00Z\npublished: 2024-01-01\n"), "p.yaml")
	require.ErrorIs(t, err, ErrInvalidTimestamp)
	assert.Contains(t, err.Error(), "`published`")
}

func TestParse_TimestampWithoutOffsetRejected(t *testing.T) {
	_, err := Parse([]byte("id: x\ntitle: T\nupdated: 2024-01-01T00:00:00\n"), "p.yaml")
	require.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestParse_MissingRequired(t *testing.T) {
	cases := map[string]string{
		"id":      "title: T\nupdated: 2024-01-01T00:00:00Z\n",
		"title":   "id: x\nupdated: 2024-01-01T00:00:00Z\n",
		"updated": "id: x\ntitle: T\n",
	}
	for field, doc := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := Parse([]byte(doc), "m.yaml")
			require.ErrorIs(t, err, ErrMissingField)
			assert.Contains(t, err.Error(), "`"+field+"`")
		})
	}
}

func TestParse_AuthorWithoutName(t *testing.T) {
	_, err := Parse([]byte("id: x\ntitle: T\nupdated: 2024-01-01T00:00:00Z\nauthor: {email: a@b.c}\n"), "m.yaml")
	require.ErrorIs(t, err, ErrMissingField)
}

func TestParse_NotAMapping(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":  "",
		"list":   "- a\n- b\n",
		"scalar": "hello\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc), "m.yaml")
			require.ErrorIs(t, err, ErrInvalidMetadata)
		})
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse([]byte("id: [unterminated\n"), "m.yaml")
	require.ErrorIs(t, err, ErrInvalidMetadata)
	assert.Contains(t, err.Error(), "m.yaml")
}

func TestParse_WrongType(t *testing.T) {
	_, err := Parse([]byte("id: x\ntitle: T\nupdated: 2024-01-01T00:00:00Z\ndraft: maybe\n"), "m.yaml")
	require.ErrorIs(t, err, ErrInvalidMetadata)
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id: x\ntitle: T\nupdated: 2024-01-01T00:00:00Z\n"), 0o600))

	m, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "x", m.ID)

	_, err = Read(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
