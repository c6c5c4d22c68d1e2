package ui

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomePage_EscapesTitle(t *testing.T) {
	var b strings.Builder
	err := HomePage(PageData{Title: `<Tasks & "Co">`, Schema: "extended"}).Render(context.Background(), &b)
	require.NoError(t, err)

	out := b.String()
	assert.Contains(t, out, "<title>&lt;Tasks &amp; &#34;Co&#34;&gt;</title>")
	assert.Contains(t, out, `data-schema="extended"`)
	assert.Contains(t, out, `/static/js/app.js`)
	assert.NotContains(t, out, "{{")
}
