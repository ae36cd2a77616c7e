package frontpage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnwatch/hnwatch/internal/frontpage"
)

const testBaseURL = "https://news.ycombinator.com/"

// frontPageFixture carries three story rows in page order: an external
// story, a self-hosted Ask HN with a relative link, and a row with a
// non-numeric id that must be skipped.
const frontPageFixture = `<html><body><table>
<tr class='athing' id='100'>
  <td class="title"><span class="titleline">
    <a href="https://example.com/articles/deep-dive">A deep dive</a>
  </span></td>
</tr>
<tr class='athing' id='101'>
  <td class="title"><span class="titleline">
    <a href="item?id=101">Ask HN: Anything?</a>
  </span></td>
</tr>
<tr class='athing' id='not-a-number'>
  <td class="title"><span class="titleline">
    <a href="https://example.com/skipped">Skipped</a>
  </span></td>
</tr>
</table></body></html>`

func newParser(t *testing.T) *frontpage.Parser {
	t.Helper()

	parser, err := frontpage.NewParser(testBaseURL)
	require.NoError(t, err)

	return parser
}

func TestParseFrontPage(t *testing.T) {
	parser := newParser(t)

	stories := parser.Parse([]byte(frontPageFixture))

	require.Len(t, stories, 2)

	assert.Equal(t, int64(100), stories[0].ID)
	assert.Equal(t, "A deep dive", stories[0].Title)
	assert.Equal(t, "https://example.com/articles/deep-dive", stories[0].URL)
	assert.Equal(t, "https://news.ycombinator.com/item?id=100", stories[0].CommentsURL)

	// Relative story links resolve against the base URL.
	assert.Equal(t, int64(101), stories[1].ID)
	assert.Equal(t, "https://news.ycombinator.com/item?id=101", stories[1].URL)
	assert.Equal(t, "https://news.ycombinator.com/item?id=101", stories[1].CommentsURL)
}

func TestParsePreservesPageOrder(t *testing.T) {
	parser := newParser(t)

	const page = `<table>
<tr class='athing' id='3'><td><span class="titleline"><a href="https://c.com/">c</a></span></td></tr>
<tr class='athing' id='1'><td><span class="titleline"><a href="https://a.com/">a</a></span></td></tr>
<tr class='athing' id='2'><td><span class="titleline"><a href="https://b.com/">b</a></span></td></tr>
</table>`

	stories := parser.Parse([]byte(page))

	require.Len(t, stories, 3)
	assert.Equal(t, int64(3), stories[0].ID)
	assert.Equal(t, int64(1), stories[1].ID)
	assert.Equal(t, int64(2), stories[2].ID)
}

func TestParseLegacyStorylinkMarkup(t *testing.T) {
	parser := newParser(t)

	const page = `<table>
<tr class='athing' id='77'>
  <td class="title"><a href="https://old.example.com/post" class="storylink">Old markup</a></td>
</tr>
</table>`

	stories := parser.Parse([]byte(page))

	require.Len(t, stories, 1)
	assert.Equal(t, int64(77), stories[0].ID)
	assert.Equal(t, "https://old.example.com/post", stories[0].URL)
}

func TestParseMalformedPage(t *testing.T) {
	parser := newParser(t)

	assert.Empty(t, parser.Parse(nil))
	assert.Empty(t, parser.Parse([]byte("")))
	assert.Empty(t, parser.Parse([]byte("plain text, no markup")))
	assert.Empty(t, parser.Parse([]byte("<html><body><p>no stories</p></body></html>")))
}

func TestParseSkipsRowsWithoutLinks(t *testing.T) {
	parser := newParser(t)

	const page = `<table>
<tr class='athing' id='50'><td>no anchor here</td></tr>
<tr class='athing' id='51'><td><span class="titleline"><a href="https://ok.com/">ok</a></span></td></tr>
</table>`

	stories := parser.Parse([]byte(page))

	require.Len(t, stories, 1)
	assert.Equal(t, int64(51), stories[0].ID)
}

func TestNewParserRejectsRelativeBase(t *testing.T) {
	_, err := frontpage.NewParser("not-a-url")
	assert.Error(t, err)
}
