package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/recipepipe/core/normalize"
)

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Chocolate cake", "Chocolate cake"},
		{"named", "Mac &amp; Cheese", "Mac & Cheese"},
		{"quotes", "&quot;best&quot; &lt;ever&gt;", `"best" <ever>`},
		{"decimal", "Caf&#233; au lait", "Café au lait"},
		{"hex", "Tom&#x27;s &#x2F; Jerry&#X27;s", "Tom's / Jerry's"},
		{"whitespace", "  two\n\t words  ", "two words"},
		{"nbsp collapses", "1&nbsp;&nbsp;cup", "1 cup"},
		{"fractions", "&frac12; cup", "½ cup"},
		{"double encoded", "Salt &amp;amp; pepper", "Salt & pepper"},
		{"unknown named kept", "&bogus; stays", "&bogus; stays"},
		{"zero kept", "&#0;", "&#0;"},
		{"out of range kept", "&#x110000;", "&#x110000;"},
		{"surrogate kept", "&#xD800;", "&#xD800;"},
		{"no semicolon", "AT&T &amp rules", "AT&T &amp rules"},
		{"empty", "", ""},
	}

	for i := range tests {
		test := &tests[i]
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.want, normalize.Text(test.in))
		})
	}
}

func TestTextIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"&amp;lt;b&amp;gt;",
		"&#38;#38;amp;",
		"&amp;#x26;quot;",
		"  Ros&eacute;&#32;&#32;wine ",
		"&#x3D;&#x3d;&#61;",
		"&&amp;;",
		"plain text",
	}
	for _, in := range inputs {
		once := normalize.Text(in)
		assert.Equal(t, once, normalize.Text(once), "input %q", in)
	}
}

func TestYield(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Serves: 4", "4 servings"},
		{"4", "4 servings"},
		{"4-6", "4-6 servings"},
		{"one", "1 serving"},
		{"One", "1 serving"},
		{"1", "1 serving"},
		{"Yield: 1", "1 serving"},
		{"Servings: 8", "8 servings"},
		{"Makes 12 cookies", "12 cookies"},
		{"yields: 2 loaves", "2 loaves"},
		{"For 2", "2 servings"},
		{"  6 people ", "6 people"},
		{"", ""},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, normalize.Yield(test.in), "input %q", test.in)
	}

	assert.Equal(t, "4 servings", normalize.YieldFromNumber(4))
	assert.Equal(t, "2.5", normalize.YieldFromNumber(2.5))
}

func TestImageURL(t *testing.T) {
	t.Parallel()

	const page = "https://site.com/recipes/x"
	tests := []struct {
		name string
		ref  string
		page string
		want string
	}{
		{"relative", "photo.jpg", page, "https://site.com/recipes/photo.jpg"},
		{"rooted", "/img/a.png", page, "https://site.com/img/a.png"},
		{"absolute", "http://cdn.com/a.jpg", page, "http://cdn.com/a.jpg"},
		{"protocol relative", "//cdn.com/a.jpg", page, "https://cdn.com/a.jpg"},
		{"data uri", "data:image/png;base64,AAAA", page, "data:image/png;base64,AAAA"},
		{"placeholder", "/placeholder.svg?query=x", page, "/placeholder.svg?query=x"},
		{"root page", "a.jpg", "https://site.com", "https://site.com/a.jpg"},
		{"trailing slash page", "a.jpg", "https://site.com/recipes/", "https://site.com/recipes/a.jpg"},
		{"malformed base", "a.jpg", "::not a url", "a.jpg"},
		{"relative base", "a.jpg", "recipes/x", "a.jpg"},
		{"empty", "", page, ""},
		{"encoded space in page path", "a.jpg", "https://s.com/my%20recipes/x", "https://s.com/my%20recipes/a.jpg"},
		{"encoded slash in page path", "a.jpg", "https://s.com/a%2Fb/x", "https://s.com/a%2Fb/a.jpg"},
	}

	for i := range tests {
		test := &tests[i]
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.want, normalize.ImageURL(test.ref, test.page))
		})
	}
}

func TestDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"PT30M", "30 mins"},
		{"PT1H", "1 hr"},
		{"PT1H30M", "1 hr 30 mins"},
		{"PT2H1M", "2 hrs 1 min"},
		{"P1DT2H", "1 day 2 hrs"},
		{"P2D", "2 days"},
		{"PT45S", "45 secs"},
		{"PT1M30S", "1 min"},
		{"pt15m", "15 mins"},
		{"PT0M", ""},
		{"20 minutes", "20 minutes"},
		{"", ""},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, normalize.Duration(test.in), "input %q", test.in)
	}
}

func TestCategories(t *testing.T) {
	t.Parallel()

	got := normalize.Categories("Dinner", " dinner ", "Quick &amp; Easy", "", "Quick & Easy", "Italian")
	require.Equal(t, []string{"Dinner", "Quick & Easy", "Italian"}, got)

	assert.Empty(t, normalize.Categories())
}

func TestUnique(t *testing.T) {
	t.Parallel()

	got := normalize.Unique([]string{"1 egg", " 1  egg", "", "2 cups flour"})
	assert.Equal(t, []string{"1 egg", "2 cups flour"}, got)
}
