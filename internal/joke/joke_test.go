package joke

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("Programming")
	require.NoError(t, err)
	assert.Equal(t, Programming, c)

	for _, s := range []string{"", "any", " ANY "} {
		c, err = ParseCategory(s)
		require.NoError(t, err)
		assert.Equal(t, Any, c)
	}

	_, err = ParseCategory("knock-knock")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dad-jokes")
}

func TestCategory_RankAndTitle(t *testing.T) {
	assert.Equal(t, 0, General.Rank())
	assert.Equal(t, 4, Clean.Rank())
	assert.Equal(t, -1, Category("limericks").Rank())
	assert.Equal(t, "Dad-Jokes", DadJokes.Title())
	assert.Equal(t, "any", Any.String())
}

func TestResolve(t *testing.T) {
	assert.Equal(t, Puns, Resolve(Puns))
	for i := 0; i < 50; i++ {
		assert.True(t, Resolve(Any).Valid())
	}
}

func TestPrompt_AllCategories(t *testing.T) {
	for _, c := range Categories {
		p, err := Prompt(c)
		require.NoError(t, err, c)
		assert.True(t, strings.HasSuffix(p, "without any additional commentary or explanation."))
	}
	_, err := Prompt(Any)
	assert.Error(t, err)
}

func TestCleanText(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"plain", "Why did the chicken cross the road?", "Why did the chicken cross the road?"},
		{"lead-in", "Here's a joke: I'm on a seafood diet.", "I'm on a seafood diet."},
		{"lead-in case", "sure, HERE'S A JOKE: knock knock", "knock knock"},
		{"sign-off", "Puns are fun. Hope you enjoyed it!", "Puns are fun."},
		{"blank lines", "  Line one\n\n   Line two  \n", "Line one\nLine two"},
		{"only chatter", "Here's one:   ", ""},
		{"whitespace", " \n\t ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanText(tc.in))
		})
	}
}
