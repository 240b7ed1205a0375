package joke

import "fmt"

const promptSuffix = "\n\nPlease provide just the joke text without any additional commentary or explanation."

var prompts = map[Category]string{
	General: `Generate a clean, family-friendly joke that would be appropriate for all audiences.
The joke should be clever, witty, and make people smile. Avoid any offensive content,
controversial topics, or inappropriate language. Keep it light-hearted and fun.`,

	Programming: `Generate a programming or computer science related joke that developers would appreciate.
The joke can reference coding concepts, programming languages, software development practices,
debugging, or tech culture. Make it clever and relatable to people in the tech industry.
Keep it clean and professional.`,

	DadJokes: `Generate a classic dad joke - the kind that makes people groan and laugh at the same time.
It should be a simple, punny, wholesome joke with a predictable but amusing punchline.
Think of the type of joke a father might tell at a family dinner that gets eye rolls
but secret smiles. Keep it clean and family-friendly.`,

	Puns: `Generate a clever pun-based joke that plays with words, double meanings, or similar sounds.
The humor should come from wordplay, clever linguistic twists, or unexpected word associations.
Make it witty and clever, the kind that makes people appreciate the creativity of language.
Keep it clean and appropriate for all audiences.`,

	Clean: `Generate a wholesome, clean joke that is completely appropriate for children and families.
Avoid any adult themes, innuendo, or potentially offensive content. The joke should be
innocent, sweet, and the kind you'd feel comfortable sharing with anyone.
Focus on simple, cheerful humor that brings joy.`,
}

// Prompt renders the generation prompt for a concrete category.
func Prompt(c Category) (string, error) {
	p, ok := prompts[c]
	if !ok {
		return "", fmt.Errorf("no prompt for category %q", c.String())
	}
	return p + promptSuffix, nil
}
