// Package prompt builds the system and user messages for a localization
// completion call. The ordered language list written into the prompt is the
// same list the response parser derives its boundaries from; callers must
// pass the identical slice to both.
package prompt

import (
	"fmt"
	"strings"

	"github.com/unicostudio/b-ai-localization/internal/langmeta"
)

// Messages is one completion request's message pair.
type Messages struct {
	System string
	User   string
}

// Builder constructs completion messages. A non-empty Custom template
// replaces the default system message verbatim; the user message and the
// ordered-language contract with the parser are unaffected.
type Builder struct {
	Custom string
}

const defaultSystemTemplate = `You are a game localization translator expert.

You have been provided with an image description and English text from a 'Brain Test' puzzle game.
You can use the following information for localization:

    You're localizing a 'Brain Test' named children's brain teaser game that uses word play.
    Brain Test is a children's brain teaser game that is popular worldwide, known for its tricky and often unexpected brain teasers.

    IMPORTANT NOTE: DO NOT translate any character names in the text. Keep all character names as they are in English.
    Character names like Lily, Granny Amy, Uncle Bubba, etc. should remain unchanged in your translation.
    These will be replaced with the proper localized names in a separate step.

    more information about the game:

    https://play.google.com/store/apps/details?id=com.unicostudio.braintest&hl=tr

Image Description:
%s

Your task is to provide culturally-appropriate localizations of the English text in the following languages:
%s

For localization, use cultural references, idioms, and wordplay specific to each language.

These should preserve the game mechanics, humor, and puzzle elements but adapt them to feel natural
in each target language.

Format your response for each language as follows:

%s

Do not include ANY additional explanations, notes, or context in your response.
Do not include the "Localization:**" prefix or any explanation section.
Return ONLY the direct translations for each language.`

// Build creates the message pair for one source text. languageNames is the
// ordered list of lowercase language names to request.
func (b Builder) Build(description, englishText string, languageNames []string) Messages {
	titled := make([]string, len(languageNames))
	lineFormats := make([]string, len(languageNames))
	for i, name := range languageNames {
		titled[i] = langmeta.Title(name)
		lineFormats[i] = fmt.Sprintf("%s: [Translated text only]", titled[i])
	}
	languageList := strings.Join(titled, ", ")

	system := b.Custom
	if system == "" {
		system = fmt.Sprintf(defaultSystemTemplate,
			description, languageList, strings.Join(lineFormats, "\n"))
	}

	user := fmt.Sprintf(`English Text: %s

Please provide localized versions in %s that preserve the meaning, humor, and game mechanic while being culturally appropriate.`,
		englishText, languageList)

	return Messages{System: system, User: user}
}
