package prompt

import (
	"fmt"
	"strings"

	"github.com/iboss21/Rapper-Toon-Sheet/internal/domain"
)

// Template is the structured text payload sent to an image generation
// provider. Building it is deterministic: identical options and nickname
// always produce byte-identical output.
type Template struct {
	SystemPrompt   string
	UserPrompt     string
	NegativePrompt string
}

// DefaultNickname is used when the request carries no usable nickname.
const DefaultNickname = "CHARACTER"

// MaxNicknameLen caps the nickname after sanitization.
const MaxNicknameLen = 30

var styleDescriptions = map[string]string{
	"cartoon_realism":  "High quality stylized cartoon realism for an animated rap music video. Cinematic lighting, ultra-detailed face, expressive eyes, clean linework, soft shading, subtle film grain.",
	"anime_ish":        "Anime-inspired character design with expressive features, dynamic shading, and vibrant colors. Detailed line art with cel-shaded style.",
	"comic_ink":        "Bold comic book style with strong ink lines, dramatic shadows, and halftone textures. Dynamic comic book illustration aesthetic.",
	"clean_cell_shade": "Clean cell-shaded style with flat colors, crisp edges, and minimal gradients. Modern vector art aesthetic.",
}

var backgroundDescriptions = map[string]string{
	"neon_city_blur":    "blurred neon city night background with purple and blue tones",
	"plain_studio_grey": "plain neutral grey studio background",
	"transparent":       "transparent or white background for easy cutout",
}

const systemPrompt = `You are an expert character designer creating reference sheets for animation and music videos.
Focus on maintaining facial identity consistency and professional character design standards.`

const negativePrompt = `face mismatch, different identity, different person, extra people, multiple characters,
deformed hands, bad anatomy, blurry text, misspelled nickname, watermark, logos, signatures,
NSFW, nudity, sexual content, explicit content, violence, gore, weapons, drugs,
uncanny valley, plastic skin, distorted features, inconsistent character`

// Build composes the prompt template for the given options and nickname.
// Unrecognized style or background keys fall back to the default presets.
func Build(opts domain.GenerateOptions, nickname string) Template {
	styleDesc, ok := styleDescriptions[opts.StylePreset]
	if !ok {
		styleDesc = styleDescriptions["cartoon_realism"]
	}
	bgDesc, ok := backgroundDescriptions[opts.Background]
	if !ok {
		bgDesc = backgroundDescriptions["neon_city_blur"]
	}
	layoutDesc := "Single comprehensive poster layout"
	if opts.Layout == "two_posters" {
		layoutDesc = "Split into two separate poster compositions"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `TASK: Create a "Character Reference Sheet" poster from the uploaded photo(s).

STYLE:
%s
Keep the person's facial identity strongly recognizable from the reference photo(s).
Do NOT change gender or age drastically.
No plastic-looking skin, no uncanny face changes.

OUTPUT LAYOUT (%s):
- Title at top: "%s" in bold graffiti/hip-hop lettering
- Sections:`, styleDesc, layoutDesc, nickname)

	if opts.IncludeTurnaround {
		b.WriteString(`
  1) Head turnarounds: front, 3/4, side view
  2) Full body turnarounds: front, side, back view`)
	} else {
		b.WriteString(`
  1) Front headshot with detailed facial features
  2) Full body front view`)
	}

	if opts.IncludeActionPoses {
		b.WriteString(`
  3) Action poses: (A) holding keys / tossing keys (B) sitting in car interior pose`)
	}

	fmt.Fprintf(&b, `
- Background: %s
- Add small notes: "consistent character design", "front/side/back", etc

CLOTHING:
Use modern luxury streetwear consistent with underground rap aesthetic.
If the user photo shows a distinctive clothing item (bag, watch, jewelry), keep it as a signature accessory.

CAMERA / ART DIRECTION:
Cinematic, sharp character silhouettes, consistent proportions, no face drift between views.

NICKNAME: "%s"

Return exactly 1 high-resolution poster image (1024x1792px or similar portrait format).`, bgDesc, nickname)

	return Template{
		SystemPrompt:   systemPrompt,
		UserPrompt:     b.String(),
		NegativePrompt: negativePrompt,
	}
}
