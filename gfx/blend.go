package gfx

import "fmt"

// Mix defines the color mixing function applied when a stacking context
// blends with its backdrop. The values match the CSS mix-blend-mode order.
type Mix uint8

const (
	// Default attribute which specifies no blending. The blending formula
	// simply selects the source color.
	MixNormal Mix = 0
	// Source color is multiplied by the destination color and replaces the
	// destination.
	MixMultiply Mix = 1
	// Multiplies the complements of the backdrop and source color values, then
	// complements the result.
	MixScreen Mix = 2
	// Multiplies or screens the colors, depending on the backdrop color value.
	MixOverlay Mix = 3
	// Selects the darker of the backdrop and source colors.
	MixDarken Mix = 4
	// Selects the lighter of the backdrop and source colors.
	MixLighten Mix = 5
	// Brightens the backdrop color to reflect the source color. Painting with
	// black produces no change.
	MixColorDodge Mix = 6
	// Darkens the backdrop color to reflect the source color. Painting with
	// white produces no change.
	MixColorBurn Mix = 7
	// Multiplies or screens the colors, depending on the source color value.
	// The effect is similar to shining a harsh spotlight on the backdrop.
	MixHardLight Mix = 8
	// Darkens or lightens the colors, depending on the source color value. The
	// effect is similar to shining a diffused spotlight on the backdrop.
	MixSoftLight Mix = 9
	// Subtracts the darker of the two constituent colors from the lighter
	// color.
	MixDifference Mix = 10
	// Produces an effect similar to that of the Difference mode but lower in
	// contrast. Painting with white inverts the backdrop color; painting with
	// black produces no change.
	MixExclusion Mix = 11
	// Creates a color with the hue of the source color and the saturation and
	// luminosity of the backdrop color.
	MixHue Mix = 12
	// Creates a color with the saturation of the source color and the hue and
	// luminosity of the backdrop color. Painting with this mode in an area of
	// the backdrop that is a pure gray (no saturation) produces no change.
	MixSaturation Mix = 13
	// Creates a color with the hue and saturation of the source color and the
	// luminosity of the backdrop color. This preserves the gray levels of the
	// backdrop and is useful for coloring monochrome images or tinting color
	// images.
	MixColor Mix = 14
	// Creates a color with the luminosity of the source color and the hue and
	// saturation of the backdrop color. This produces an inverse effect to that
	// of the Color mode.
	MixLuminosity Mix = 15
)

var mixNames = [...]string{
	MixNormal:     "normal",
	MixMultiply:   "multiply",
	MixScreen:     "screen",
	MixOverlay:    "overlay",
	MixDarken:     "darken",
	MixLighten:    "lighten",
	MixColorDodge: "color-dodge",
	MixColorBurn:  "color-burn",
	MixHardLight:  "hard-light",
	MixSoftLight:  "soft-light",
	MixDifference: "difference",
	MixExclusion:  "exclusion",
	MixHue:        "hue",
	MixSaturation: "saturation",
	MixColor:      "color",
	MixLuminosity: "luminosity",
}

func (m Mix) String() string {
	if int(m) < len(mixNames) {
		return mixNames[m]
	}
	return fmt.Sprintf("Mix(%d)", uint8(m))
}

// ParseMix maps a CSS mix-blend-mode name to its Mix value.
func ParseMix(s string) (Mix, bool) {
	for m, name := range mixNames {
		if name == s {
			return Mix(m), true
		}
	}
	return 0, false
}
