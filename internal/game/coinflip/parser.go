package coinflip

import (
	"regexp"
	"strconv"
	"strings"
)

// Attack text follows a small set of templated phrasings; the parser matches
// them case-insensitively and falls back to a no-flip base-damage
// configuration when none apply.

var (
	untilTailsPattern = regexp.MustCompile(`(?i)flip a coin until you get tails`)
	fixedNPattern     = regexp.MustCompile(`(?i)flip (\d+) coins`)
	perEachPattern    = regexp.MustCompile(`(?i)flip a coin for each`)
	singlePattern     = regexp.MustCompile(`(?i)flip a coin`)
	timesDamage       = regexp.MustCompile(`(?i)(\d+) damage (?:times|for each) (?:the number of )?heads`)
	ifHeadsDamage     = regexp.MustCompile(`(?i)if heads, this attack does`)
	wordNumbers       = map[string]int{"two": 2, "three": 3, "four": 4, "five": 5}
	fixedWordPattern  = regexp.MustCompile(`(?i)flip (two|three|four|five) coins`)
)

// ParseConfiguration derives a flip configuration from attack text. Returns
// ok=false when the text requires no coin flip.
func ParseConfiguration(text string) (Configuration, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Configuration{}, false
	}

	damage := DamageStatusEffectOnly
	if timesDamage.MatchString(trimmed) || ifHeadsDamage.MatchString(trimmed) {
		damage = DamageMultiplyByHeads
	}

	if untilTailsPattern.MatchString(trimmed) {
		return Configuration{
			CountPolicy: CountUntilTails,
			Damage:      damage,
		}, true
	}
	if m := fixedNPattern.FindStringSubmatch(trimmed); m != nil {
		count, err := strconv.Atoi(m[1])
		if err == nil && count > 0 {
			return Configuration{
				CountPolicy: CountFixed,
				Count:       count,
				Damage:      damage,
			}, true
		}
	}
	if m := fixedWordPattern.FindStringSubmatch(trimmed); m != nil {
		if count, ok := wordNumbers[strings.ToLower(m[1])]; ok {
			return Configuration{
				CountPolicy: CountFixed,
				Count:       count,
				Damage:      damage,
			}, true
		}
	}
	if perEachPattern.MatchString(trimmed) {
		// Count is resolved by the attack pipeline once the per-what
		// quantity (attached energy, benched Pokémon, ...) is known.
		return Configuration{
			CountPolicy: CountVariable,
			Damage:      damage,
		}, true
	}
	if singlePattern.MatchString(trimmed) {
		return Configuration{
			CountPolicy: CountFixed,
			Count:       1,
			Damage:      damage,
		}, true
	}
	return Configuration{}, false
}
