package insight

// markers maps every recognized leading glyph to the severity it signals.
// Info markers are stripped from the display text like the others.
var markers = map[rune]Severity{
	// blocking
	'🚨': Critical,
	'⛔': Critical,
	'🛑': Critical,
	'❌': Critical,
	'☠': Critical,

	// suspicious
	'⚠': Warning,
	'🎣': Warning,
	'🔓': Warning,
	'❗': Warning,

	// neutral or positive
	'✅': Info,
	'✔': Info,
	'🔒': Info,
	'ℹ': Info,
	'🛡': Info,
	'🔍': Info,
	'📅': Info,
}

// isModifier reports runes that only alter the presentation of a preceding
// glyph: variation selectors and the zero-width joiner.
func isModifier(r rune) bool {
	return (r >= 0xFE00 && r <= 0xFE0F) || r == 0x200D
}

// IsMarker reports whether r is a recognized marker glyph.
func IsMarker(r rune) bool {
	_, ok := markers[r]
	return ok
}
