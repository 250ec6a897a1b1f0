package buffer

// Slot is one element of a GlyphStream.
//
// Before shaping, Codepoint contains a Unicode codepoint.
// After shaping, Codepoint contains a glyph ID.
//
// The Mask field contains feature flags during shaping and
// glyph flags (GlyphFlagUnsafeToBreak, etc.) after shaping.
//
// CodepointCount, RunRef, LigatureID and LigatureComponent are the
// provenance a slot carries across substitution: how many source
// codepoints it now stands for, which bidi/script run produced it, and
// (for ligated output) which cohort and component position it occupies.
// They are real fields, not packed bits, so a long ligature or a
// many-run document never wraps a counter.
//
// The remaining internal fields (glyphProps, unicodeProps) classify the
// slot for lookup skip filters and complex-script shaping; they are
// packed the way HarfBuzz packs var1/var2 and should not be accessed
// directly.
type Slot struct {
	// Codepoint is either a Unicode codepoint (before shaping)
	// or a glyph ID (after shaping).
	Codepoint Codepoint

	// Mask contains feature flags during shaping.
	// After shaping, the lower bits contain GlyphFlags.
	Mask Mask

	// Cluster is the index of the character in the original text that
	// corresponds to this glyph (the slot's source offset). Multiple
	// slots can share the same cluster value.
	Cluster uint32

	// CodepointCount is the number of original codepoints this slot now
	// represents. A freshly appended slot carries 1; ligation sums the
	// counts of every component it consumes; decomposition resets each
	// produced slot back to 1.
	CodepointCount uint16

	// RunRef identifies the bidi/script run (font, size, style) this
	// slot belongs to, independent of Cluster, which tracks source text
	// offset rather than run identity.
	RunRef uint32

	// LigatureID is the ligation cohort identifier shared by every slot
	// produced by, or surviving as a component of, one ligature
	// substitution. Zero means the slot has never taken part in one.
	LigatureID uint32

	// LigatureComponent is this slot's position within its ligature
	// cohort's original decomposition, or -1 when the slot is not part
	// of a ligature.
	LigatureComponent int16

	// Internal fields - var1 and var2 in HarfBuzz.
	// These carry classification state used during shaping:
	// - glyph properties (from GDEF)
	// - Unicode properties, syllable information
	var1 uint32
	var2 uint32
}

// GlyphFlags returns the glyph flags from the mask.
func (g *Slot) GlyphFlags() GlyphFlags {
	return GlyphFlags(g.Mask) & GlyphFlagDefined
}

// --- Internal property accessors ---
// These mirror HarfBuzz's internal glyph property system.

// Glyph properties stored in var1 (lower 16 bits)
const (
	glyphPropsBase        uint16 = 1 << 0
	glyphPropsLigature    uint16 = 1 << 1
	glyphPropsMark        uint16 = 1 << 2
	glyphPropsComponent   uint16 = 1 << 3
	glyphPropsSubstituted uint16 = 1 << 4
	glyphPropsLigated     uint16 = 1 << 5
	glyphPropsMultiplied  uint16 = 1 << 6
)

// Unicode properties stored in var2
const (
	unicodePropGeneralCategory uint32 = 0x001F // 5 bits
	unicodePropModCombClass    uint32 = 0xFF00 // 8 bits at offset 8
)

// glyphProps returns the glyph properties.
func (g *Slot) glyphProps() uint16 {
	return uint16(g.var1)
}

// setGlyphProps sets the glyph properties.
func (g *Slot) setGlyphProps(props uint16) {
	g.var1 = (g.var1 & 0xFFFF0000) | uint32(props)
}

// unicodeProps returns the unicode properties.
func (g *Slot) unicodeProps() uint32 {
	return g.var2
}

// setUnicodeProps sets the unicode properties.
func (g *Slot) setUnicodeProps(props uint32) {
	g.var2 = props
}

// IsBase returns true if this is a base glyph.
func (g *Slot) IsBase() bool {
	return g.glyphProps()&glyphPropsBase != 0
}

// IsLigature returns true if this glyph is the result of a ligature substitution.
func (g *Slot) IsLigature() bool {
	return g.glyphProps()&glyphPropsLigature != 0
}

// IsMark returns true if this is a mark (combining) glyph.
func (g *Slot) IsMark() bool {
	return g.glyphProps()&glyphPropsMark != 0
}

// IsComponent returns true if this is a component of a ligature.
func (g *Slot) IsComponent() bool {
	return g.glyphProps()&glyphPropsComponent != 0
}

// IsSubstituted returns true if this glyph was substituted by GSUB.
func (g *Slot) IsSubstituted() bool {
	return g.glyphProps()&glyphPropsSubstituted != 0
}

// IsLigated returns true if this glyph was ligated.
func (g *Slot) IsLigated() bool {
	return g.glyphProps()&glyphPropsLigated != 0
}

// IsMultiplied returns true if this glyph was multiplied (expanded from one to many).
func (g *Slot) IsMultiplied() bool {
	return g.glyphProps()&glyphPropsMultiplied != 0
}

// setBase marks this as a base glyph.
func (g *Slot) setBase() {
	g.setGlyphProps(g.glyphProps() | glyphPropsBase)
}

// setMark marks this as a mark glyph.
func (g *Slot) setMark() {
	g.setGlyphProps(g.glyphProps() | glyphPropsMark)
}

// SetSubstituted marks this glyph as substituted.
func (g *Slot) SetSubstituted() {
	g.setGlyphProps(g.glyphProps() | glyphPropsSubstituted)
}

// setLigated marks this glyph as ligated.
func (g *Slot) setLigated() {
	g.setGlyphProps(g.glyphProps() | glyphPropsLigated)
}

// setMultiplied marks this glyph as multiplied.
func (g *Slot) setMultiplied() {
	g.setGlyphProps(g.glyphProps() | glyphPropsMultiplied)
}

// syllable returns the syllable index (for complex scripts).
func (g *Slot) syllable() uint8 {
	return uint8(g.var2 >> 24)
}

// setSyllable sets the syllable index.
func (g *Slot) setSyllable(s uint8) {
	g.var2 = (g.var2 & 0x00FFFFFF) | (uint32(s) << 24)
}

// GlyphPosition holds positioning information for a glyph.
type GlyphPosition struct {
	// XAdvance is how much the line advances horizontally after this glyph.
	XAdvance Position

	// YAdvance is how much the line advances vertically after this glyph.
	YAdvance Position

	// XOffset is the horizontal offset from the current position.
	XOffset Position

	// YOffset is the vertical offset from the current position.
	YOffset Position

	// Internal field for attachment information
	var_ uint32
}

// AttachType reports the cursive attachment type recorded on this
// position record by GPOS CursivePos.
func (p *GlyphPosition) AttachType() uint8 {
	return uint8(p.var_)
}

// SetAttachType sets the cursive attachment type, so positioning
// callers outside this package can record a CursivePos attachment.
func (p *GlyphPosition) SetAttachType(t uint8) {
	p.var_ = (p.var_ & 0xFFFFFF00) | uint32(t)
}

// AttachChain reports the attachment chain offset (slot index relative
// to this slot) recorded by mark-to-base/mark-to-ligature/mark-to-mark
// attachment. Zero means the slot is not attached to a preceding glyph.
func (p *GlyphPosition) AttachChain() int16 {
	return int16(p.var_ >> 16)
}

// SetAttachChain sets the attachment chain offset, so positioning
// callers outside this package can record a mark/cursive attachment.
func (p *GlyphPosition) SetAttachChain(c int16) {
	p.var_ = (p.var_ & 0x0000FFFF) | (uint32(uint16(c)) << 16)
}
