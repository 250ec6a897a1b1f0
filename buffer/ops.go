package buffer

// MarkAttachment reports the attachment chain offset recorded on a mark's
// position record by mark-to-base/mark-to-ligature/mark-to-mark attachment.
// A value of zero means the slot is not attached to a preceding glyph.
func (p *GlyphPosition) MarkAttachment() int16 { return p.AttachChain() }

// CursiveAttachment reports the cursive attachment type recorded on a
// glyph's position record by GPOS CursivePos.
func (p *GlyphPosition) CursiveAttachment() uint8 { return p.AttachType() }

// Append adds a single codepoint slot to the end of the buffer, the public,
// spec-facing spelling of Add for callers outside the shaping pipeline.
func (b *GlyphStream) Append(codepoint Codepoint, cluster uint32) {
	b.Add(codepoint, cluster)
	if b.len > 0 {
		b.info[b.len-1].CodepointCount = 1
	}
}

// Get returns a copy of the slot at index i of the current (input) buffer.
func (b *GlyphStream) Get(i int) Slot {
	return b.info[i]
}

// Set overwrites the slot at index i of the current (input) buffer.
func (b *GlyphStream) Set(i int, info Slot) {
	b.info[i] = info
}

// QueryByOffset returns the index of the first slot whose Cluster equals the
// given source text offset, and false if no such slot exists. Clusters are
// monotonic in a freshly-guessed buffer, so this is a binary search; once
// substitutions have run clusters are still non-decreasing in logical order,
// so the search remains valid.
func (b *GlyphStream) QueryByOffset(offset uint32) (int, bool) {
	lo, hi := 0, b.len
	for lo < hi {
		mid := (lo + hi) / 2
		if b.info[mid].Cluster < offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < b.len && b.info[lo].Cluster == offset {
		return lo, true
	}
	return 0, false
}

// Move relocates the slot at index from to index to, shifting the slots in
// between by one position. It is the primitive behind reordering passes such
// as the Devanagari pre-base-matra reorder (SPEC_FULL.md's reduced complex-
// script scope), which needs to slide a single slot across a short span
// without disturbing cluster or position data for the slots it passes over.
func (b *GlyphStream) Move(from, to int) {
	if from == to || from < 0 || to < 0 || from >= b.len || to >= b.len {
		return
	}
	moved := b.info[from]
	movedPos := b.pos[from]
	if from < to {
		copy(b.info[from:to], b.info[from+1:to+1])
		copy(b.pos[from:to], b.pos[from+1:to+1])
	} else {
		copy(b.info[to+1:from+1], b.info[to:from])
		copy(b.pos[to+1:from+1], b.pos[to:from])
	}
	b.info[to] = moved
	b.pos[to] = movedPos
}

// StableSort reorders the slots in [start, end) using the teacher's
// insertion-based Sort, the public spelling used by shaping passes outside
// this package (contextual lookup reordering, cursive-chain fixups).
func (b *GlyphStream) StableSort(start, end int, less func(a, b *Slot) bool) {
	b.Sort(start, end, less)
}

// Replace1To1 swaps the glyph at the current output position for
// replacement, preserving cluster, mask and ligature bookkeeping. It is the
// GSUB SingleSubst primitive: exactly one glyph consumed, exactly one glyph
// produced.
func (b *GlyphStream) Replace1To1(replacement Codepoint) bool {
	cur := b.Cur(0)
	cur.SetSubstituted()
	return b.ReplaceGlyph(replacement)
}

// Ligate consumes the numComponents glyphs starting at the current output
// position and produces a single glyph, the spec-facing spelling of the
// ligature-cohort bookkeeping the teacher's GSUBContext.Ligate performs
// (see ot/gsub.go). ligatureGlyph is the substituted glyph id; component
// codepoint counts are summed onto the ligature's representative slot so
// CodepointCount stays a true conservation-law tally across ligation.
func (b *GlyphStream) Ligate(ligatureGlyph Codepoint, numComponents int, ligID uint32) bool {
	if numComponents <= 0 || b.idx+numComponents > b.len {
		return false
	}
	var total uint16
	for i := 0; i < numComponents; i++ {
		c := b.info[b.idx+i].CodepointCount
		if c == 0 {
			c = 1
		}
		total += c
	}
	if !b.ReplaceGlyphs(numComponents, []Codepoint{ligatureGlyph}) {
		return false
	}
	out := &b.outInfo[b.outLen-1]
	out.setLigated()
	out.CodepointCount = total
	out.LigatureID = ligID
	out.LigatureComponent = 0
	return true
}

// Decompose expands the current glyph into the given sequence, the public
// spelling of GSUB MultipleSubst's 1:N case. Each produced slot shares the
// source cluster, is marked as multiplied, has its CodepointCount reset to
// 1 and records its position in the sequence as LigatureComponent.
func (b *GlyphStream) Decompose(glyphs []Codepoint) bool {
	if len(glyphs) == 0 {
		// Per the zero-length multiple-substitution open question, the
		// slot is dropped rather than replaced.
		b.DeleteGlyph()
		return true
	}
	if !b.ReplaceGlyphs(1, glyphs) {
		return false
	}
	for i := len(glyphs); i > 0; i-- {
		out := &b.outInfo[b.outLen-i]
		out.setMultiplied()
		out.CodepointCount = 1
		out.LigatureComponent = int16(len(glyphs) - i)
	}
	return true
}

// Remove deletes the current input glyph, merging its cluster into
// its neighbors. This is the primitive behind the zero-length substitution
// tolerance (SPEC_FULL.md / spec.md §9 open question): rather than emitting
// an empty glyph, the slot disappears and the text around it absorbs its
// cluster.
func (b *GlyphStream) Remove() {
	b.DeleteGlyph()
}
