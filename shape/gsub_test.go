package shape

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/textshaping/engine/font"
	"github.com/textshaping/engine/ot"
	"github.com/textshaping/engine/unicodedata"
)

// The builders below mirror ot/gsub_test.go's own byte-layout helpers
// (same package, unexported, so unreachable from here) to assemble real
// binary GSUB tables and parse them with the exported ot.ParseGSUB, the
// only way to obtain genuine *ot.SingleSubst/*ot.LigatureSubst values
// whose fields are otherwise unexported outside the ot package.

func buildCoverageFormat1(glyphs []ot.GlyphID) []byte {
	data := make([]byte, 4+len(glyphs)*2)
	binary.BigEndian.PutUint16(data[0:], 1)
	binary.BigEndian.PutUint16(data[2:], uint16(len(glyphs)))
	for i, g := range glyphs {
		binary.BigEndian.PutUint16(data[4+i*2:], uint16(g))
	}
	return data
}

func buildSingleSubstFormat2(coverageGlyphs []ot.GlyphID, substitutes []ot.GlyphID) []byte {
	coverage := buildCoverageFormat1(coverageGlyphs)
	headerSize := 6 + len(substitutes)*2
	subtable := make([]byte, headerSize+len(coverage))
	binary.BigEndian.PutUint16(subtable[0:], 2)
	binary.BigEndian.PutUint16(subtable[2:], uint16(headerSize))
	binary.BigEndian.PutUint16(subtable[4:], uint16(len(substitutes)))
	for i, s := range substitutes {
		binary.BigEndian.PutUint16(subtable[6+i*2:], uint16(s))
	}
	copy(subtable[headerSize:], coverage)
	return subtable
}

func buildLigature(ligGlyph ot.GlyphID, components []ot.GlyphID) []byte {
	data := make([]byte, 4+len(components)*2)
	binary.BigEndian.PutUint16(data[0:], uint16(ligGlyph))
	binary.BigEndian.PutUint16(data[2:], uint16(len(components)+1))
	for i, c := range components {
		binary.BigEndian.PutUint16(data[4+i*2:], uint16(c))
	}
	return data
}

func buildLigatureSet(ligatures [][]byte) []byte {
	headerSize := 2 + len(ligatures)*2
	totalSize := headerSize
	for _, lig := range ligatures {
		totalSize += len(lig)
	}
	data := make([]byte, totalSize)
	binary.BigEndian.PutUint16(data[0:], uint16(len(ligatures)))
	offset := headerSize
	for i, lig := range ligatures {
		binary.BigEndian.PutUint16(data[2+i*2:], uint16(offset))
		copy(data[offset:], lig)
		offset += len(lig)
	}
	return data
}

func buildLigatureSubst(coverageGlyphs []ot.GlyphID, ligatureSets [][]byte) []byte {
	coverage := buildCoverageFormat1(coverageGlyphs)
	headerSize := 6 + len(ligatureSets)*2
	totalSize := headerSize
	for _, ls := range ligatureSets {
		totalSize += len(ls)
	}
	totalSize += len(coverage)
	data := make([]byte, totalSize)
	binary.BigEndian.PutUint16(data[0:], 1)
	binary.BigEndian.PutUint16(data[4:], uint16(len(ligatureSets)))
	offset := headerSize
	for i, ls := range ligatureSets {
		binary.BigEndian.PutUint16(data[6+i*2:], uint16(offset))
		copy(data[offset:], ls)
		offset += len(ls)
	}
	binary.BigEndian.PutUint16(data[2:], uint16(offset))
	copy(data[offset:], coverage)
	return data
}

func buildGSUBLookupBytes(lookupType uint16, subtables [][]byte) []byte {
	headerSize := 6 + len(subtables)*2
	totalSize := headerSize
	for _, st := range subtables {
		totalSize += len(st)
	}
	data := make([]byte, totalSize)
	binary.BigEndian.PutUint16(data[0:], lookupType)
	binary.BigEndian.PutUint16(data[2:], 0)
	binary.BigEndian.PutUint16(data[4:], uint16(len(subtables)))
	offset := headerSize
	for i, st := range subtables {
		binary.BigEndian.PutUint16(data[6+i*2:], uint16(offset))
		copy(data[offset:], st)
		offset += len(st)
	}
	return data
}

func buildGSUBTable(lookups [][]byte) []byte {
	headerSize := 10
	scriptListSize := 2
	featureListSize := 2
	lookupListHeaderSize := 2 + len(lookups)*2
	lookupListSize := lookupListHeaderSize
	for _, l := range lookups {
		lookupListSize += len(l)
	}
	totalSize := headerSize + scriptListSize + featureListSize + lookupListSize
	data := make([]byte, totalSize)

	binary.BigEndian.PutUint16(data[0:], 1)
	binary.BigEndian.PutUint16(data[2:], 0)
	binary.BigEndian.PutUint16(data[4:], uint16(headerSize))
	binary.BigEndian.PutUint16(data[6:], uint16(headerSize+scriptListSize))
	binary.BigEndian.PutUint16(data[8:], uint16(headerSize+scriptListSize+featureListSize))

	binary.BigEndian.PutUint16(data[headerSize:], 0)
	binary.BigEndian.PutUint16(data[headerSize+scriptListSize:], 0)

	lookupListOff := headerSize + scriptListSize + featureListSize
	binary.BigEndian.PutUint16(data[lookupListOff:], uint16(len(lookups)))
	offset := lookupListHeaderSize
	for i, l := range lookups {
		binary.BigEndian.PutUint16(data[lookupListOff+2+i*2:], uint16(offset))
		copy(data[lookupListOff+offset:], l)
		offset += len(l)
	}
	return data
}

// wrapGSUBLookupAsFont builds a fakeLookup around lookupIndex of a real
// parsed *ot.GSUB, so ApplySubstitution's Raw()-based dispatch sees
// genuine *ot.SingleSubst/*ot.LigatureSubst values.
func wrapGSUBLookupAsFont(gsub *ot.GSUB, lookupIndex int, typ font.LookupType, tags []font.Tag) font.Lookup {
	l := gsub.GetLookup(lookupIndex)
	var subtables []font.Subtable
	for _, st := range l.Subtables() {
		subtables = append(subtables, fakeSubtable{raw: st})
	}
	return &fakeLookup{idx: lookupIndex, typ: typ, subtables: subtables, features: tags}
}

var ligaTag = font.MakeTag('l', 'i', 'g', 'a')

func TestApplySubstitutionLigature(t *testing.T) {
	// f=10, i=11, fi-ligature=12
	ligBytes := buildLigature(12, []ot.GlyphID{11})
	setBytes := buildLigatureSet([][]byte{ligBytes})
	substBytes := buildLigatureSubst([]ot.GlyphID{10}, [][]byte{setBytes})
	lookupBytes := buildGSUBLookupBytes(4, [][]byte{substBytes}) // type 4 = Ligature
	table := buildGSUBTable([][]byte{lookupBytes})

	gsub, err := ot.ParseGSUB(table)
	require.NoError(t, err)

	adapter := newFakeAdapter()
	adapter.cmap['f'] = 10
	adapter.cmap['i'] = 11
	adapter.defaultFeatures[ligaTag] = true
	adapter.gsubLookups = []font.Lookup{wrapGSUBLookupAsFont(gsub, 0, font.GSUBLigature, []font.Tag{ligaTag})}

	opts := LayoutOptions{PrimaryFont: adapter}
	data := &unicodedata.Default{}

	analysis, err := Analyze([]rune("fi"), opts, data)
	require.NoError(t, err)
	require.NoError(t, ApplySubstitution(analysis, adapter, opts))

	buf := analysis.GlyphStream
	require.Equal(t, 1, buf.Len())
	info := buf.Get(0)
	require.Equal(t, uint32(12), uint32(info.Codepoint))
	require.True(t, info.IsLigated())
	require.EqualValues(t, 2, info.CodepointCount)
	require.EqualValues(t, 1, info.LigatureID)
	require.EqualValues(t, uint32(0), info.Cluster)
}

func TestApplySubstitutionSingle(t *testing.T) {
	// a=20 -> smallcaps A=21, under a feature the caller enables explicitly.
	substBytes := buildSingleSubstFormat2([]ot.GlyphID{20}, []ot.GlyphID{21})
	lookupBytes := buildGSUBLookupBytes(1, [][]byte{substBytes}) // type 1 = Single
	table := buildGSUBTable([][]byte{lookupBytes})

	gsub, err := ot.ParseGSUB(table)
	require.NoError(t, err)

	smcpTag := font.MakeTag('s', 'm', 'c', 'p')
	adapter := newFakeAdapter()
	adapter.cmap['a'] = 20
	adapter.gsubLookups = []font.Lookup{wrapGSUBLookupAsFont(gsub, 0, font.GSUBSingle, []font.Tag{smcpTag})}

	opts := LayoutOptions{PrimaryFont: adapter, EnabledFeatures: []font.Tag{smcpTag}}
	data := &unicodedata.Default{}

	analysis, err := Analyze([]rune("a"), opts, data)
	require.NoError(t, err)
	require.NoError(t, ApplySubstitution(analysis, adapter, opts))

	info := analysis.GlyphStream.Get(0)
	require.Equal(t, uint32(21), uint32(info.Codepoint))
	require.True(t, info.IsSubstituted())
}

func TestApplySubstitutionFeatureDisabledNoop(t *testing.T) {
	substBytes := buildSingleSubstFormat2([]ot.GlyphID{20}, []ot.GlyphID{21})
	lookupBytes := buildGSUBLookupBytes(1, [][]byte{substBytes})
	table := buildGSUBTable([][]byte{lookupBytes})

	gsub, err := ot.ParseGSUB(table)
	require.NoError(t, err)

	smcpTag := font.MakeTag('s', 'm', 'c', 'p')
	adapter := newFakeAdapter()
	adapter.cmap['a'] = 20
	adapter.gsubLookups = []font.Lookup{wrapGSUBLookupAsFont(gsub, 0, font.GSUBSingle, []font.Tag{smcpTag})}

	// smcp is off by default and not in EnabledFeatures.
	opts := LayoutOptions{PrimaryFont: adapter}
	data := &unicodedata.Default{}

	analysis, err := Analyze([]rune("a"), opts, data)
	require.NoError(t, err)
	require.NoError(t, ApplySubstitution(analysis, adapter, opts))

	info := analysis.GlyphStream.Get(0)
	require.Equal(t, uint32(20), uint32(info.Codepoint))
	require.False(t, info.IsSubstituted())
}
