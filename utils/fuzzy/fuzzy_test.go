package fuzzy

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestRatio_Identical(t *testing.T) {
	assert.Equal(t, 100.0, Ratio("Escherichia coli", "Escherichia coli"))
	assert.Equal(t, 100.0, Ratio("", ""))
}

func TestRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Escherichia coli", "Escherichia coli K-12"},
		{"Bacillus subtilis", "bacillus subtilis"},
		{"ATCC 23448", "atcc 23448"},
	}

	for _, pair := range pairs {
		ab := Ratio(pair[0], pair[1])
		ba := Ratio(pair[1], pair[0])
		t.Logf("Ratio(%q, %q) = %f", pair[0], pair[1], ab)
		assert.Equal(t, ab, ba)
	}
}

func TestRatio_CaseAverage(t *testing.T) {
	// 大小写完全不同时，原文比较为 0，转小写比较为 100，平均为 50
	assert.Equal(t, 50.0, Ratio("ABC", "abc"))
}

func TestAbbreviateGenus(t *testing.T) {
	assert.Equal(t, "E. coli", AbbreviateGenus("Escherichia coli"))
	assert.Equal(t, "B. subtilis subsp. subtilis", AbbreviateGenus("Bacillus subtilis subsp. subtilis"))
	assert.Equal(t, "", AbbreviateGenus(""))
}

func TestFindAll_Exact(t *testing.T) {
	text := "Tyrosyl-tRNA ligase from Escherichia coli ATCC 35896 was purified."

	spans := FindAll(text, "Tyrosyl-tRNA ligase", SpanMatchThreshold, false)
	require.Equal(t, 1, len(spans))
	assert.Equal(t, "Tyrosyl-tRNA ligase", text[spans[0].Start:spans[0].End])

	spans = FindAll(text, "Escherichia coli", SpanMatchThreshold, true)
	require.Equal(t, 1, len(spans))
	assert.Equal(t, "Escherichia coli", text[spans[0].Start:spans[0].End])

	spans = FindAll(text, "ATCC 35896", SpanMatchThreshold, false)
	require.Equal(t, 1, len(spans))
	assert.Equal(t, "ATCC 35896", text[spans[0].Start:spans[0].End])
}

func TestFindAll_Abbreviation(t *testing.T) {
	text := "The enzyme from E. coli is unstable."

	// 不开启缩写匹配时找不到
	spans := FindAll(text, "Escherichia coli", SpanMatchThreshold, false)
	assert.Zero(t, len(spans))

	spans = FindAll(text, "Escherichia coli", SpanMatchThreshold, true)
	require.Equal(t, 1, len(spans))
	assert.Equal(t, "E. coli", text[spans[0].Start:spans[0].End])
}

func TestFindAll_StripPunctuation(t *testing.T) {
	text := "Purification of Tyrosyl-tRNA ligase. Further studies followed."

	spans := FindAll(text, "Tyrosyl-tRNA ligase", SpanMatchThreshold, false)
	require.Equal(t, 1, len(spans))

	// 末尾句号被剥离，span 不包含标点
	assert.Equal(t, "Tyrosyl-tRNA ligase", text[spans[0].Start:spans[0].End])
}

func TestFindAll_EmptyPattern(t *testing.T) {
	assert.Nil(t, FindAll("some text here", "", SpanMatchThreshold, false))
	assert.Nil(t, FindAll("some text here", "   ", SpanMatchThreshold, false))
	assert.Nil(t, FindAll("", "pattern", SpanMatchThreshold, false))
}

func TestFindAll_Deterministic(t *testing.T) {
	text := "Escherichia coli and Escherichia coli again."

	first := FindAll(text, "Escherichia coli", SpanMatchThreshold, true)
	second := FindAll(text, "Escherichia coli", SpanMatchThreshold, true)

	require.Equal(t, 2, len(first))
	assert.Equal(t, first, second)
}
