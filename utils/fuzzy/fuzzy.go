package fuzzy

import (
	"github.com/adrg/strutil/metrics"
	"strings"
	"unicode/utf8"
)

/*
相似度阈值为包级配置，各调用方不得在调用点写死数值。

	NameMatchThreshold 判定两个名字指向同一实体的阈值；
	SpanMatchThreshold 判定文本窗口是否为某名字的一次提及的阈值。
*/
var (
	NameMatchThreshold = 90.0
	SpanMatchThreshold = 83.0
)

// python string.punctuation
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func newIndelMetric() *metrics.Levenshtein {
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = true
	lev.InsertCost = 1
	lev.DeleteCost = 1

	// 禁用单步替换之后，Levenshtein 距离即 Indel 距离
	lev.ReplaceCost = 2

	return lev
}

func indelRatio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}

	dist := newIndelMetric().Distance(a, b)

	return (1 - float64(dist)/float64(total)) * 100
}

/*
Ratio 计算 a 和 b 的归一化 Indel 相似度，取值范围 [0, 100]。

结果为两种条件下计算值的平均：按原文比较一次，转小写后再比较一次。
满足对称性：Ratio(a, b) == Ratio(b, a)。
*/
func Ratio(a, b string) float64 {
	raw := indelRatio(a, b)
	lowered := indelRatio(strings.ToLower(a), strings.ToLower(b))

	return (raw + lowered) / 2
}

// Span 标记文本中一段匹配的起止偏移（以 rune 计数，左闭右开）。
type Span struct {
	Start int
	End   int
}

/*
AbbreviateGenus 把 name 的属名部分缩写为首字母加点，如
"Escherichia coli" -> "E. coli"。
*/
func AbbreviateGenus(name string) string {
	if len(name) == 0 {
		return name
	}

	parts := strings.Fields(name)
	if len(parts) == 0 {
		return name
	}

	first, _ := utf8.DecodeRuneInString(parts[0])
	parts[0] = string(first) + "."

	return strings.Join(parts, " ")
}

/*
FindAll 在 text 中寻找 pattern 的全部模糊匹配。

text 按空白切分为 token，以与 pattern 等长的 token 窗口滑动；窗口去除首尾
标点后与 pattern 计算 Ratio，达到 threshold 即视为一次匹配。tryAbbrev 为
true 时额外尝试与 pattern 的属名缩写形式比较（用于细菌名）。

返回的偏移以 rune 计数：start 为窗口前所有 token 的长度加一个空格之和，
end 为 start 加去除标点后窗口的长度。空 pattern 直接返回 nil。
*/
func FindAll(text, pattern string, threshold float64, tryAbbrev bool) []Span {
	if len(strings.TrimSpace(pattern)) == 0 {
		return nil
	}

	if len(text) == 0 {
		return nil
	}

	words := strings.Fields(text)
	patternLen := len(strings.Fields(pattern))
	if patternLen == 0 || patternLen > len(words) {
		return nil
	}

	abbrev := ""
	if tryAbbrev {
		abbrev = AbbreviateGenus(pattern)
	}

	var matches []Span
	start := 0

	for i := 0; i+patternLen <= len(words); i++ {
		group := strings.Join(words[i:i+patternLen], " ")
		testStr := strings.Trim(group, punctuation)

		pass := Ratio(testStr, pattern) >= threshold
		if !pass && tryAbbrev {
			pass = Ratio(testStr, abbrev) >= threshold
		}

		if pass {
			matches = append(matches, Span{
				Start: start,
				End:   start + utf8.RuneCountInString(testStr),
			})
		}

		start += utf8.RuneCountInString(words[i]) + 1
	}

	return matches
}
