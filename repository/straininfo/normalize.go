package straininfo

import (
	"regexp"
	"strings"
)

// NRRL 菌株编号的各种书写形式，统一改写为 "NRRL B-<编号>"
var nrrlPattern = regexp.MustCompile(`^NRRL ?B[- ]?([0-9A-Za-z]+)$`)

/*
Normalize 把原始菌株标识展开成规范化的标识集合。

三条规则：
 1. "NRRL B123" / "NRRLB123" 等形式改写为 "NRRL B-123"；
 2. 去掉粘在含数字 token 尾部的型菌株标记（大小写 T 后缀）；
 3. 以 "/" 连接的复合标识拆分为独立的子标识。

返回集合为原始标识与全部派生形式的并集，原始字符串永远保留。
*/
func Normalize(designations []string) map[string]struct{} {
	out := make(map[string]struct{}, len(designations))

	for _, designation := range designations {
		out[designation] = struct{}{}

		parts := []string{designation}
		if strings.Contains(designation, "/") {
			for _, part := range strings.Split(designation, "/") {
				part = strings.TrimSpace(part)
				if len(part) != 0 {
					parts = append(parts, part)
					out[part] = struct{}{}
				}
			}
		}

		for _, part := range parts {
			if rewritten, ok := rewriteNRRL(part); ok {
				out[rewritten] = struct{}{}
			}

			if stripped, ok := stripTypeStrainMarker(part); ok {
				out[stripped] = struct{}{}
			}
		}
	}

	return out
}

func rewriteNRRL(designation string) (string, bool) {
	match := nrrlPattern.FindStringSubmatch(designation)
	if match == nil {
		return "", false
	}

	rewritten := "NRRL B-" + match[1]
	if rewritten == designation {
		return "", false
	}

	return rewritten, true
}

/*
stripTypeStrainMarker 去掉末尾 token 上紧贴的型菌株标记。仅当该 token 去掉
尾部 T/t 之后仍含数字时才视为标记，避免误伤以 t 结尾的普通词。
*/
func stripTypeStrainMarker(designation string) (string, bool) {
	tokens := strings.Fields(designation)
	if len(tokens) == 0 {
		return "", false
	}

	last := tokens[len(tokens)-1]
	if len(last) < 2 {
		return "", false
	}

	suffix := last[len(last)-1]
	if suffix != 'T' && suffix != 't' {
		return "", false
	}

	trimmed := last[:len(last)-1]
	if !containsDigit(trimmed) {
		return "", false
	}

	tokens[len(tokens)-1] = trimmed

	return strings.Join(tokens, " "), true
}

func containsDigit(s string) bool {
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			return true
		}
	}

	return false
}
