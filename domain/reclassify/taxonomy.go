package reclassify

import (
	"bacref-backend-controller/repository/lpsn"
	"bacref-backend-controller/utils/fuzzy"
	"bufio"
	"io"
	"strings"
)

var bacteriaNames []string

func loadBacteriaNames(reader io.Reader) error {
	var names []string

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if len(name) != 0 {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	bacteriaNames = names
	return nil
}

/*
IsBacteria 判断一个物种名是否为细菌：与参考名单中任一名称的相似度
超过 fuzzy.NameMatchThreshold 即认定。
*/
func IsBacteria(name string) bool {
	for _, reference := range bacteriaNames {
		if fuzzy.Ratio(name, reference) > fuzzy.NameMatchThreshold {
			return true
		}
	}
	return false
}

/*
IsBacterialStrain 判断一个名称是否为带菌株标识的复合名：
能从中切出菌株 token 即认定。
*/
func IsBacterialStrain(name string) bool {
	return lpsn.NameParts(name).Strain != ""
}

/*
Decompose 把复合名拆成物种部分与菌株标识。

物种部分按 LPSN 的书写习惯重新拼装（带 subsp. 中缀）；菌株标识为去掉中缀
后从菌株 token 起的剩余尾部。切不出物种部分时物种为空串，整个名称作为
菌株标识返回。
*/
func Decompose(name string) (species string, strain string) {
	parts := lpsn.NameParts(name)

	if parts.Strain == "" {
		return "", name
	}

	if parts.Genus == "" || parts.Species == "" {
		return "", name
	}

	species = parts.Genus + " " + parts.Species
	if parts.Subspecies != "" {
		species += " subsp. " + parts.Subspecies
	}

	strain = strainTail(name, parts.Strain)
	if strain == "" {
		strain = name
	}

	return species, strain
}

// strainTail 取去掉中缀后的名称中从菌株 token 起的尾部
func strainTail(name string, strainToken string) string {
	cleaned := name
	for _, infix := range lpsn.Infixes() {
		cleaned = strings.ReplaceAll(cleaned, infix, "")
	}

	tokens := strings.Fields(cleaned)
	for i, token := range tokens {
		if token == strainToken {
			return strings.Join(tokens[i:], " ")
		}
	}

	return ""
}
