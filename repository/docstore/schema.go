package docstore

import (
	"encoding/json"
	"sort"
)

// 实体标注使用的 D3O 本体类别
const (
	LabelEnzyme   = "d3o:Enzyme"
	LabelBacteria = "d3o:Bacteria"
	LabelStrain   = "d3o:Strain"
)

func toJSON(schema interface{}) string {
	bytes, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

/*
EntityMarkup 标注摘要中的一个实体区间。偏移以 rune 计，区间左闭右开。

	EntityID 指向对应实体表中的记录；
	Label 为 D3O 本体类别。
*/
type EntityMarkup struct {
	Start    int    `json:"start"`
	End      int    `json:"end"`
	EntityID uint   `json:"entity_id"`
	Label    string `json:"label"`
}

/*
SortEntityMarkups 按 (Start, End, Label, EntityID) 排序，保证序列化结果可复现。
*/
func SortEntityMarkups(markups []EntityMarkup) {
	sort.Slice(markups, func(i, j int) bool {
		a, b := markups[i], markups[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.EntityID < b.EntityID
	})
}

// RelationTriple 为一条关系三元组，主宾均为实体表中的记录 ID。
type RelationTriple struct {
	Subject uint `json:"subject"`
	Object  uint `json:"object"`
}

/*
SchemaRelations 为文献中登记的关系集合。

	HasEnzyme 主语（物种或菌株）表达宾语酶；
	HasSpecies 主语菌株属于宾语物种。
*/
type SchemaRelations struct {
	HasEnzyme  []RelationTriple `json:"HasEnzyme,omitempty"`
	HasSpecies []RelationTriple `json:"HasSpecies,omitempty"`
}

/*
SchemaDocument 为 Document.Data 的 JSON schema。

	前八个字段来自源库的文献引用；
	PMCID / PMCOpen / DOI 由 NCBI 补充，查不到时为 null；
	Abstract 为取回的摘要文本；
	Enzymes / Bacteria 以实体 ID 为键，值为该实体在本文献中出现过的名称；
	Strains 为菌株实体的 ID 列表；
	OtherOrganisms 为尚未归类的非细菌物种提及；
	EntitySpans 为摘要上的实体标注。
*/
type SchemaDocument struct {
	Authors  string `json:"authors"`
	Title    string `json:"title"`
	Journal  string `json:"journal"`
	Volume   string `json:"volume"`
	Pages    string `json:"pages"`
	Year     int    `json:"year"`
	PubmedID string `json:"pubmed_id"`
	Path     string `json:"path"`

	PMCID   *string `json:"pmc_id"`
	PMCOpen *bool   `json:"pmc_open"`
	DOI     *string `json:"doi"`

	Abstract string `json:"abstract,omitempty"`

	Created  string `json:"created"`
	Modified string `json:"modified,omitempty"`
	Reviewed string `json:"reviewed,omitempty"`

	Enzymes        map[uint][]string `json:"enzymes"`
	Bacteria       map[uint][]string `json:"bacteria"`
	Strains        []uint            `json:"strains"`
	OtherOrganisms map[uint]string   `json:"other_organisms"`

	Relations SchemaRelations `json:"relations"`

	EntitySpans []EntityMarkup `json:"entity_spans,omitempty"`
}

func (d *SchemaDocument) ToJSON() string {
	return toJSON(d)
}

// SchemaEnzyme 为 Enzyme.Data 的 JSON schema。
type SchemaEnzyme struct {
	ECClass         string   `json:"ec_class"`
	RecommendedName string   `json:"recommended_name"`
	Synonyms        []string `json:"synonyms"`
}

func (e *SchemaEnzyme) ToJSON() string {
	return toJSON(e)
}

/*
SchemaBacteria 为 Bacteria.Data 的 JSON schema。

	LPSNID 为对应的 LPSN 记录号，解析不到时为 null；
	Synonyms 包含 LPSN 同物异名与文中出现过的其它写法。
*/
type SchemaBacteria struct {
	Organism string   `json:"organism"`
	LPSNID   *int     `json:"lpsn_id"`
	Synonyms []string `json:"synonyms"`
}

func (b *SchemaBacteria) ToJSON() string {
	return toJSON(b)
}

// SchemaTaxon 为菌株关联的分类信息。
type SchemaTaxon struct {
	Name string `json:"name"`
	LPSN *int   `json:"lpsn"`
	NCBI *int   `json:"ncbi"`
}

// SchemaCulture 为菌株在某保藏中心的培养物记录。
type SchemaCulture struct {
	SIID         int    `json:"id"`
	StrainNumber string `json:"strain_number"`
}

/*
SchemaStrain 为 Strain.Data 的 JSON schema。

	SIID 为 StrainInfo 登记号，溯源失败时为 null；
	Taxon 为 null 表示 StrainInfo 没有该菌株的分类信息，或者溯源失败；
	Designations 包含规范化后的全部标识写法。
*/
type SchemaStrain struct {
	SIID         *int            `json:"siid"`
	Taxon        *SchemaTaxon    `json:"taxon"`
	Cultures     []SchemaCulture `json:"cultures"`
	Designations []string        `json:"designations"`
}

func (s *SchemaStrain) ToJSON() string {
	return toJSON(s)
}
