package brenda

import (
	"bacref-backend-controller/utils"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"
)

// 部分 organism / strain 名称带有 "no activity in ..." 前缀，需要剥掉并记下标记
var noActivityPattern = regexp.MustCompile(`no activity (in|by) `)

// SynonymRef 为一条别名及其在源库中被引证的文献。
type SynonymRef struct {
	Synonym     string
	ReferenceID uint
}

var synonymCache, _ = lru.New[uint, []SynonymRef](512)

/*
CleanName 去掉名称中的 "no activity (in|by) " 前缀。
第二个返回值表示名称原本是否带有该前缀。
*/
func CleanName(name string) (string, bool) {
	cleaned := noActivityPattern.ReplaceAllString(name, "")
	return cleaned, cleaned != name
}

/*
EnzymeRelation 为一条文献中的蛋白连接记录，名称已经过 CleanName 清洗。

	Strain 可能为 nil，表示该记录没有落到具体菌株；
	OrganismNoActivity / StrainNoActivity 标记清洗时是否剥掉了
	"no activity" 前缀，带该标记的参与者不产生 HasEnzyme 关系。
*/
type EnzymeRelation struct {
	Organism Organism
	EC       ECClass
	Strain   *Strain

	OrganismNoActivity bool
	StrainNoActivity   bool
}

type relationRow struct {
	OrganismID      uint
	OrganismName    string
	ECClassID       uint
	ECClass         string
	RecommendedName string
	StrainID        *uint
	StrainName      *string
}

/*
EnzymeRelations 取出一条文献中全部的蛋白连接记录及其参与实体。
*/
func EnzymeRelations(referenceID uint) ([]EnzymeRelation, error) {
	var rows []relationRow

	err := db.
		Table("protein_connect").
		Select("organism.organism_id as organism_id, " +
			"organism.organism as organism_name, " +
			"ec_class.ec_class_id as ec_class_id, " +
			"ec_class.ec_class as ec_class, " +
			"ec_class.recommended_name as recommended_name, " +
			"protein_organism_strain.protein_organism_strain_id as strain_id, " +
			"protein_organism_strain.organism_strain as strain_name").
		Joins("JOIN organism ON protein_connect.organism_id = organism.organism_id").
		Joins("JOIN ec_class ON protein_connect.ec_class_id = ec_class.ec_class_id").
		Joins("LEFT JOIN protein_organism_strain ON " +
			"protein_connect.protein_organism_strain_id = protein_organism_strain.protein_organism_strain_id").
		Where("protein_connect.reference_id = ?", referenceID).
		Scan(&rows).Error
	if err != nil {
		return nil, utils.WrapErrorf(err, "query enzyme relations of reference [%d] fail", referenceID)
	}

	relations := make([]EnzymeRelation, 0, len(rows))
	for _, row := range rows {
		organismName, organismNoActivity := CleanName(row.OrganismName)

		relation := EnzymeRelation{
			Organism: Organism{
				OrganismID: row.OrganismID,
				Organism:   organismName,
			},
			EC: ECClass{
				ECClassID:       row.ECClassID,
				ECClass:         row.ECClass,
				RecommendedName: row.RecommendedName,
			},
			OrganismNoActivity: organismNoActivity,
		}

		if row.StrainID != nil && row.StrainName != nil {
			strainName, strainNoActivity := CleanName(*row.StrainName)
			relation.Strain = &Strain{
				StrainID: *row.StrainID,
				Name:     strainName,
			}
			relation.StrainNoActivity = strainNoActivity
		}

		relations = append(relations, relation)
	}

	return relations, nil
}

/*
ECSynonyms 取出一个 EC 酶类在源库中登记的全部别名及引证文献。带 LRU 缓存。
*/
func ECSynonyms(ecClassID uint) ([]SynonymRef, error) {
	if cached, ok := synonymCache.Get(ecClassID); ok {
		return cached, nil
	}

	var synonyms []SynonymRef

	err := db.
		Table("synonyms").
		Select("synonyms.synonyms as synonym, synonyms_connect.reference_id as reference_id").
		Joins("JOIN synonyms_connect ON synonyms_connect.synonyms_id = synonyms.synonyms_id").
		Where("synonyms_connect.ec_class_id = ?", ecClassID).
		Scan(&synonyms).Error
	if err != nil {
		return nil, utils.WrapErrorf(err, "query synonyms of ec class [%d] fail", ecClassID)
	}

	synonymCache.Add(ecClassID, synonyms)

	return synonyms, nil
}

// OrganismNames 返回 organism 表中的全部物种名（去重），作为细菌参考名单的来源。
func OrganismNames() ([]string, error) {
	var names []string

	err := db.Model(&Organism{}).Distinct("organism").Order("organism").Pluck("organism", &names).Error
	if err != nil {
		return nil, utils.WrapError(err, "query organism names fail")
	}

	return names, nil
}

func CountReferences() (int64, error) {
	var count int64

	err := db.Model(&Reference{}).Count(&count).Error
	if err != nil {
		return 0, utils.WrapError(err, "count references fail")
	}

	return count, nil
}

/*
EachReference 分批流式遍历 reference 表，避免一次性载入全部文献。
*/
func EachReference(batchSize int, fn func(references []Reference) error) error {
	var batchData []Reference

	err := db.
		FindInBatches(&batchData, batchSize, func(tx *gorm.DB, batchNum int) error {
			return fn(batchData)
		}).Error
	if err != nil {
		return utils.WrapError(err, "iterate references fail")
	}

	return nil
}
