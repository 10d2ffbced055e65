package docstore

import (
	"bacref-backend-controller/repository/lpsn"
	"bacref-backend-controller/repository/straininfo"
	"bacref-backend-controller/utils"
	"context"
	"encoding/json"
	"sort"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 全部写操作串行化，保证合并判断与写入之间不被并发打断
var writeLock sync.Mutex

func fromJSON(data string, schema interface{}) error {
	err := json.Unmarshal([]byte(data), schema)
	if err != nil {
		return utils.WrapErrorf(err, "json unmarshal [%#v] fail", data)
	}
	return nil
}

func upsert(record interface{}) error {
	err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(record).Error
	if err != nil {
		return utils.WrapError(err, "upsert fail")
	}
	return nil
}

func setToSortedSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for item := range set {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

////////////////////////////////////////// document //////////////////////////////////////////

func HasDocument(id uint) (bool, error) {
	var count int64

	err := db.Model(&Document{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, utils.WrapErrorf(err, "count document [%d] fail", id)
	}

	return count != 0, nil
}

func DocumentByID(id uint) (*SchemaDocument, error) {
	var record Document

	err := db.First(&record, id).Error
	if err != nil {
		return nil, utils.WrapErrorf(err, "find document [%d] fail", id)
	}

	var schema SchemaDocument
	if err := fromJSON(record.Data, &schema); err != nil {
		return nil, err
	}

	return &schema, nil
}

// SaveDocument 以给定 ID 写入或覆盖一篇文献。
func SaveDocument(id uint, schema *SchemaDocument) error {
	writeLock.Lock()
	defer writeLock.Unlock()

	record := Document{Data: schema.ToJSON()}
	record.ID = id

	return upsert(&record)
}

/*
EachDocument 分批流式遍历全部文献。fn 的两个参数一一对应。
*/
func EachDocument(batchSize int, fn func(ids []uint, docs []*SchemaDocument) error) error {
	var batchData []Document

	err := db.
		FindInBatches(&batchData, batchSize, func(tx *gorm.DB, batchNum int) error {
			ids := make([]uint, 0, len(batchData))
			docs := make([]*SchemaDocument, 0, len(batchData))

			for i := range batchData {
				var schema SchemaDocument
				if err := fromJSON(batchData[i].Data, &schema); err != nil {
					return err
				}
				ids = append(ids, batchData[i].ID)
				docs = append(docs, &schema)
			}

			return fn(ids, docs)
		}).Error
	if err != nil {
		return utils.WrapError(err, "iterate documents fail")
	}

	return nil
}

////////////////////////////////////////// enzyme //////////////////////////////////////////

func UpsertEnzyme(id uint, schema *SchemaEnzyme) error {
	writeLock.Lock()
	defer writeLock.Unlock()

	record := Enzyme{Data: schema.ToJSON()}
	record.ID = id

	return upsert(&record)
}

func EnzymeByID(id uint) (*SchemaEnzyme, error) {
	var record Enzyme

	err := db.First(&record, id).Error
	if err != nil {
		return nil, utils.WrapErrorf(err, "find enzyme [%d] fail", id)
	}

	var schema SchemaEnzyme
	if err := fromJSON(record.Data, &schema); err != nil {
		return nil, err
	}

	return &schema, nil
}

////////////////////////////////////////// bacteria //////////////////////////////////////////

func UpsertBacteria(id uint, schema *SchemaBacteria) error {
	writeLock.Lock()
	defer writeLock.Unlock()

	record := Bacteria{Data: schema.ToJSON()}
	record.ID = id

	return upsert(&record)
}

func BacteriaByID(id uint) (*SchemaBacteria, error) {
	var record Bacteria

	err := db.First(&record, id).Error
	if err != nil {
		return nil, utils.WrapErrorf(err, "find bacteria [%d] fail", id)
	}

	var schema SchemaBacteria
	if err := fromJSON(record.Data, &schema); err != nil {
		return nil, err
	}

	return &schema, nil
}

/*
BacteriaByName 查找物种名或同物异名等于 query 的细菌记录。
查不到时返回 (0, nil, nil)。
*/
func BacteriaByName(query string) (uint, *SchemaBacteria, error) {
	var matchID uint
	var match *SchemaBacteria

	var batchData []Bacteria
	err := db.
		FindInBatches(&batchData, 128, func(tx *gorm.DB, batchNum int) error {
			for i := range batchData {
				var schema SchemaBacteria
				if err := fromJSON(batchData[i].Data, &schema); err != nil {
					return err
				}

				if schema.Organism == query {
					matchID, match = batchData[i].ID, &schema
					return nil
				}
				for _, synonym := range schema.Synonyms {
					if synonym == query {
						matchID, match = batchData[i].ID, &schema
						return nil
					}
				}
			}
			return nil
		}).Error
	if err != nil {
		return 0, nil, utils.WrapErrorf(err, "find bacteria by name [%s] fail", query)
	}

	return matchID, match, nil
}

// AddBacteriaSynonyms 向记录的同物异名集合中并入新写法。
func AddBacteriaSynonyms(id uint, synonyms ...string) error {
	writeLock.Lock()
	defer writeLock.Unlock()

	return addBacteriaSynonyms(id, synonyms...)
}

// 调用方必须持有 writeLock。
func addBacteriaSynonyms(id uint, synonyms ...string) error {
	schema, err := BacteriaByID(id)
	if err != nil {
		return err
	}

	set := make(map[string]struct{}, len(schema.Synonyms)+len(synonyms))
	for _, synonym := range schema.Synonyms {
		set[synonym] = struct{}{}
	}
	for _, synonym := range synonyms {
		set[synonym] = struct{}{}
	}
	schema.Synonyms = setToSortedSlice(set)

	record := Bacteria{Data: schema.ToJSON()}
	record.ID = id

	return upsert(&record)
}

// 调用方必须持有 writeLock。
func insertBacteria(schema *SchemaBacteria) (uint, error) {
	record := Bacteria{Data: schema.ToJSON()}

	err := db.Create(&record).Error
	if err != nil {
		return 0, utils.WrapError(err, "insert bacteria fail")
	}

	return record.ID, nil
}

/*
InsertOrMergeBacteria 保证名为 query 的细菌在库中有唯一归宿，返回其记录 ID。

合并优先：已有记录（按名或同物异名命中）时把 query 并入其同物异名；
否则解析 LPSN，若其指向的属种已有父记录则并入父记录；
都没有时新建记录，同物异名带上 LPSN 登记的全部写法。

从查找到写入全程持有 writeLock：合并判断必须基于当前库状态，两次并发
插入同一个新名字只允许产生一条记录。
*/
func InsertOrMergeBacteria(resolver *lpsn.Resolver, query string) (uint, error) {
	writeLock.Lock()
	defer writeLock.Unlock()

	matchID, _, err := BacteriaByName(query)
	if err != nil {
		return 0, err
	}
	if matchID != 0 {
		if err := addBacteriaSynonyms(matchID, query); err != nil {
			return 0, err
		}
		return matchID, nil
	}

	lpsnID, ok := resolver.IDOf(query)
	if !ok {
		return insertBacteria(&SchemaBacteria{Organism: query, Synonyms: []string{query}})
	}

	parentID, parentName, hasParent := resolver.ParentOf(lpsnID)
	if !hasParent {
		// 不能回写 resolver 缓存的集合
		synonyms := make(map[string]struct{})
		for synonym := range resolver.SynonymsOfID(lpsnID) {
			synonyms[synonym] = struct{}{}
		}
		synonyms[query] = struct{}{}

		return insertBacteria(&SchemaBacteria{
			Organism: query,
			LPSNID:   &lpsnID,
			Synonyms: setToSortedSlice(synonyms),
		})
	}

	parentRecordID, _, err := BacteriaByName(parentName)
	if err != nil {
		return 0, err
	}
	if parentRecordID != 0 {
		if err := addBacteriaSynonyms(parentRecordID, query); err != nil {
			return 0, err
		}
		return parentRecordID, nil
	}

	synonyms := make(map[string]struct{})
	for synonym := range resolver.SynonymsOfID(lpsnID) {
		synonyms[synonym] = struct{}{}
	}
	for synonym := range resolver.SynonymsOfID(parentID) {
		synonyms[synonym] = struct{}{}
	}
	synonyms[query] = struct{}{}

	return insertBacteria(&SchemaBacteria{
		Organism: query,
		LPSNID:   &lpsnID,
		Synonyms: setToSortedSlice(synonyms),
	})
}

////////////////////////////////////////// strain //////////////////////////////////////////

func HasStrain(id uint) (bool, error) {
	var count int64

	err := db.Model(&Strain{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, utils.WrapErrorf(err, "count strain [%d] fail", id)
	}

	return count != 0, nil
}

func UpsertStrain(id uint, schema *SchemaStrain) error {
	writeLock.Lock()
	defer writeLock.Unlock()

	record := Strain{Data: schema.ToJSON()}
	record.ID = id

	return upsert(&record)
}

func StrainByID(id uint) (*SchemaStrain, error) {
	var record Strain

	err := db.First(&record, id).Error
	if err != nil {
		return nil, utils.WrapErrorf(err, "find strain [%d] fail", id)
	}

	var schema SchemaStrain
	if err := fromJSON(record.Data, &schema); err != nil {
		return nil, err
	}

	return &schema, nil
}

/*
StrainByDesignation 查找标识、培养物编号或分类名等于 query 的菌株记录。
查不到时返回 (0, nil, nil)。
*/
func StrainByDesignation(query string) (uint, *SchemaStrain, error) {
	var matchID uint
	var match *SchemaStrain

	var batchData []Strain
	err := db.
		FindInBatches(&batchData, 128, func(tx *gorm.DB, batchNum int) error {
			for i := range batchData {
				var schema SchemaStrain
				if err := fromJSON(batchData[i].Data, &schema); err != nil {
					return err
				}

				if strainMatches(&schema, query) {
					matchID, match = batchData[i].ID, &schema
					return nil
				}
			}
			return nil
		}).Error
	if err != nil {
		return 0, nil, utils.WrapErrorf(err, "find strain by designation [%s] fail", query)
	}

	return matchID, match, nil
}

func strainMatches(schema *SchemaStrain, query string) bool {
	if schema.Taxon != nil && schema.Taxon.Name == query {
		return true
	}
	for _, culture := range schema.Cultures {
		if culture.StrainNumber == query {
			return true
		}
	}
	for _, designation := range schema.Designations {
		if designation == query {
			return true
		}
	}
	return false
}

// AddStrainDesignations 向记录的标识集合中并入新写法。
func AddStrainDesignations(id uint, designations ...string) error {
	writeLock.Lock()
	defer writeLock.Unlock()

	return addStrainDesignations(id, designations...)
}

// 调用方必须持有 writeLock。
func addStrainDesignations(id uint, designations ...string) error {
	schema, err := StrainByID(id)
	if err != nil {
		return err
	}

	set := make(map[string]struct{}, len(schema.Designations)+len(designations))
	for _, designation := range schema.Designations {
		set[designation] = struct{}{}
	}
	for _, designation := range designations {
		set[designation] = struct{}{}
	}
	schema.Designations = setToSortedSlice(set)

	record := Strain{Data: schema.ToJSON()}
	record.ID = id

	return upsert(&record)
}

/*
strainBySIID 按 StrainInfo 菌株编号查找记录，查不到时返回 (0, nil, nil)。
*/
func strainBySIID(siid int) (uint, *SchemaStrain, error) {
	var matchID uint
	var match *SchemaStrain

	var batchData []Strain
	err := db.
		FindInBatches(&batchData, 128, func(tx *gorm.DB, batchNum int) error {
			for i := range batchData {
				var schema SchemaStrain
				if err := fromJSON(batchData[i].Data, &schema); err != nil {
					return err
				}

				if schema.SIID != nil && *schema.SIID == siid {
					matchID, match = batchData[i].ID, &schema
					return nil
				}
			}
			return nil
		}).Error
	if err != nil {
		return 0, nil, utils.WrapErrorf(err, "find strain by siid [%d] fail", siid)
	}

	return matchID, match, nil
}

/*
InsertOrMergeStrain 保证一组菌株标识在库中有唯一归宿，返回其记录 ID。

合并优先：任一标识命中已有记录时把全部标识并入该记录；否则规范化标识后
查 StrainInfo。记录一律使用本库的自增 ID，溯源成功时把 StrainInfo 菌株
编号记在 siid 字段上；同一 siid 已有记录时并入该记录而不是新建。

从查找到写入全程持有 writeLock：合并判断必须基于当前库状态，两次并发
插入同一组新标识只允许产生一条记录。外部溯源请求也因此被串行化。
*/
func InsertOrMergeStrain(ctx context.Context, adapter *straininfo.Adapter, designations []string) (uint, error) {
	writeLock.Lock()
	defer writeLock.Unlock()

	for _, designation := range designations {
		matchID, _, err := StrainByDesignation(designation)
		if err != nil {
			return 0, err
		}
		if matchID != 0 {
			if err := addStrainDesignations(matchID, designations...); err != nil {
				return 0, err
			}
			return matchID, nil
		}
	}

	normalized := straininfo.Normalize(designations)

	ids, err := adapter.IDsFor(ctx, normalized)
	if err != nil {
		return 0, err
	}

	if len(ids) == 0 {
		return insertStrain(&SchemaStrain{
			Cultures:     []SchemaCulture{},
			Designations: setToSortedSlice(normalized),
		})
	}

	records, err := adapter.MetadataFor(ctx, ids)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return insertStrain(&SchemaStrain{
			Cultures:     []SchemaCulture{},
			Designations: setToSortedSlice(normalized),
		})
	}

	record := records[0]

	set := make(map[string]struct{}, len(record.Designations)+len(normalized))
	for _, designation := range record.Designations {
		set[designation] = struct{}{}
	}
	for designation := range normalized {
		set[designation] = struct{}{}
	}

	existingID, _, err := strainBySIID(record.SIID)
	if err != nil {
		return 0, err
	}
	if existingID != 0 {
		if err := addStrainDesignations(existingID, setToSortedSlice(set)...); err != nil {
			return 0, err
		}
		return existingID, nil
	}

	siid := record.SIID
	schema := SchemaStrain{
		SIID:         &siid,
		Cultures:     []SchemaCulture{},
		Designations: setToSortedSlice(set),
	}
	if record.Taxon != nil {
		schema.Taxon = &SchemaTaxon{
			Name: record.Taxon.Name,
			LPSN: record.Taxon.LPSN,
			NCBI: record.Taxon.NCBI,
		}
	}
	for _, culture := range record.Cultures {
		schema.Cultures = append(schema.Cultures, SchemaCulture{
			SIID:         culture.SIID,
			StrainNumber: culture.StrainNumber,
		})
	}

	return insertStrain(&schema)
}

// InsertStrain 新建一条菌株记录并返回自增 ID。
func InsertStrain(schema *SchemaStrain) (uint, error) {
	writeLock.Lock()
	defer writeLock.Unlock()

	return insertStrain(schema)
}

// 调用方必须持有 writeLock。
func insertStrain(schema *SchemaStrain) (uint, error) {
	record := Strain{Data: schema.ToJSON()}

	err := db.Create(&record).Error
	if err != nil {
		return 0, utils.WrapError(err, "insert strain fail")
	}

	return record.ID, nil
}
