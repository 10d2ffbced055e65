package export

import (
	"bacref-backend-controller/repository/docstore"
	"bacref-backend-controller/utils"
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	relationHasEnzyme  = "HasEnzyme"
	relationHasSpecies = "HasSpecies"
)

type entityKey struct {
	Label string
	ID    uint
}

type relationRow struct {
	Rel  string
	Head entityKey
	Tail entityKey
}

/*
csvBuilder 汇总全部文献的实体桶与三元组，生成实体与关系两个 CSV。

只有进入 bacteria / strain / enzyme 桶的实体才会被导出；三元组的两端
若有未导出的实体（例如还没重新归类的物种），该三元组被丢弃并记日志。
*/
type csvBuilder struct {
	// input
	logger *logrus.Logger

	// 汇总去重
	entities map[entityKey]string
	triples  map[relationRow]struct{}

	// output
	entityCSV   bytes.Buffer
	relationCSV bytes.Buffer
}

func (b *csvBuilder) buildCSV() error {
	b.entities = make(map[entityKey]string)
	b.triples = make(map[relationRow]struct{})

	err := docstore.EachDocument(64, func(ids []uint, docs []*docstore.SchemaDocument) error {
		for i := range docs {
			if err := b.collect(ids[i], docs[i]); err != nil {
				return utils.WrapErrorf(err, "collect document [%d] fail", ids[i])
			}
		}
		return nil
	})
	if err != nil {
		return utils.WrapError(err, "collect documents fail")
	}

	// 写文件头
	b.entityCSV.WriteString("label,id,name")
	b.relationCSV.WriteString("rel,head_label,head,tail_label,tail")

	// 写各个csv文件内容
	for _, key := range b.sortedEntityKeys() {
		b.entityCSV.WriteString(fmt.Sprintf("\n%#v,%d,%#v", key.Label, key.ID, b.entities[key]))
	}

	for _, row := range b.sortedRelationRows() {
		b.relationCSV.WriteString(fmt.Sprintf(
			"\n%#v,%#v,%d,%#v,%d",
			row.Rel, row.Head.Label, row.Head.ID, row.Tail.Label, row.Tail.ID,
		))
	}

	return nil
}

func (b *csvBuilder) collect(docID uint, doc *docstore.SchemaDocument) error {
	for _, id := range utils.SortedKeysOfNames(doc.Enzymes) {
		if err := b.recordEnzyme(id); err != nil {
			return err
		}
	}

	for _, id := range utils.SortedKeysOfNames(doc.Bacteria) {
		if err := b.recordBacteria(id); err != nil {
			return err
		}
	}

	for _, id := range doc.Strains {
		if err := b.recordStrain(id); err != nil {
			return err
		}
	}

	for _, triple := range doc.Relations.HasEnzyme {
		head, ok := b.headKey(doc, triple.Subject)
		if !ok {
			b.logger.Debugf("skip has-enzyme triple of document [%d]: subject [%d] not exported", docID, triple.Subject)
			continue
		}

		b.triples[relationRow{
			Rel:  relationHasEnzyme,
			Head: head,
			Tail: entityKey{Label: docstore.LabelEnzyme, ID: triple.Object},
		}] = struct{}{}
	}

	for _, triple := range doc.Relations.HasSpecies {
		head, ok := b.headKey(doc, triple.Subject)
		if !ok {
			b.logger.Debugf("skip has-species triple of document [%d]: subject [%d] not exported", docID, triple.Subject)
			continue
		}

		tail := entityKey{Label: docstore.LabelBacteria, ID: triple.Object}
		if _, ok := b.entities[tail]; !ok {
			b.logger.Debugf("skip has-species triple of document [%d]: object [%d] not exported", docID, triple.Object)
			continue
		}

		b.triples[relationRow{Rel: relationHasSpecies, Head: head, Tail: tail}] = struct{}{}
	}

	return nil
}

/*
headKey 判定三元组主语在该文献中是菌株还是细菌。
*/
func (b *csvBuilder) headKey(doc *docstore.SchemaDocument, subject uint) (entityKey, bool) {
	for _, id := range doc.Strains {
		if id == subject {
			return entityKey{Label: docstore.LabelStrain, ID: subject}, true
		}
	}

	if _, ok := doc.Bacteria[subject]; ok {
		return entityKey{Label: docstore.LabelBacteria, ID: subject}, true
	}

	return entityKey{}, false
}

func (b *csvBuilder) recordEnzyme(id uint) error {
	key := entityKey{Label: docstore.LabelEnzyme, ID: id}
	if _, ok := b.entities[key]; ok {
		return nil
	}

	schema, err := docstore.EnzymeByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b.logger.Warnf("enzyme [%d] referenced but not stored", id)
		return nil
	}
	if err != nil {
		return utils.WrapErrorf(err, "query enzyme [%d] fail", id)
	}

	name := schema.RecommendedName
	if len(name) == 0 {
		name = schema.ECClass
	}

	b.entities[key] = name
	return nil
}

func (b *csvBuilder) recordBacteria(id uint) error {
	key := entityKey{Label: docstore.LabelBacteria, ID: id}
	if _, ok := b.entities[key]; ok {
		return nil
	}

	schema, err := docstore.BacteriaByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b.logger.Warnf("bacteria [%d] referenced but not stored", id)
		return nil
	}
	if err != nil {
		return utils.WrapErrorf(err, "query bacteria [%d] fail", id)
	}

	b.entities[key] = schema.Organism
	return nil
}

func (b *csvBuilder) recordStrain(id uint) error {
	key := entityKey{Label: docstore.LabelStrain, ID: id}
	if _, ok := b.entities[key]; ok {
		return nil
	}

	schema, err := docstore.StrainByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b.logger.Warnf("strain [%d] referenced but not stored", id)
		return nil
	}
	if err != nil {
		return utils.WrapErrorf(err, "query strain [%d] fail", id)
	}

	name := ""
	if len(schema.Designations) != 0 {
		name = schema.Designations[0]
	} else if len(schema.Cultures) != 0 {
		name = schema.Cultures[0].StrainNumber
	}

	b.entities[key] = name
	return nil
}

func (b *csvBuilder) sortedEntityKeys() []entityKey {
	keys := make([]entityKey, 0, len(b.entities))
	for key := range b.entities {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Label != keys[j].Label {
			return keys[i].Label < keys[j].Label
		}
		return keys[i].ID < keys[j].ID
	})

	return keys
}

func (b *csvBuilder) sortedRelationRows() []relationRow {
	rows := make([]relationRow, 0, len(b.triples))
	for row := range b.triples {
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Rel != rows[j].Rel {
			return rows[i].Rel < rows[j].Rel
		}
		if rows[i].Head != rows[j].Head {
			if rows[i].Head.Label != rows[j].Head.Label {
				return rows[i].Head.Label < rows[j].Head.Label
			}
			return rows[i].Head.ID < rows[j].Head.ID
		}
		if rows[i].Tail.Label != rows[j].Tail.Label {
			return rows[i].Tail.Label < rows[j].Tail.Label
		}
		return rows[i].Tail.ID < rows[j].Tail.ID
	})

	return rows
}
