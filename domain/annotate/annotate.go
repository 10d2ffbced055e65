package annotate

import (
	"bacref-backend-controller/repository/docstore"
	"bacref-backend-controller/utils"
	"bacref-backend-controller/utils/fuzzy"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Setting struct {
	Logger *logrus.Logger
}

var globalSetting Setting

func Init(setting *Setting) {
	globalSetting = *setting
}

/*
Annotate 在文献摘要上标注其关联实体的全部近似出现。

摘要为空时原样返回。产生的标注与已有标注做并集，重复标注不会累积，
结果按 (start, end, label, entity) 排序后写回 doc。
返回值表示 doc 是否被改动。
*/
func Annotate(doc *docstore.SchemaDocument) (bool, error) {
	return annotate(&globalSetting, doc)
}

func annotate(setting *Setting, doc *docstore.SchemaDocument) (bool, error) {
	if len(doc.Abstract) == 0 {
		return false, nil
	}

	a := docAnnotator{
		setting: setting,
		doc:     doc,
	}

	if err := a.produce(); err != nil {
		return false, utils.WrapError(err, "annotate fail")
	}

	before := len(doc.EntitySpans)

	spanSet := make(map[docstore.EntityMarkup]struct{}, before+len(a.spans))
	for _, span := range doc.EntitySpans {
		spanSet[span] = struct{}{}
	}
	for _, span := range a.spans {
		spanSet[span] = struct{}{}
	}

	merged := make([]docstore.EntityMarkup, 0, len(spanSet))
	for span := range spanSet {
		merged = append(merged, span)
	}
	docstore.SortEntityMarkups(merged)

	if len(merged) == before {
		return false, nil
	}

	doc.EntitySpans = merged
	doc.Modified = time.Now().UTC().Format(time.RFC3339)

	return true, nil
}

type docAnnotator struct {
	// input
	setting *Setting
	doc     *docstore.SchemaDocument

	// output
	spans []docstore.EntityMarkup
}

func (a *docAnnotator) produce() error {
	if err := a.markEnzymes(); err != nil {
		return utils.WrapError(err, "mark enzymes fail")
	}

	if err := a.markBacteria(); err != nil {
		return utils.WrapError(err, "mark bacteria fail")
	}

	if err := a.markStrains(); err != nil {
		return utils.WrapError(err, "mark strains fail")
	}

	return nil
}

func (a *docAnnotator) markEnzymes() error {
	for _, id := range utils.SortedKeysOfNames(a.doc.Enzymes) {
		schema, err := docstore.EnzymeByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				a.setting.Logger.Warnf("enzyme [%d] referenced but not stored", id)
				continue
			}
			return err
		}

		names := append([]string{schema.RecommendedName}, schema.Synonyms...)
		a.mark(id, docstore.LabelEnzyme, names, false)
	}

	return nil
}

func (a *docAnnotator) markBacteria() error {
	for _, id := range utils.SortedKeysOfNames(a.doc.Bacteria) {
		schema, err := docstore.BacteriaByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				a.setting.Logger.Warnf("bacteria [%d] referenced but not stored", id)
				continue
			}
			return err
		}

		names := append([]string{schema.Organism}, schema.Synonyms...)
		a.mark(id, docstore.LabelBacteria, names, true)
	}

	return nil
}

func (a *docAnnotator) markStrains() error {
	for _, id := range a.doc.Strains {
		schema, err := docstore.StrainByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				a.setting.Logger.Warnf("strain [%d] referenced but not stored", id)
				continue
			}
			return err
		}

		names := make([]string, 0, len(schema.Designations)+len(schema.Cultures))
		names = append(names, schema.Designations...)
		for _, culture := range schema.Cultures {
			names = append(names, culture.StrainNumber)
		}

		a.mark(id, docstore.LabelStrain, names, false)
	}

	return nil
}

func (a *docAnnotator) mark(entityID uint, label string, names []string, tryAbbrev bool) {
	for _, name := range names {
		for _, span := range fuzzy.FindAll(a.doc.Abstract, name, fuzzy.SpanMatchThreshold, tryAbbrev) {
			a.spans = append(a.spans, docstore.EntityMarkup{
				Start:    span.Start,
				End:      span.End,
				EntityID: entityID,
				Label:    label,
			})
		}
	}
}
