package docstore

import (
	"gorm.io/gorm"
)

//////////////////////////////// 文献库表结构，每表一列 JSON 主体 ////////////////////////////////////

/*
Document 记录一篇文献及其关联实体。ID 与源库的 reference_id 对齐。

	Data 为 SchemaDocument 的 JSON 主体。
*/
type Document struct {
	gorm.Model
	Data string `gorm:"type:json not null"`
}

/*
Enzyme 记录一个 EC 酶类。ID 与源库的 ec_class_id 对齐。

	Data 为 SchemaEnzyme 的 JSON 主体。
*/
type Enzyme struct {
	gorm.Model
	Data string `gorm:"type:json not null"`
}

/*
Bacteria 记录一个规范化的细菌物种。源库来源的记录 ID 与 organism_id 对齐，
重分类新建的记录使用自增 ID。

	Data 为 SchemaBacteria 的 JSON 主体。
*/
type Bacteria struct {
	gorm.Model
	Data string `gorm:"type:json not null"`
}

/*
Strain 记录一个规范化的菌株。记录 ID 始终使用自增 ID，StrainInfo 溯源
成功的记录在 JSON 主体的 siid 字段登记其 StrainInfo 编号。

	Data 为 SchemaStrain 的 JSON 主体。
*/
type Strain struct {
	gorm.Model
	Data string `gorm:"type:json not null"`
}

//////////////////////////////// 任务信息，记录批处理的进度 ////////////////////////////////////

/*
CurationTask 描述一次批量预标注任务。

	Name 任务名；
	Email 任务结束后通知的邮箱。
*/
type CurationTask struct {
	gorm.Model

	Name  string
	Email string

	Items []CurationTaskItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// CurationTaskItem 描述任务中单篇文献的处理状态。
type CurationTaskItem struct {
	gorm.Model

	Status uint `gorm:"comment:DOING=1,DONE=2,FAIL=3"`

	DocumentID     uint
	CurationTaskID uint
}
