package brenda

//////////////////////////////// 源库表结构，与 BRENDA 的命名保持一致 ////////////////////////////////////

/*
Reference 对应 reference 表，一条文献引用。

	PubmedID 文献的 PubMed 编号，可能为空串；
	Path 源库内记录的全文路径。
*/
type Reference struct {
	ReferenceID uint `gorm:"primaryKey;column:reference_id"`

	Authors  string `gorm:"column:authors"`
	Title    string `gorm:"column:title"`
	Journal  string `gorm:"column:journal"`
	Volume   string `gorm:"column:volume"`
	Pages    string `gorm:"column:pages"`
	Year     int    `gorm:"column:year"`
	PubmedID string `gorm:"column:pubmed_id"`
	Path     string `gorm:"column:path"`
}

func (Reference) TableName() string {
	return "reference"
}

// Organism 对应 organism 表。
type Organism struct {
	OrganismID uint   `gorm:"primaryKey;column:organism_id"`
	Organism   string `gorm:"column:organism"`
}

func (Organism) TableName() string {
	return "organism"
}

// ECClass 对应 ec_class 表，一个 EC 酶类。
type ECClass struct {
	ECClassID       uint   `gorm:"primaryKey;column:ec_class_id"`
	ECClass         string `gorm:"column:ec_class"`
	RecommendedName string `gorm:"column:recommended_name"`
}

func (ECClass) TableName() string {
	return "ec_class"
}

// Strain 对应 protein_organism_strain 表，蛋白记录关联的菌株。
type Strain struct {
	StrainID uint   `gorm:"primaryKey;column:protein_organism_strain_id"`
	Name     string `gorm:"column:organism_strain"`
}

func (Strain) TableName() string {
	return "protein_organism_strain"
}

/*
ProteinConnect 对应 protein_connect 表，蛋白、物种与文献的连接关系。
StrainID 为空表示该记录没有落到具体菌株。
*/
type ProteinConnect struct {
	ProteinConnectID uint  `gorm:"primaryKey;column:protein_connect_id"`
	OrganismID       uint  `gorm:"column:organism_id"`
	ECClassID        uint  `gorm:"column:ec_class_id"`
	StrainID         *uint `gorm:"column:protein_organism_strain_id"`
	ReferenceID      uint  `gorm:"column:reference_id"`
}

func (ProteinConnect) TableName() string {
	return "protein_connect"
}

// Synonym 对应 synonyms 表，EC 酶类的别名。
type Synonym struct {
	SynonymsID uint   `gorm:"primaryKey;column:synonyms_id"`
	Synonyms   string `gorm:"column:synonyms"`
}

func (Synonym) TableName() string {
	return "synonyms"
}

// SynonymConnect 对应 synonyms_connect 表，别名与酶类、文献的连接关系。
type SynonymConnect struct {
	SynonymsConnectID uint `gorm:"primaryKey;column:synonyms_connect_id"`
	ECClassID         uint `gorm:"column:ec_class_id"`
	SynonymsID        uint `gorm:"column:synonyms_id"`
	ReferenceID       uint `gorm:"column:reference_id"`
}

func (SynonymConnect) TableName() string {
	return "synonyms_connect"
}
