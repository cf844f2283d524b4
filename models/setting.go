package models

// Setting value types.
const (
	SettingStr  = "str"
	SettingInt  = "int"
	SettingBool = "bool"
	SettingList = "list" // comma-separated values
)

type Setting struct {
	Key   string `gorm:"column:key;primaryKey;size:100" json:"key"`
	Value string `gorm:"column:value;type:text" json:"value"`
	Type  string `gorm:"column:type;size:10;not null;default:'str'" json:"type"`
	Desc  string `gorm:"column:description;size:255" json:"desc"`
}

func (Setting) TableName() string {
	return "settings"
}
