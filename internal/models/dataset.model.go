package models

type Dataset struct {
	BaseRecordModel
	UserID      string `gorm:"type:text;not null;index" json:"user_id"`
	Name        string `gorm:"type:text;not null"       json:"name"`
	Description string `gorm:"type:text"                json:"description"`
	ColabURL    string `gorm:"type:text;not null"       json:"colab_url"`
}

func (Dataset) TableName() string {
	return "datasets"
}
