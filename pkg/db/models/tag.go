package models

// Tag is an entry of the tag vocabulary. Names are unique and case-sensitive.
type Tag struct {
	ID   uint   `gorm:"column:tag_id;primaryKey;autoIncrement"`
	Name string `gorm:"column:tag_name;type:varchar(255);not null;uniqueIndex"`
}

func (Tag) TableName() string {
	return "file_tags"
}

// TagUsage is a vocabulary entry together with the number of files it is
// attached to.
type TagUsage struct {
	Name  string
	Files int64
}
