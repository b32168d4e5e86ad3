package models

// TagRelation is the many-to-many edge between a tag and a file identity.
// The pair is unique, so re-tagging a file is a no-op.
type TagRelation struct {
	TagID    uint  `gorm:"column:tag_id;not null;uniqueIndex:uc_tag_identity,priority:1"`
	Identity int64 `gorm:"column:identity;not null;uniqueIndex:uc_tag_identity,priority:2;index:idx_relation_identity"`

	Tag Tag `gorm:"foreignKey:TagID;references:ID"`
}

func (TagRelation) TableName() string {
	return "tag_relations"
}
