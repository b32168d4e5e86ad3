package models

// FileRecord holds the note and last known path for one inode identity.
// A row may exist without a note, tagging creates note-less rows on demand.
type FileRecord struct {
	Identity  int64   `gorm:"column:identity;primaryKey;autoIncrement:false"`
	KnownPath *string `gorm:"column:known_path;type:text"`
	Note      *string `gorm:"column:note;type:text"`

	// Relations owns the tag_relations.identity foreign key.
	Relations []TagRelation `gorm:"foreignKey:Identity;references:Identity"`
}

func (FileRecord) TableName() string {
	return "file_notes"
}

// IdentityColumn converts an inode into its stored form. SQLite integers are
// signed, so the bits are kept and the sign is reinterpreted.
func IdentityColumn(inode uint64) int64 {
	return int64(inode)
}

// Inode converts a stored identity back into the inode it was created from.
func (f FileRecord) Inode() uint64 {
	return uint64(f.Identity)
}
