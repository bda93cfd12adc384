package models

// TagMember attaches a free-form tag string to a file. A file may carry any
// number of tags; (FileID, Tag) is unique (§3, §4.4).
type TagMember struct {
	FileID FileID `gorm:"primaryKey;type:uuid" json:"file_id"`
	Tag    string `gorm:"primaryKey" json:"tag"`
}

func (TagMember) TableName() string { return "tag_members" }
