package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID       uuid.UUID `bun:"type:uuid,default:gen_random_uuid(),pk"`
	Email    string    `bun:",unique,notnull"`
	Password string    `bun:",notnull"` // SHA1 hex digest

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// FileType is one of folder, file or image.
type FileType string

const (
	FileTypeFolder FileType = "folder"
	FileTypeFile   FileType = "file"
	FileTypeImage  FileType = "image"
)

type File struct {
	bun.BaseModel `bun:"table:files,alias:f"`

	ID        uuid.UUID  `bun:"type:uuid,default:gen_random_uuid(),pk"`
	UserID    uuid.UUID  `bun:"type:uuid,notnull"`
	Name      string     `bun:",notnull"`
	Type      FileType   `bun:",notnull"`
	IsPublic  bool       `bun:",notnull,default:false"`
	ParentID  *uuid.UUID `bun:"type:uuid"` // nil at the root
	LocalPath string     `bun:",nullzero"`

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}
