package model

type Classroom struct {
	BaseEntity
	Name     string `gorm:"size:100;uniqueIndex" json:"name"`
	Capacity int    `json:"capacity"`

	Students []Student `gorm:"foreignKey:ClassroomID" json:"students,omitempty"`
}

func (Classroom) TableName() string { return "classrooms" }
