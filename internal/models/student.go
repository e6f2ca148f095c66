package models

import "time"

// StudentType distinguishes day scholars from hostel residents.
type StudentType string

const (
	StudentTypeDayScholar StudentType = "dayScholar"
	StudentTypeHosteler   StudentType = "hosteler"
)

// Student is an enrolled pupil. Fees and fines reference it by ID.
type Student struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	UserID           uint        `gorm:"not null;uniqueIndex" json:"userId"`
	User             *User       `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	StudentName      string      `gorm:"size:255;not null" json:"studentName"`
	FathersName      string      `gorm:"size:255;not null" json:"fathersName"`
	MothersName      string      `gorm:"size:255;not null" json:"mothersName"`
	Address          string      `gorm:"size:512;not null" json:"address"`
	Class            string      `gorm:"size:64;not null;uniqueIndex:idx_students_class_roll" json:"class"`
	RollNumber       string      `gorm:"size:64;not null;uniqueIndex:idx_students_class_roll" json:"rollNumber"`
	EnrollmentNumber string      `gorm:"size:64;not null;uniqueIndex" json:"enrollmentNumber"`
	MobileNumber     string      `gorm:"size:32;not null;uniqueIndex" json:"mobileNumber"`
	StudentType      StudentType `gorm:"size:32;not null;default:dayScholar" json:"studentType"`
	BusRoute         string      `gorm:"size:128;not null" json:"busRoute"`
	TransportOpted   bool        `gorm:"not null;default:false" json:"transportOpted"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// ClassTeacher assigns a teacher as the point of contact for one class.
type ClassTeacher struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeacherID uint      `gorm:"not null;uniqueIndex" json:"teacherId"`
	Teacher   *User     `json:"teacher,omitempty"`
	ClassName string    `gorm:"size:64;not null;uniqueIndex" json:"className"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
