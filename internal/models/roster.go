package models

// Course is a course a faculty member may query attendance for.
type Course struct {
	CourseID   string `db:"course_id" json:"course_id"`
	CourseName string `db:"course_name" json:"course_name"`
}

// StudentDetails carries the denormalized roster attributes for one assigned
// student.
type StudentDetails struct {
	StudentID  string `db:"student_id" json:"student_id"`
	Name       string `db:"name" json:"name"`
	Department string `db:"department" json:"department"`
	Batch      string `db:"batch" json:"batch"`
	Semester   string `db:"semester" json:"semester"`
}
