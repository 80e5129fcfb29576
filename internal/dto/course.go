package dto

// CreateCourseRequest holds the payload for creating a course.
type CreateCourseRequest struct {
	Title      string   `json:"title" validate:"required,min=2,max=200"`
	Overview   string   `json:"overview" validate:"required,min=2,max=2000"`
	Resources  string   `json:"resources" validate:"max=5000"`
	Image      string   `json:"image"`
	Categories []string `json:"categories" validate:"omitempty,dive,max=100"`
	Rating     *float64 `json:"rating" validate:"omitempty,min=0,max=5"`
	Minute     *int     `json:"minute" validate:"omitempty,min=0"`
	Price      *float64 `json:"price" validate:"omitempty,min=0"`
	AdminID    *string  `json:"admin" validate:"omitempty,uuid"`
	Level      *string  `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	IsActive   *bool    `json:"isActive"`
}

// UpdateCourseRequest holds a partial course update.
type UpdateCourseRequest struct {
	Title      *string   `json:"title" validate:"omitempty,min=2,max=200"`
	Overview   *string   `json:"overview" validate:"omitempty,min=2,max=2000"`
	Resources  *string   `json:"resources" validate:"omitempty,max=5000"`
	Image      *string   `json:"image"`
	Categories *[]string `json:"categories" validate:"omitempty,dive,max=100"`
	Rating     *float64  `json:"rating" validate:"omitempty,min=0,max=5"`
	Minute     *int      `json:"minute" validate:"omitempty,min=0"`
	Price      *float64  `json:"price" validate:"omitempty,min=0"`
	AdminID    *string   `json:"admin" validate:"omitempty,uuid"`
	Level      *string   `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	IsActive   *bool     `json:"isActive"`
}

// CreateModuleRequest holds the payload for creating a module.
type CreateModuleRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	CourseID string `json:"courseId" validate:"required,uuid"`
}

// UpdateModuleRequest holds a partial module update.
type UpdateModuleRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	CourseID *string `json:"courseId" validate:"omitempty,uuid"`
}
