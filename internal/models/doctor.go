package models

import (
	"fmt"
	"time"
)

// Availability flags the weekdays a doctor takes appointments.
type Availability struct {
	Monday    bool `gorm:"not null" json:"monday"`
	Tuesday   bool `gorm:"not null" json:"tuesday"`
	Wednesday bool `gorm:"not null" json:"wednesday"`
	Thursday  bool `gorm:"not null" json:"thursday"`
	Friday    bool `gorm:"not null" json:"friday"`
	Saturday  bool `gorm:"not null" json:"saturday"`
	Sunday    bool `gorm:"not null" json:"sunday"`
}

// DefaultAvailability is Monday to Friday.
func DefaultAvailability() Availability {
	return Availability{
		Monday:    true,
		Tuesday:   true,
		Wednesday: true,
		Thursday:  true,
		Friday:    true,
	}
}

// On reports whether the doctor works on the given weekday.
func (a Availability) On(day time.Weekday) bool {
	switch day {
	case time.Monday:
		return a.Monday
	case time.Tuesday:
		return a.Tuesday
	case time.Wednesday:
		return a.Wednesday
	case time.Thursday:
		return a.Thursday
	case time.Friday:
		return a.Friday
	case time.Saturday:
		return a.Saturday
	case time.Sunday:
		return a.Sunday
	}
	return false
}

// WorkingHours is a local time-of-day window in "HH:MM" form.
type WorkingHours struct {
	Start string `gorm:"size:5;not null" json:"start"`
	End   string `gorm:"size:5;not null" json:"end"`
}

// DefaultWorkingHours is 09:00 to 17:00.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{Start: "09:00", End: "17:00"}
}

// Bounds returns the window as minutes since midnight.
func (w WorkingHours) Bounds() (start, end int, err error) {
	start, err = ParseClock(w.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err = ParseClock(w.End)
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, fmt.Errorf("working hours end %s must be after start %s", w.End, w.Start)
	}
	return start, end, nil
}

// DoctorProfile extends a doctor account with professional details
type DoctorProfile struct {
	BaseModel
	UserID          string       `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Specialization  string       `gorm:"size:100;not null;index" json:"specialization"`
	Qualification   string       `gorm:"size:255;not null" json:"qualification"`
	Experience      int          `gorm:"not null" json:"experience"`
	ConsultationFee float64      `gorm:"not null" json:"consultationFee"`
	Bio             string       `gorm:"type:text" json:"bio,omitempty"`
	Availability    Availability `gorm:"embedded;embeddedPrefix:available_" json:"availability"`
	WorkingHours    WorkingHours `gorm:"embedded;embeddedPrefix:working_hours_" json:"workingHours"`
	Rating          float64      `gorm:"not null;default:0" json:"rating"`
	TotalReviews    int          `gorm:"not null;default:0" json:"totalReviews"`
	IsVerified      bool         `gorm:"not null;default:false" json:"isVerified"`

	User *UserSanitized `gorm:"-" json:"user,omitempty"`
}

// DoctorFilter narrows doctor listings.
type DoctorFilter struct {
	// Specialization is matched as a case-insensitive substring.
	Specialization string
}
