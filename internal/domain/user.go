package domain

import (
	"time"

	"github.com/google/uuid"
)

const MaxBioLength = 500

type ProfileKind int

const (
	ProfileNone ProfileKind = iota
	ProfileTeacher
	ProfileLearner
)

func (k ProfileKind) String() string {
	switch k {
	case ProfileTeacher:
		return "teacher"
	case ProfileLearner:
		return "learner"
	default:
		return "none"
	}
}

type TeacherData struct {
	Name       string
	Bio        string
	PictureURL string
}

type LearnerData struct {
	Name       string
	PictureURL string
}

// Profile is the role a user has taken on. At most one of Teacher and Learner
// is set, matching Kind.
type Profile struct {
	Kind    ProfileKind
	Teacher *TeacherData
	Learner *LearnerData
}

func TeacherProfile(data TeacherData) Profile {
	return Profile{Kind: ProfileTeacher, Teacher: &data}
}

func LearnerProfile(data LearnerData) Profile {
	return Profile{Kind: ProfileLearner, Learner: &data}
}

func (p Profile) AsTeacher() (*TeacherData, bool) {
	if p.Kind != ProfileTeacher || p.Teacher == nil {
		return nil, false
	}
	return p.Teacher, true
}

func (p Profile) AsLearner() (*LearnerData, bool) {
	if p.Kind != ProfileLearner || p.Learner == nil {
		return nil, false
	}
	return p.Learner, true
}

// DisplayName returns the name of whichever role is present.
func (p Profile) DisplayName() string {
	switch p.Kind {
	case ProfileTeacher:
		if p.Teacher != nil {
			return p.Teacher.Name
		}
	case ProfileLearner:
		if p.Learner != nil {
			return p.Learner.Name
		}
	}
	return ""
}

type User struct {
	ID              uuid.UUID
	Email           string
	PasswordHash    string
	ProfileComplete bool
	Profile         Profile
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsTeacher reports whether the user has a completed teacher profile.
func (u *User) IsTeacher() bool {
	_, ok := u.Profile.AsTeacher()
	return ok && u.ProfileComplete
}

// IsLearner reports whether the user has a completed learner profile.
func (u *User) IsLearner() bool {
	_, ok := u.Profile.AsLearner()
	return ok && u.ProfileComplete
}
