package domain

import (
	"regexp"
	"time"
)

// User is the durable account record. PasswordHash is internal-only and never
// serialized to clients.
type User struct {
	ID            string
	Phone         string
	PasswordHash  string
	Nickname      string
	Email         string
	Bio           string
	Plan          string
	ReviewCount   int
	JoinDate      time.Time
	Notifications Notifications
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Notifications holds per-user notification preferences.
type Notifications struct {
	EmailNotif   bool `json:"emailNotif"`
	SMSNotif     bool `json:"smsNotif"`
	WeeklyReport bool `json:"weeklyReport"`
	RiskAlert    bool `json:"riskAlert"`
}

// DefaultNotifications are the preferences assigned to new accounts.
func DefaultNotifications() Notifications {
	return Notifications{EmailNotif: true, SMSNotif: false, WeeklyReport: true, RiskAlert: true}
}

// PublicUser is the client-facing view of a User.
type PublicUser struct {
	ID            string        `json:"id"`
	Phone         string        `json:"phone"`
	Nickname      string        `json:"nickname"`
	Email         string        `json:"email"`
	Bio           string        `json:"bio"`
	Plan          string        `json:"plan"`
	ReviewCount   int           `json:"review_count"`
	JoinDate      time.Time     `json:"join_date"`
	Notifications Notifications `json:"notifications"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	HasPassword   bool          `json:"has_password"`
}

// Public strips credentials from the record.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:            u.ID,
		Phone:         u.Phone,
		Nickname:      u.Nickname,
		Email:         u.Email,
		Bio:           u.Bio,
		Plan:          u.Plan,
		ReviewCount:   u.ReviewCount,
		JoinDate:      u.JoinDate,
		Notifications: u.Notifications,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		HasPassword:   u.PasswordHash != "",
	}
}

var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

// ValidPhone reports whether phone is a well-formed mainland mobile number.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// DefaultNickname masks the phone number (e.g. "138****8000") for accounts
// created without an explicit nickname.
func DefaultNickname(phone string) string {
	if len(phone) < 8 {
		return phone
	}
	return phone[:3] + "****" + phone[len(phone)-4:]
}
