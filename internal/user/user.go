package user

import (
	"time"

	"github.com/frahmantamala/leave-management/internal/leave"
)

// User is the account row, including the per-type leave ledger. The
// used counters are mutated only by the approval transaction and the
// administrative balance override.
type User struct {
	ID           int64  `json:"id" gorm:"primaryKey"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	Name         string `json:"name" gorm:"not null"`
	Role         string `json:"role" gorm:"default:'Employee'"`
	Department   string `json:"department"`

	VacationTotal         int `json:"vacation_total" gorm:"column:vacation_total;default:15"`
	VacationUsed          int `json:"vacation_used" gorm:"column:vacation_used;default:0"`
	MandatoryTotal        int `json:"mandatory_total" gorm:"column:mandatory_total;default:5"`
	MandatoryUsed         int `json:"mandatory_used" gorm:"column:mandatory_used;default:0"`
	SickTotal             int `json:"sick_total" gorm:"column:sick_total;default:15"`
	SickUsed              int `json:"sick_used" gorm:"column:sick_used;default:0"`
	MaternityTotal        int `json:"maternity_total" gorm:"column:maternity_total;default:105"`
	MaternityUsed         int `json:"maternity_used" gorm:"column:maternity_used;default:0"`
	PaternityTotal        int `json:"paternity_total" gorm:"column:paternity_total;default:7"`
	PaternityUsed         int `json:"paternity_used" gorm:"column:paternity_used;default:0"`
	SpecialPrivilegeTotal int `json:"special_privilege_total" gorm:"column:special_privilege_total;default:3"`
	SpecialPrivilegeUsed  int `json:"special_privilege_used" gorm:"column:special_privilege_used;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Balance is one total/used counter pair.
type Balance struct {
	Total int `json:"total"`
	Used  int `json:"used"`
}

func (b Balance) Remaining() int {
	return b.Total - b.Used
}

// Ledger projects the counter columns into the typed vocabulary.
func (u *User) Ledger() map[leave.Type]Balance {
	return map[leave.Type]Balance{
		leave.TypeVacation:         {Total: u.VacationTotal, Used: u.VacationUsed},
		leave.TypeMandatory:        {Total: u.MandatoryTotal, Used: u.MandatoryUsed},
		leave.TypeSick:             {Total: u.SickTotal, Used: u.SickUsed},
		leave.TypeMaternity:        {Total: u.MaternityTotal, Used: u.MaternityUsed},
		leave.TypePaternity:        {Total: u.PaternityTotal, Used: u.PaternityUsed},
		leave.TypeSpecialPrivilege: {Total: u.SpecialPrivilegeTotal, Used: u.SpecialPrivilegeUsed},
	}
}

// Subordinate is the read-side row returned by subordinate listings:
// identity plus the full ledger, queried through sqlx.
type Subordinate struct {
	ID         int64  `db:"id" json:"id"`
	Email      string `db:"email" json:"email"`
	Name       string `db:"name" json:"name"`
	Role       string `db:"role" json:"role"`
	Department string `db:"department" json:"department"`

	VacationTotal         int `db:"vacation_total" json:"vacation_total"`
	VacationUsed          int `db:"vacation_used" json:"vacation_used"`
	MandatoryTotal        int `db:"mandatory_total" json:"mandatory_total"`
	MandatoryUsed         int `db:"mandatory_used" json:"mandatory_used"`
	SickTotal             int `db:"sick_total" json:"sick_total"`
	SickUsed              int `db:"sick_used" json:"sick_used"`
	MaternityTotal        int `db:"maternity_total" json:"maternity_total"`
	MaternityUsed         int `db:"maternity_used" json:"maternity_used"`
	PaternityTotal        int `db:"paternity_total" json:"paternity_total"`
	PaternityUsed         int `db:"paternity_used" json:"paternity_used"`
	SpecialPrivilegeTotal int `db:"special_privilege_total" json:"special_privilege_total"`
	SpecialPrivilegeUsed  int `db:"special_privilege_used" json:"special_privilege_used"`
}
