package leave

// Type is the closed leave-type vocabulary. Each type maps to one
// total/used counter pair on the users table; the mapping is resolved
// through the table below, never by ad hoc string comparisons.
type Type string

const (
	TypeVacation         Type = "Vacation Leave"
	TypeMandatory        Type = "Mandatory/Force Leave"
	TypeSick             Type = "Sick Leave"
	TypeMaternity        Type = "Maternity Leave"
	TypePaternity        Type = "Paternity Leave"
	TypeSpecialPrivilege Type = "Special Privilege Leave"
)

// LedgerColumns names the counter pair backing one leave type.
type LedgerColumns struct {
	Total string
	Used  string
}

var ledgerColumns = map[Type]LedgerColumns{
	TypeVacation:         {Total: "vacation_total", Used: "vacation_used"},
	TypeMandatory:        {Total: "mandatory_total", Used: "mandatory_used"},
	TypeSick:             {Total: "sick_total", Used: "sick_used"},
	TypeMaternity:        {Total: "maternity_total", Used: "maternity_used"},
	TypePaternity:        {Total: "paternity_total", Used: "paternity_used"},
	TypeSpecialPrivilege: {Total: "special_privilege_total", Used: "special_privilege_used"},
}

// ParseType maps a label onto the vocabulary; unmapped labels are the
// UnknownLeaveType condition.
func ParseType(s string) (Type, bool) {
	t := Type(s)
	_, ok := ledgerColumns[t]
	return t, ok
}

func (t Type) Columns() (LedgerColumns, bool) {
	cols, ok := ledgerColumns[t]
	return cols, ok
}

// Types lists the vocabulary in a stable order for API responses.
func Types() []Type {
	return []Type{
		TypeVacation,
		TypeMandatory,
		TypeSick,
		TypeMaternity,
		TypePaternity,
		TypeSpecialPrivilege,
	}
}
