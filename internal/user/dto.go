package user

import (
	"fmt"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/leave"
)

// BalanceView is one ledger entry as the API reports it, with the
// derived remaining count.
type BalanceView struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// ProfileDTO is the profile payload: the account row plus the typed
// ledger projection keyed by leave-type label.
type ProfileDTO struct {
	*User
	Balances map[leave.Type]BalanceView `json:"balances"`
}

func NewProfileDTO(u *User) *ProfileDTO {
	ledger := u.Ledger()
	views := make(map[leave.Type]BalanceView, len(ledger))
	for t, b := range ledger {
		views[t] = BalanceView{Total: b.Total, Used: b.Used, Remaining: b.Remaining()}
	}
	return &ProfileDTO{User: u, Balances: views}
}

// UpdateBalancesDTO is the administrative ledger override: a direct
// rewrite of counter pairs, keyed by leave-type label.
type UpdateBalancesDTO struct {
	Balances map[string]Balance `json:"balances"`
}

// Validate checks labels against the vocabulary and rejects counters
// that would break used <= total. It deliberately does not look at
// in-flight requests; the override is an unguarded write by contract.
func (dto UpdateBalancesDTO) Validate() error {
	if len(dto.Balances) == 0 {
		return internal.NewValidationFieldError("balances", "at least one leave type is required", internal.ErrCodeValidationFailed)
	}
	for label, balance := range dto.Balances {
		if _, ok := leave.ParseType(label); !ok {
			return internal.NewValidationFieldError("balances", fmt.Sprintf("unknown leave type %q", label), internal.ErrCodeUnknownLeaveType)
		}
		if balance.Total < 0 || balance.Used < 0 {
			return internal.NewValidationFieldError("balances", fmt.Sprintf("%s counters must not be negative", label), internal.ErrCodeValidationFailed)
		}
		if balance.Used > balance.Total {
			return internal.NewValidationFieldError("balances", fmt.Sprintf("%s used must not exceed total", label), internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

// Typed converts the validated payload into the typed vocabulary.
func (dto UpdateBalancesDTO) Typed() map[leave.Type]Balance {
	typed := make(map[leave.Type]Balance, len(dto.Balances))
	for label, balance := range dto.Balances {
		if t, ok := leave.ParseType(label); ok {
			typed[t] = balance
		}
	}
	return typed
}
