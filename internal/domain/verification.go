package domain

// Purpose namespaces verification codes so a registration code can never be
// redeemed as an email-confirmation code for the same address.
type Purpose string

const (
	PurposeRegister    Purpose = "register"
	PurposeVerifyEmail Purpose = "verify-email"
)

// Valid reports whether p is a known purpose.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeRegister, PurposeVerifyEmail:
		return true
	}
	return false
}
