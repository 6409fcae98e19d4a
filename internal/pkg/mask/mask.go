package mask

import "strings"

// Email hides the middle of the local part when it is longer than five
// characters: "abcdefg@x.com" becomes "abc****fg@x.com".
func Email(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	local, host := email[:at], email[at:]
	if len(local) <= 5 {
		return email
	}
	return local[:3] + "****" + local[len(local)-2:] + host
}
