package models

// User is a bank customer as reported by the upstream API. The dashboard only
// reads users, for picking the owner of a newly created account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// DisplayName renders a user the way the account-creation picker shows them.
func (u *User) DisplayName() string {
	if u.Email == "" {
		return u.Username
	}
	return u.Username + " (" + u.Email + ")"
}
