package userservice

import (
	"regexp"

	"github.com/sushihentaime/companyblog/internal/common"
)

var (
	EmailRX    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	UsernameRX = regexp.MustCompile("^[a-zA-Z0-9]+$")

	// a password needs one of each class
	passwordClasses = []*regexp.Regexp{
		regexp.MustCompile("[A-Z]"),
		regexp.MustCompile("[a-z]"),
		regexp.MustCompile("[0-9]"),
		regexp.MustCompile(`[#?!@$%^&*_\\-]`),
	}
)

const passwordRule = "must be between 8 and 72 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one symbol"

func validateUsername(v *common.Validator, username string) {
	v.Check(username != "", "username", "must be provided")
	v.Check(v.CheckStringLength(username, 3, 25), "username", "must be between 3 and 25 characters long")
	v.Check(UsernameRX.MatchString(username), "username", "must only contain letters and numbers")
}

func validateEmail(v *common.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(EmailRX.MatchString(email), "email", "must be a valid email address")
}

// validatePassword allows at most 72 characters, the longest input bcrypt hashes.
func validatePassword(v *common.Validator, password string) {
	v.Check(password != "", "password", "must be provided")

	ok := v.CheckStringLength(password, 8, 72)
	for _, rx := range passwordClasses {
		ok = ok && rx.MatchString(password)
	}
	v.Check(ok, "password", passwordRule)
}

func validateCompanyID(v *common.Validator, id *int) {
	if id != nil {
		v.Check(*id > 0, "company_id", "must be greater than zero")
	}
}

// validatePermissions accepts known permissions that actor holds itself.
func validatePermissions(v *common.Validator, permissions Permissions, actor *User) {
	for _, p := range permissions {
		if !common.PermittedValue(p, knownPermissions...) {
			v.AddError("permissions", "unknown permission "+string(p))
			return
		}
		if !actor.HasPermission(p) {
			v.AddError("permissions", "cannot grant "+string(p)+" without holding it")
			return
		}
	}
}

func ValidateToken(v *common.Validator, token string) {
	v.Check(token != "", "token", "must be provided")
	v.Check(len(token) == 26, "token", "invalid token")
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}
