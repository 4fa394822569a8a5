package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MinPasswordLen = 8
	// bcrypt rejects input longer than 72 bytes.
	MaxPasswordLen = 72
)

var (
	usernameRe     = regexp.MustCompile(`^\w{5,80}$`)
	categoryNameRe = regexp.MustCompile(`^[\w\s'-]{1,50}$`)

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Errors maps "<field>_message" keys to user facing messages.
type Errors map[string]string

func (e Errors) add(field, msg string) {
	if _, ok := e[field+"_message"]; !ok {
		e[field+"_message"] = msg
	}
}

func (e Errors) OrNil() Errors {
	if len(e) == 0 {
		return nil
	}
	return e
}

func Registration(username, email, password, confirm string) Errors {
	errs := Errors{}
	checkUsername(errs, username)

	switch {
	case strings.TrimSpace(email) == "":
		errs.add("email", "Please enter email address.")
	case len(email) > 100 || validate.Var(email, "email") != nil:
		errs.add("email", "Please enter a valid email address.")
	}

	checkPassword(errs, "password", password)
	checkConfirm(errs, "confirm_password", password, confirm)
	return errs.OrNil()
}

func Login(username, password string) Errors {
	errs := Errors{}
	checkUsername(errs, strings.TrimSpace(username))
	checkPassword(errs, "password", password)
	return errs.OrNil()
}

func ChangePassword(current, newPassword, confirm string) Errors {
	errs := Errors{}
	if current == "" {
		errs.add("current_password", "Please enter current password.")
	}
	checkPassword(errs, "new_password", newPassword)
	checkConfirm(errs, "confirm_new_password", newPassword, confirm)
	return errs.OrNil()
}

func CategoryName(name string) Errors {
	errs := Errors{}
	switch {
	case strings.TrimSpace(name) == "":
		errs.add("name", "Please enter category name.")
	case !categoryNameRe.MatchString(name):
		errs.add("name", "Please enter a valid category name.")
	}
	return errs.OrNil()
}

// Recipe validates the supplied fields; nil pointers are skipped so partial updates can reuse it.
func Recipe(name, ingredients, directions *string) Errors {
	errs := Errors{}
	if name != nil {
		switch {
		case strings.TrimSpace(*name) == "":
			errs.add("name", "Please enter recipe name.")
		case utf8.RuneCountInString(*name) > 100:
			errs.add("name", "Recipe name must be at most 100 characters.")
		}
	}
	if ingredients != nil {
		switch {
		case strings.TrimSpace(*ingredients) == "":
			errs.add("ingredients", "Please enter ingredients.")
		case utf8.RuneCountInString(*ingredients) > 800:
			errs.add("ingredients", "Ingredients must be at most 800 characters.")
		}
	}
	if directions != nil {
		switch {
		case strings.TrimSpace(*directions) == "":
			errs.add("directions", "Please enter directions.")
		case utf8.RuneCountInString(*directions) > 2000:
			errs.add("directions", "Directions must be at most 2000 characters.")
		}
	}
	return errs.OrNil()
}

func checkUsername(errs Errors, username string) {
	switch {
	case strings.TrimSpace(username) == "":
		errs.add("username", "Please enter username.")
	case !usernameRe.MatchString(username):
		errs.add("username", "Please enter a valid username. Username can only contain 5-80 alphanumeric and underscore characters.")
	}
}

func checkPassword(errs Errors, field, password string) {
	switch {
	case password == "":
		errs.add(field, "Please enter password.")
	case len(password) < MinPasswordLen:
		errs.add(field, "Password must be at least 8 characters.")
	case len(password) > MaxPasswordLen:
		errs.add(field, "Password must be at most 72 characters.")
	}
}

func checkConfirm(errs Errors, field, password, confirm string) {
	switch {
	case confirm == "":
		errs.add(field, "Please confirm password.")
	case confirm != password:
		errs.add(field, "This password does not match the password entered.")
	}
}
