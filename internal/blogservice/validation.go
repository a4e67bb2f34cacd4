package blogservice

import (
	"regexp"

	"github.com/sushihentaime/companyblog/internal/common"
	"github.com/sushihentaime/companyblog/internal/companyservice"
)

var (
	HandleRX = regexp.MustCompile("^[a-zA-Z0-9_-]+$")
)

func validateName(v *common.Validator, name string) {
	v.Check(name != "", "name", "must be provided")
	v.Check(v.CheckStringLength(name, 3, 100), "name", "must be between 3 and 100 characters long")
}

func validateHandle(v *common.Validator, handle string) {
	v.Check(handle != "", "handle", "must be provided")
	v.Check(v.CheckStringLength(handle, 2, 50), "handle", "must be between 2 and 50 characters long")
	v.Check(HandleRX.MatchString(handle), "handle", "must only contain letters, numbers, dashes, and underscores")
}

func validateCompany(v *common.Validator, company *companyservice.Company) {
	v.Check(company != nil && company.ID > 0, "company", "must be provided")
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}

func validateBlog(v *common.Validator, blog *Blog) {
	validateName(v, blog.Name)
	validateHandle(v, blog.Handle)
	validateCompany(v, blog.Company)
}
