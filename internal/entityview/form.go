package entityview

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/sushihentaime/companyblog/internal/blogservice"
	"github.com/sushihentaime/companyblog/internal/common"
	"github.com/sushihentaime/companyblog/internal/companyservice"
)

// BlogForm holds the editable fields of a blog. Once locked, the company
// can no longer be changed by user input.
type BlogForm struct {
	ID      *int
	Name    string
	Handle  string
	Company *companyservice.Company
	Version int

	Errors map[string]string

	locked bool
}

func NewBlogForm() *BlogForm {
	return &BlogForm{Errors: make(map[string]string)}
}

// Patch copies the blog's fields into the form.
func (f *BlogForm) Patch(b *blogservice.Blog) {
	f.ID = b.ID
	f.Name = b.Name
	f.Handle = b.Handle
	f.Version = b.Version
	if !f.locked {
		f.Company = b.Company
	}
}

// LockCompany pins the company field to c.
func (f *BlogForm) LockCompany(c *companyservice.Company) {
	f.Company = c
	f.locked = true
}

func (f *BlogForm) CompanyLocked() bool {
	return f.locked
}

// SetCompany is ignored when the company is locked.
func (f *BlogForm) SetCompany(c *companyservice.Company) {
	if f.locked {
		return
	}
	f.Company = c
}

// Bind reads posted form values. The company is looked up by id in options,
// falling back to a reference that carries only the id.
func (f *BlogForm) Bind(values url.Values, options []companyservice.Company) {
	f.Name = strings.TrimSpace(values.Get("name"))
	f.Handle = strings.TrimSpace(values.Get("handle"))

	if v, err := strconv.Atoi(values.Get("version")); err == nil {
		f.Version = v
	}

	if f.locked {
		return
	}

	id, err := strconv.Atoi(values.Get("company"))
	if err != nil || id <= 0 {
		f.Company = nil
		return
	}

	for i := range options {
		if options[i].ID == id {
			c := options[i]
			f.Company = &c
			return
		}
	}
	f.Company = &companyservice.Company{ID: id}
}

// Validate reports whether the form can be submitted and records field errors.
func (f *BlogForm) Validate() bool {
	v := common.NewValidator()

	v.Check(f.Name != "", "name", "This field is required.")
	v.Check(v.CheckMinLength(f.Name, 3), "name", "This field is required to be at least 3 characters.")
	v.Check(f.Handle != "", "handle", "This field is required.")
	v.Check(v.CheckMinLength(f.Handle, 2), "handle", "This field is required to be at least 2 characters.")
	v.Check(f.Company != nil, "company", "This field is required.")

	f.Errors = v.Errors
	return v.Valid()
}

// Blog builds the entity to submit. The id is nil for a blog that was never saved.
func (f *BlogForm) Blog() *blogservice.Blog {
	return &blogservice.Blog{
		ID:      f.ID,
		Name:    f.Name,
		Handle:  f.Handle,
		Company: f.Company,
		Version: f.Version,
	}
}

// IsSelected reports whether the company option with id is the form's company.
func (f *BlogForm) IsSelected(id int) bool {
	return f.Company != nil && f.Company.ID == id
}
