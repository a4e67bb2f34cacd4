package entityview

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/sushihentaime/companyblog/internal/blogservice"
	"github.com/sushihentaime/companyblog/internal/common"
	"github.com/sushihentaime/companyblog/internal/companyservice"
)

const pageSize = 20

// BlogPagesConfig wires the blog feature. Base is the path the feature is mounted at.
type BlogPagesConfig struct {
	Base      string
	Accounts  AccountService
	Blogs     BlogEntityService
	Reader    BlogReader
	Companies CompanyService
	Renderer  *Renderer
	Logger    *slog.Logger
}

type blogPages struct {
	cfg      BlogPagesConfig
	resolver Resolver
}

// NewBlogPages returns the blog feature router: list, detail and the update form.
func NewBlogPages(cfg BlogPagesConfig) http.Handler {
	p := &blogPages{cfg: cfg, resolver: NewBlogResolver(cfg.Reader)}

	router := newRouter()
	router.HandlerFunc(http.MethodGet, "/", p.list)
	router.HandlerFunc(http.MethodGet, "/new", p.edit)
	router.HandlerFunc(http.MethodPost, "/new", p.save)
	router.HandlerFunc(http.MethodGet, "/view/:id", p.view)
	router.HandlerFunc(http.MethodPost, "/view/:id", p.back)
	router.HandlerFunc(http.MethodGet, "/edit/:id", p.edit)
	router.HandlerFunc(http.MethodPost, "/edit/:id", p.save)

	return router
}

func (p *blogPages) page(r *http.Request, title string, data any) Page {
	return Page{Title: title, Base: p.cfg.Base, Return: returnPath(r, p.cfg.Base+r.URL.Path, p.cfg.Base), Data: data}
}

func (p *blogPages) list(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	account, err := p.cfg.Accounts.Identity(r.Context())
	if err != nil {
		p.serverError(w, r, err)
		return
	}

	blogs, err := p.cfg.Reader.List(r.Context(), pageSize, offset)
	if err != nil {
		p.serverError(w, r, err)
		return
	}

	page := p.page(r, "Blogs", blogList{Blogs: blogs, Offset: offset, Next: offset + pageSize, More: len(blogs) == pageSize})
	page.Account = account
	p.render(w, r, http.StatusOK, "blog_list", page)
}

type blogList struct {
	Blogs  []blogservice.Blog
	Offset int
	Next   int
	More   bool
}

func (p *blogPages) view(w http.ResponseWriter, r *http.Request) {
	data, ok := p.routeData(w, r)
	if !ok {
		return
	}

	v := NewDetailView(p.cfg.Accounts, NewRedirectNavigator(w, r, p.cfg.Base))
	if err := v.Init(r.Context(), data); err != nil {
		p.serverError(w, r, err)
		return
	}

	page := p.page(r, "Blog", v)
	page.Account = v.Account
	p.render(w, r, http.StatusOK, "blog_detail", page)
}

func (p *blogPages) back(w http.ResponseWriter, r *http.Request) {
	data, ok := p.routeData(w, r)
	if !ok {
		return
	}

	v := NewDetailView(p.cfg.Accounts, NewRedirectNavigator(w, r, p.cfg.Base))
	if err := v.Init(r.Context(), data); err != nil {
		p.serverError(w, r, err)
		return
	}
	v.PreviousState()
}

func (p *blogPages) edit(w http.ResponseWriter, r *http.Request) {
	v, alerts, ok := p.updateView(w, r, nil)
	if !ok {
		return
	}

	p.renderForm(w, r, http.StatusOK, v, alerts)
}

func (p *blogPages) save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	nav := NewRedirectNavigator(w, r, p.cfg.Base)
	v, alerts, ok := p.updateView(w, r, nav)
	if !ok {
		return
	}

	v.Form.Bind(r.PostForm, v.Companies)
	if !v.Form.Validate() {
		p.renderForm(w, r, http.StatusUnprocessableEntity, v, alerts)
		return
	}

	// a failed save leaves the user on the form with their input
	if err := v.Save(r.Context()); err != nil {
		p.renderForm(w, r, http.StatusOK, v, alerts)
	}
}

func (p *blogPages) updateView(w http.ResponseWriter, r *http.Request, nav Navigator) (*UpdateView, *Alerts, bool) {
	data, ok := p.routeData(w, r)
	if !ok {
		return nil, nil, false
	}

	if nav == nil {
		nav = NewRedirectNavigator(w, r, p.cfg.Base)
	}

	alerts := &Alerts{}
	v := NewUpdateView(UpdateViewDeps{
		Accounts:  p.cfg.Accounts,
		Blogs:     p.cfg.Blogs,
		Companies: p.cfg.Companies,
		Alerts:    alerts,
		Nav:       nav,
		Logger:    p.cfg.Logger,
	})

	if err := v.Init(r.Context(), data); err != nil {
		p.serverError(w, r, err)
		return nil, nil, false
	}

	return v, alerts, true
}

func (p *blogPages) renderForm(w http.ResponseWriter, r *http.Request, status int, v *UpdateView, alerts *Alerts) {
	title := "Create a Blog"
	if v.Form.ID != nil {
		title = "Edit Blog"
	}

	page := p.page(r, title, v)
	page.Account = v.Account
	page.Alerts = alerts.Messages
	if ret := r.PostFormValue("return"); localPath(ret) {
		page.Return = ret
	}

	p.render(w, r, status, "blog_update", page)
}

// routeData resolves the blog named by the :id parameter, or a blank one on /new.
func (p *blogPages) routeData(w http.ResponseWriter, r *http.Request) (RouteData, bool) {
	var id *int

	if raw := httprouter.ParamsFromContext(r.Context()).ByName("id"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.NotFound(w, r)
			return RouteData{}, false
		}
		id = &n
	}

	data, err := RouteDataFor(r.Context(), p.resolver, id)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			http.NotFound(w, r)
		default:
			p.serverError(w, r, err)
		}
		return RouteData{}, false
	}

	return data, true
}

func (p *blogPages) render(w http.ResponseWriter, r *http.Request, status int, name string, page Page) {
	if err := p.cfg.Renderer.Render(w, status, name, page); err != nil {
		p.serverError(w, r, err)
	}
}

func (p *blogPages) serverError(w http.ResponseWriter, r *http.Request, err error) {
	serverError(p.cfg.Logger, w, r, err)
}

// newRouter returns a feature router. Paths are relative to the mount point, so
// the router must not issue redirects of its own.
func newRouter() *httprouter.Router {
	router := httprouter.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false
	return router
}

func serverError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	logger.Error(err.Error(), slog.String("method", r.Method), slog.String("uri", r.URL.RequestURI()))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// CompanyPagesConfig wires the company feature.
type CompanyPagesConfig struct {
	Base      string
	Accounts  AccountService
	Companies CompanyReader
	Renderer  *Renderer
	Logger    *slog.Logger
}

type companyPages struct {
	cfg CompanyPagesConfig
}

// NewCompanyPages returns the company feature router: list and detail.
func NewCompanyPages(cfg CompanyPagesConfig) http.Handler {
	p := &companyPages{cfg: cfg}

	router := newRouter()
	router.HandlerFunc(http.MethodGet, "/", p.list)
	router.HandlerFunc(http.MethodGet, "/view/:id", p.view)

	return router
}

func (p *companyPages) list(w http.ResponseWriter, r *http.Request) {
	account, err := p.cfg.Accounts.Identity(r.Context())
	if err != nil {
		serverError(p.cfg.Logger, w, r, err)
		return
	}

	alerts := &Alerts{}
	companies, err := p.cfg.Companies.Query(r.Context())
	if err != nil {
		alerts.Error(err.Error())
	}

	page := Page{Title: "Companies", Account: account, Alerts: alerts.Messages, Base: p.cfg.Base, Data: companies}
	if err := p.cfg.Renderer.Render(w, http.StatusOK, "company_list", page); err != nil {
		serverError(p.cfg.Logger, w, r, err)
	}
}

func (p *companyPages) view(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(httprouter.ParamsFromContext(r.Context()).ByName("id"))
	if err != nil || id < 1 {
		http.NotFound(w, r)
		return
	}

	account, err := p.cfg.Accounts.Identity(r.Context())
	if err != nil {
		serverError(p.cfg.Logger, w, r, err)
		return
	}

	company, err := p.cfg.Companies.Find(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			http.NotFound(w, r)
		default:
			serverError(p.cfg.Logger, w, r, err)
		}
		return
	}

	page := Page{Title: company.Name, Account: account, Base: p.cfg.Base, Return: returnPath(r, p.cfg.Base+r.URL.Path, p.cfg.Base), Data: companyDetail{Company: company}}
	if err := p.cfg.Renderer.Render(w, http.StatusOK, "company_detail", page); err != nil {
		serverError(p.cfg.Logger, w, r, err)
	}
}

type companyDetail struct {
	Company *companyservice.Company
}
