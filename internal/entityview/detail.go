package entityview

import (
	"context"

	"github.com/sushihentaime/companyblog/internal/blogservice"
	"github.com/sushihentaime/companyblog/internal/userservice"
)

// DetailView presents a resolved blog read-only.
type DetailView struct {
	accounts AccountService
	nav      Navigator

	Account *userservice.User
	Blog    *blogservice.Blog
}

func NewDetailView(accounts AccountService, nav Navigator) *DetailView {
	return &DetailView{accounts: accounts, nav: nav}
}

// Init loads the current account and then holds the route's blog as given.
func (v *DetailView) Init(ctx context.Context, data RouteData) error {
	account, err := v.accounts.Identity(ctx)
	if err != nil {
		return err
	}

	v.Account = account
	v.Blog = data.Blog

	return nil
}

func (v *DetailView) PreviousState() {
	v.nav.Back()
}
