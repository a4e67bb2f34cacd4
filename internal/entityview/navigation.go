package entityview

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Alerts collects the messages raised while handling one request.
type Alerts struct {
	Messages []string
}

// Error records message. Args are format arguments and are only applied when message
// contains a verb, so trailing values such as nil details leave the text as is.
func (a *Alerts) Error(message string, args ...any) {
	if len(args) > 0 && strings.Contains(message, "%") {
		message = fmt.Sprintf(message, args...)
	}
	a.Messages = append(a.Messages, message)
}

// RedirectNavigator goes back by redirecting to the posted "return" path, or to
// fallback when the request does not carry a local one.
type RedirectNavigator struct {
	w        http.ResponseWriter
	r        *http.Request
	fallback string

	navigated bool
}

func NewRedirectNavigator(w http.ResponseWriter, r *http.Request, fallback string) *RedirectNavigator {
	return &RedirectNavigator{w: w, r: r, fallback: fallback}
}

func (n *RedirectNavigator) Back() {
	n.navigated = true
	http.Redirect(n.w, n.r, n.target(), http.StatusSeeOther)
}

func (n *RedirectNavigator) Navigated() bool {
	return n.navigated
}

func (n *RedirectNavigator) target() string {
	if p := n.r.FormValue("return"); localPath(p) {
		return p
	}
	return n.fallback
}

// returnPath is the page a freshly rendered view should go back to. self is the
// full path of the view, so that reloading it does not make it its own return target.
func returnPath(r *http.Request, self, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host || !localPath(ref.Path) {
		return fallback
	}
	if ref.Path == self {
		return fallback
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}

func localPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, `\`)
}
