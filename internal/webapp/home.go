package webapp

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/cobaemon/portfolio/pkg/cookie"
)

//go:embed static
var staticFS embed.FS

// Project is one portfolio entry on the top page.
type Project struct {
	Name        string
	Description string
	URL         string
}

// HomePageData feeds the home template.
type HomePageData struct {
	Projects []Project
	Notice   string
}

// Home renders the portfolio top page with the contact form.
type Home struct {
	views    *Renderer
	cookies  *cookie.Manager
	projects []Project
}

func NewHome(views *Renderer, cookies *cookie.Manager, projects []Project) *Home {
	return &Home{views: views, cookies: cookies, projects: projects}
}

func (h *Home) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var notice string
	_ = h.cookies.GetFlash(w, r, "notice", &notice)

	h.views.Render(w, http.StatusOK, "home", HomePageData{
		Projects: h.projects,
		Notice:   notice,
	})
}

// Static returns the embedded asset tree rooted at static/, for mounting
// under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// StaticFS exposes the embedded assets for tooling such as the collectstatic
// uploader.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
