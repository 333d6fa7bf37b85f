package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/sawdustofmind/matchday-predictor/internal/log"
	"github.com/sawdustofmind/matchday-predictor/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"error",
	"login",
	"register",
	"matches",
	"prediction",
	"match_predictions",
	"my_predictions",
	"leaderboard",
}

func parseTemplates() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return pages, nil
}

type page struct {
	User     string
	LoggedIn bool
	Notice   *session.Notice
	Data     any
}

// render executes a page into a buffer first so a template failure never
// leaves half a page on the wire.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if torndown(r) {
		return
	}
	t, ok := s.pages[name]
	if !ok {
		log.Error("Unknown page template", zap.String("page", name))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sess := session.FromContext(r.Context())
	user, loggedIn := sess.User(s.now())
	p := page{
		User:     user,
		LoggedIn: loggedIn,
		Notice:   s.sessions.TakeNotice(r.Context(), sess),
		Data:     data,
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		log.Error("Failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Debug("Failed to write page", zap.String("page", name), zap.Error(err))
	}
}
