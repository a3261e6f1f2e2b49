package app

import (
	"hash/maphash"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/vancomm/taskbingo-server/internal/config"
	"github.com/vancomm/taskbingo-server/internal/handlers"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) loadRoutes() {
	board := handlers.NewBoardHandler(
		a.logger, a.controller, a.catalog, a.cookies, a.ws, a.session.PasswordScheme,
	)
	tasks := handlers.NewCatalogHandler(a.logger, a.catalog)

	base := strings.TrimSuffix(config.BasePath(), "/")
	handle := func(pattern string, h http.HandlerFunc) {
		method, path, _ := strings.Cut(pattern, " ")
		a.router.HandleFunc(method+" "+base+path, h)
	}

	handle("POST /board", board.Create)
	handle("GET /board/{id}", board.Fetch)
	handle("GET /board/{id}/scores", board.Scores)
	handle("GET /board/{id}/session", board.Session)
	handle("POST /board/{id}/login", board.Login)
	handle("POST /board/{id}/switch", board.Switch)
	handle("POST /board/{id}/logout", board.Logout)
	handle("POST /board/{id}/claim", board.Claim)
	handle("POST /board/{id}/unlock", board.Unlock)
	handle("GET /board/{id}/connect", board.Connect)

	handle("GET /tasks", tasks.List)
	handle("POST /tasks", tasks.Add)
	handle("PUT /tasks/{index}", tasks.Edit)
	handle("DELETE /tasks/{index}", tasks.Delete)
	handle("POST /tasks/import", tasks.Import)
	handle("GET /tasks/export", tasks.Export)

	a.router.Handle("GET "+base+"/metrics", a.metrics.Handler())
}
